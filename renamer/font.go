package renamer

import (
	"os"
	"strings"

	"golang.org/x/image/font/sfnt"

	"postrecovery/textnorm"
)

// fontName reads the sfnt name table and builds "<Family> <Subfamily>.<ext>".
// Unparseable fonts keep their names.
func fontName(path, ext string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	font, err := sfnt.Parse(data)
	if err != nil {
		return ""
	}

	var buf sfnt.Buffer
	family, err := font.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		family = ""
	}
	subfamily, err := font.Name(&buf, sfnt.NameIDSubfamily)
	if err != nil {
		subfamily = ""
	}

	name := textnorm.SafeFilename(strings.TrimSpace(family + " " + subfamily))
	if len(name) < 2 {
		return ""
	}
	return name + ext
}
