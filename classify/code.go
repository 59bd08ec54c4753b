package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"postrecovery/textnorm"
	"postrecovery/types"
)

// Carvers label all C-family source as .c and all class-based source as
// .java; the content settles which language it really is.
var (
	csharpUsing = regexp.MustCompile(`(?m)^using +[a-zA-Z0-9_.]+;`)

	cppIndicator = regexp.MustCompile(`(?:^|\n)[\t ]*(?:namespace\s*[A-Za-z_][A-Za-z0-9_]*\s*\{|class\s*[A-Za-z_][A-Za-z0-9_]*\s*[;:{]|#include <[^<>]*(?:[^.][^h]|\.hpp)>|cout\s*<<|cin\s*>>|template\s*<[^\n;]*>)|::|""_[A-Za-z_][A-Za-z0-9_]*`)
	cComment     = regexp.MustCompile(`(?s)//.*?\n|/\*.*?\*/`)
	cString      = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)

	classDecl   = regexp.MustCompile(`\n[\t ]*public +(?:static +)?class ([a-zA-Z0-9_]+)`)
	packageDecl = regexp.MustCompile(`\n[\t ]*package ([a-zA-Z0-9_]+);`)
)

// analyzeCode fixes the language extension where the content contradicts it,
// then renames Java and C# sources after their single public class.
func analyzeCode(record *types.FileRecord, result *Result) {
	content, ok := decodedContent(record.Path)
	if !ok {
		return
	}

	ext := strings.ToLower(filepath.Ext(record.Path))
	switch ext {
	case ".java":
		if csharpUsing.MatchString(content) {
			reclassify(record, ".cs", result)
			ext = ".cs"
		}
	case ".c":
		// Comments and string literals would produce false :: and << hits
		stripped := cString.ReplaceAllString(cComment.ReplaceAllString(content, ""), `""`)
		if cppIndicator.MatchString(stripped) {
			reclassify(record, ".cpp", result)
		}
		return
	}

	if ext != ".java" && ext != ".cs" {
		return
	}

	classes := classDecl.FindAllStringSubmatch(content, -1)
	if len(classes) != 1 {
		return // ambiguous or anonymous compilation unit
	}

	name := textnorm.SafeFilename(classes[0][1])
	if packages := packageDecl.FindAllStringSubmatch(content, -1); len(packages) == 1 {
		name = textnorm.SafeFilename(packages[0][1]) + "." + name
	}
	if len(name) < 2 {
		return
	}
	renameTo(record, name+ext, result)
}
