package textnorm

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/ianaindex"
)

// DecodeBytes converts raw file bytes to a string. Carved files carry no
// reliable encoding information, so the charset is detected and the bytes
// decoded through it; anything undetectable falls back to lossy UTF-8 with
// invalid sequences mapped to spaces.
func DecodeBytes(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	if decoded, ok := detectAndDecode(data); ok {
		return decoded
	}

	return strings.ToValidUTF8(string(data), " ")
}

// detectAndDecode runs charset detection and decodes through the detected
// encoding. Returns false when detection or decoding fails.
func detectAndDecode(data []byte) (string, bool) {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "", false
	}

	enc, err := ianaindex.IANA.Encoding(result.Charset)
	if err != nil || enc == nil {
		return "", false
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}

	return string(decoded), true
}
