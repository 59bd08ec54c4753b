package renamer

import (
	"bytes"
	"io"
	"os"

	"postrecovery/textnorm"
)

// torrentName pulls the torrent's name field out of the bencode head. Only
// the bytes before the piece hashes are scanned, so even a truncated carve
// usually yields a name.
func torrentName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	head := make([]byte, 64*1024)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ""
	}
	head = head[:n]

	if idx := bytes.Index(head, []byte("6:pieces")); idx >= 0 {
		head = head[:idx]
	}

	raw, ok := bencodeNameField(head)
	if !ok {
		return ""
	}

	name := textnorm.SafeFilename(textnorm.DecodeBytes(raw))
	if len(name) < 2 {
		return ""
	}
	return name + ".torrent"
}

// bencodeNameField finds "4:name<len>:<bytes>" in a bencode fragment
func bencodeNameField(data []byte) ([]byte, bool) {
	idx := bytes.Index(data, []byte("4:name"))
	if idx < 0 {
		return nil, false
	}

	pos := idx + len("4:name")
	length := 0
	digits := 0
	for pos < len(data) && data[pos] >= '0' && data[pos] <= '9' {
		length = length*10 + int(data[pos]-'0')
		digits++
		pos++
	}
	if digits == 0 || pos >= len(data) || data[pos] != ':' {
		return nil, false
	}
	pos++

	if length <= 0 || pos+length > len(data) {
		return nil, false
	}
	return data[pos : pos+length], true
}
