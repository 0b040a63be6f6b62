package parser

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Lexical levels of DSSI AALL and NALL.
// S-57 Part 3 §2.4 (31Main.pdf p3.11)
const (
	LexicalASCII  = 0 // ASCII text
	LexicalLatin1 = 1 // ISO 8859 part 1
	LexicalUCS2   = 2 // ISO 10646 UCS-2, little endian
)

// decodeText converts a subfield value at the given lexical level to UTF-8.
// Level 0 is a subset of level 1, so both go through the Latin-1 table.
// Decoders carry state and are created per call.
func decodeText(b []byte, level uint8) (string, error) {
	var (
		out []byte
		err error
	)
	switch level {
	case LexicalUCS2:
		out, err = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	default:
		out, err = charmap.ISO8859_1.NewDecoder().Bytes(b)
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
