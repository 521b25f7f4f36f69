package fileio

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding labels understood by Decode and Encode
const (
	UTF8        = "UTF-8"
	UTF8BOM     = "UTF-8-BOM"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "WINDOWS-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Labels returns the encodings offered to the user
func Labels() []string {
	return []string{UTF8, UTF8BOM, UTF16LE, UTF16BE, Windows1252}
}

// Detect inspects the byte order mark. It returns the encoding label and the
// number of BOM bytes to skip. Files without a BOM are treated as UTF-8.
func Detect(data []byte) (string, int) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return UTF8BOM, len(bomUTF8)
	case bytes.HasPrefix(data, bomUTF16LE):
		return UTF16LE, len(bomUTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE):
		return UTF16BE, len(bomUTF16BE)
	}
	return UTF8, 0
}

// Decode converts raw file bytes to text and reports the detected encoding
func Decode(data []byte) (string, string, error) {
	label, skip := Detect(data)
	body := data[skip:]

	switch label {
	case UTF16LE, UTF16BE:
		enc := textEncoding(label)
		out, err := enc.NewDecoder().Bytes(body)
		if err != nil {
			return "", "", fmt.Errorf("decode %s: %w", label, err)
		}
		return string(out), label, nil
	}

	if !utf8.Valid(body) {
		return "", "", fmt.Errorf("decode %s: invalid byte sequence", label)
	}
	return string(body), label, nil
}

// Normalize maps a user supplied label onto one of the known encodings.
// Unknown labels fall back to UTF-8.
func Normalize(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case UTF8BOM:
		return UTF8BOM
	case UTF16LE:
		return UTF16LE
	case UTF16BE:
		return UTF16BE
	case Windows1252, "ANSI", "CP1252":
		return Windows1252
	}
	return UTF8
}

// Encode converts text to bytes in the given encoding. UTF-8-BOM and both
// UTF-16 variants are written with a byte order mark.
func Encode(content, label string) ([]byte, error) {
	label = Normalize(label)

	switch label {
	case UTF8:
		return []byte(content), nil
	case UTF8BOM:
		return append(bytes.Clone(bomUTF8), content...), nil
	}

	out, err := textEncoding(label).NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", label, err)
	}
	return out, nil
}

func textEncoding(label string) encoding.Encoding {
	switch label {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case Windows1252:
		return charmap.Windows1252
	}
	return unicode.UTF8
}
