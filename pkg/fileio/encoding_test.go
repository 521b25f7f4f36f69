package fileio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		label string
		skip  int
	}{
		{"utf-8 bom", []byte{0xEF, 0xBB, 0xBF, 'a'}, UTF8BOM, 3},
		{"utf-16le bom", []byte{0xFF, 0xFE, 'a', 0}, UTF16LE, 2},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0, 'a'}, UTF16BE, 2},
		{"plain", []byte("hello"), UTF8, 0},
		{"empty", nil, UTF8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, skip := Detect(tt.data)
			assert.Equal(t, tt.label, label)
			assert.Equal(t, tt.skip, skip)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	text := "héllo wörld\nline two"

	for _, label := range []string{UTF8, UTF8BOM, UTF16LE, UTF16BE} {
		t.Run(label, func(t *testing.T) {
			data, err := Encode(text, label)
			require.NoError(t, err)

			content, detected, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, text, content)
			assert.Equal(t, label, detected)
		})
	}
}

func TestEncode_BOMs(t *testing.T) {
	data, err := Encode("a", UTF8BOM)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF, 'a'}, data)

	data, err = Encode("a", UTF16LE)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE, 'a', 0}, data)

	data, err = Encode("a", UTF16BE)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0, 'a'}, data)
}

func TestEncode_Windows1252(t *testing.T) {
	for _, label := range []string{"WINDOWS-1252", "Windows-1252", "ANSI"} {
		data, err := Encode("café", label)
		require.NoError(t, err)
		assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, data, label)
	}

	_, err := Encode("日本", Windows1252)
	assert.Error(t, err, "characters outside the code page are rejected")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, UTF8, Normalize("utf-8"))
	assert.Equal(t, UTF8, Normalize("latin-9"))
	assert.Equal(t, UTF8BOM, Normalize("utf-8-bom"))
	assert.Equal(t, UTF16LE, Normalize("utf-16le"))
	assert.Equal(t, Windows1252, Normalize("ansi"))
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, _, err := Decode([]byte{'a', 0xC3, 0x28})
	assert.Error(t, err)
}
