package ingest

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// NonTextPlaceholder replaces the body of files that are not text
const NonTextPlaceholder = "[Non-text file]"

const sniffLen = 8000

// IsBinary reports whether content looks like a binary file
func IsBinary(content []byte) bool {
	head := content[:min(sniffLen, len(content))]
	return bytes.IndexByte(head, 0) != -1
}

// DecodeText returns content as UTF-8 text, transcoding legacy encodings
func DecodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}

	enc, _, _ := charset.DetermineEncoding(content, "text/plain")
	decoded, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
