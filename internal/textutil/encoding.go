package textutil

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// DecodeBestEffort converts a raw text blob of unknown encoding to UTF-8.
// Valid UTF-8 passes through unchanged; otherwise the bytes are treated as
// EUC-KR, the dominant legacy encoding for Korean source texts.
func DecodeBestEffort(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode text as EUC-KR: %w", err)
	}
	return string(decoded), nil
}
