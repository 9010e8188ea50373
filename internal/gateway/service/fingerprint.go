package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

var (
	errTrailingJSON = errors.New("unexpected data after JSON value")
	errInvalidUTF8  = errors.New("JSON text is not valid UTF-8")
)

// CanonicalJSON re-encodes raw with object keys sorted at every depth and
// insignificant whitespace removed. Numbers keep their literal form. Empty
// input canonicalizes to {}. Input that is not valid UTF-8 is rejected.
func CanonicalJSON(raw []byte) ([]byte, error) {
	if !utf8.Valid(raw) {
		return nil, errInvalidUTF8
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("{}"), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingJSON
	}

	// encoding/json writes map keys in sorted order.
	return json.Marshal(v)
}

// Fingerprint is the cache key for a search: SHA-256 over the search type
// and the canonical parameters, hex encoded.
func Fingerprint(searchType domain.SearchType, params []byte) (string, error) {
	canonical, err := CanonicalJSON(params)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(searchType))
	h.Write([]byte{0})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
