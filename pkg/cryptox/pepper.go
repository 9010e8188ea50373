package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const pepperLength = 32

// LoadPepper loads the pepper used to key credential fingerprints from file.
// If the file does not exist a new random pepper is generated and written
// with 0600 permissions. Losing this file invalidates every issued API key.
func LoadPepper(file string) ([]byte, error) {
	if strings.TrimSpace(file) == "" {
		return nil, errors.New("cryptox: pepper file path is empty")
	}

	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err == nil {
		pepper := strings.TrimSpace(string(data))
		if pepper == "" {
			return nil, errors.New("cryptox: pepper file is empty")
		}
		return []byte(pepper), nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	// Generate a new pepper and save it to the file
	raw := make([]byte, pepperLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	pepper := base64.RawURLEncoding.EncodeToString(raw)

	if err := os.WriteFile(file, []byte(pepper), 0600); err != nil {
		return nil, err
	}
	return []byte(pepper), nil
}
