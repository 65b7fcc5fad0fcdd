package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const pepperLength = 32

// LoadOrCreatePepper reads the pepper stored at path, generating and
// persisting a new random one (mode 0600) when the file does not exist yet.
// Losing the pepper invalidates every stored password hash.
func LoadOrCreatePepper(path string) (string, error) {
	path = filepath.Clean(path)

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		pepper := strings.TrimSpace(string(b))
		if pepper == "" {
			return "", fmt.Errorf("pepper file %s is empty", path)
		}
		return pepper, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("create pepper dir: %w", err)
	}

	buf := make([]byte, pepperLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pepper: %w", err)
	}
	pepper := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(pepper), 0o600); err != nil {
		return "", fmt.Errorf("write pepper: %w", err)
	}
	return pepper, nil
}
