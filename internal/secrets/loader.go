// Package secrets resolves API credentials (the FMCSA web key and the
// Gemini API key) from files or inline config values.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a credential comes from.
type Source struct {
	// Name labels the credential in error messages, e.g. "fmcsa web key".
	Name string
	// Value is an inline credential from configuration or flags.
	Value string
	// File points to a file holding the credential. When set it takes
	// precedence over Value.
	File string
}

// Load resolves the credential, preferring File over Value, and trims
// it. An error names the source when neither yields a usable value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
