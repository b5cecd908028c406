package notify

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"connwatch/internal/core/domain"
)

// Credentials holds the Pushover application token and user key.
type Credentials struct {
	Token string
	User  string
}

// LoadCredentials parses a key=value credentials file. Blank lines and `#`
// comments are ignored; `token`/`app_key` and `user`/`user_key` spellings are
// both accepted.
func LoadCredentials(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer f.Close()

	var creds Credentials
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "token", "app_key":
			creds.Token = value
		case "user", "user_key":
			creds.User = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if creds.Token == "" {
		return Credentials{}, fmt.Errorf("%w: token", domain.ErrMissingCredential)
	}
	if creds.User == "" {
		return Credentials{}, fmt.Errorf("%w: user", domain.ErrMissingCredential)
	}
	return creds, nil
}
