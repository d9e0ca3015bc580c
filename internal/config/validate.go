package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential marks a required credential or identifier that is not set.
var ErrMissingCredential = errors.New("missing required credential")

// Error is a configuration problem detected before any ticker is processed.
type Error struct {
	Problems []string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

func (e *Error) Unwrap() error { return e.Err }

// Validate checks that everything a write run needs is present.
func (c *Config) Validate() error {
	var missing []string
	if c.News.KeyID == "" {
		missing = append(missing, "news.key_id (APCA_API_KEY_ID)")
	}
	if c.News.SecretKey == "" {
		missing = append(missing, "news.secret_key (APCA_API_SECRET_KEY)")
	}
	if c.Sheet.SpreadsheetID == "" {
		missing = append(missing, "sheet.spreadsheet_id")
	}
	if c.Sheet.CredentialsJSON == "" && c.Sheet.CredentialsFile == "" {
		missing = append(missing, "sheet.credentials_json (GOOGLE_CREDS_JSON) or sheet.credentials_file")
	}
	if len(missing) > 0 {
		return &Error{Problems: missing, Err: ErrMissingCredential}
	}
	return nil
}
