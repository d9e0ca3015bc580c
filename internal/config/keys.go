package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceFile   APIKeySource = "file"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "PKA...XYZ"
}

// CheckAPIKeys returns the status of all required credentials.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("Alpaca API Key ID", cfg.News.KeyID, "TICKERPULSE_NEWS_KEY_ID", "APCA_API_KEY_ID"),
		checkKey("Alpaca API Secret", cfg.News.SecretKey, "TICKERPULSE_NEWS_SECRET_KEY", "APCA_API_SECRET_KEY"),
		checkSheetCredentials(cfg.Sheet),
	}
}

// checkSheetCredentials prefers inline JSON and falls back to the credentials
// file, the same order Config.Credentials reads them in.
func checkSheetCredentials(sheet SheetConfig) KeyStatus {
	const name = "Google Service Account"
	if sheet.CredentialsJSON != "" || sheet.CredentialsFile == "" {
		return checkKey(name, sheet.CredentialsJSON, "TICKERPULSE_SHEET_CREDENTIALS_JSON", "GOOGLE_CREDS_JSON")
	}
	return KeyStatus{
		Name:   name,
		Source: KeySourceFile,
		IsSet:  true,
		Masked: sheet.CredentialsFile,
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value == "" {
		status.Source = KeySourceNone
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) != "" {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = maskKey(value)
	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
