package config

import "os"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"            yaml:"name"`
	Source APIKeySource `json:"source"          yaml:"source"`
	IsSet  bool         `json:"is_set"          yaml:"is_set"`
	Masked string       `json:"masked,omitempty" yaml:"masked,omitempty"` // e.g., "CG-...abc"
}

// CheckAPIKeys returns the status of every provider API key. Only CoinGecko
// takes a key today; the keyless sources are listed so operators can see
// that nothing is missing.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("CoinGecko API Key", cfg.Sources.CoinGecko.APIKey, EnvPrefix+"_SOURCES_COINGECKO_API_KEY", "COINGECKO_API_KEY"),
		checkKey("NSE API Key", cfg.Sources.NSE.APIKey, EnvPrefix+"_SOURCES_NSE_API_KEY"),
		checkKey("Yahoo API Key", cfg.Sources.Yahoo.APIKey, EnvPrefix+"_SOURCES_YAHOO_API_KEY"),
		checkKey("Screener API Key", cfg.Sources.Screener.APIKey, EnvPrefix+"_SOURCES_SCREENER_API_KEY"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:   name,
		IsSet:  value != "",
		Source: KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = MaskKey(value)
	return status
}

// MaskKey masks an API key for display, showing only first 3 and last 3 chars.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
