package env

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/luma/shavar/lists"
)

type Config struct {
	LogLevel  string `env:"SHAVAR_LOG_LEVEL,default=info"`
	DebugHTTP bool   `env:"SHAVAR_DEBUG_HTTP"`

	ClientName string `env:"SHAVAR_CLIENT_NAME,default=shavar"`
	AppVersion string `env:"SHAVAR_APP_VERSION,default=1.0"`

	UpdateURL  string `env:"SHAVAR_UPDATE_URL"`
	GetHashURL string `env:"SHAVAR_GETHASH_URL"`
	NewKeyURL  string `env:"SHAVAR_NEWKEY_URL"`

	// ClientKey is the web-safe base64 key MACs are checked with
	ClientKey  string `env:"SHAVAR_CLIENT_KEY"`
	WrappedKey string `env:"SHAVAR_WRAPPED_KEY"`

	// Lists to sync, comma separated. See ListNames.
	Lists []string `env:"SHAVAR_LISTS"`
}

// ListNames returns the configured lists, or the malware and phishing lists
// when none are set.
func (c *Config) ListNames() []string {
	if len(c.Lists) == 0 {
		return []string{lists.MalwareName, lists.PhishName}
	}

	return c.Lists
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
