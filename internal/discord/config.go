package discord

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	DiscordToken string `envconfig:"DISCORD_TOKEN"`
	OpenAIToken  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	MaxTokens    int    `envconfig:"MAX_TOKENS" default:"400"`

	// StorageDir holds the notes ledger and every feature snapshot file.
	StorageDir      string `envconfig:"STORAGE_DIR" default:"."`
	CommonWordsFile string `envconfig:"COMMON_WORDS_FILE" default:"common_words.txt"`
	DictionaryFile  string `envconfig:"DICTIONARY_FILE" default:"words_alpha.txt"`

	CommandPrefix     string   `envconfig:"COMMAND_PREFIX" default:"!"`
	CheckInChannelID  string   `envconfig:"CHECKIN_CHANNEL_ID"`
	WorkshopChannelID string   `envconfig:"WORKSHOP_CHANNEL_ID"`
	AsylumChannelIDs  []string `envconfig:"ASYLUM_CHANNEL_IDS"`

	// SendInterval is the minimum spacing between outbound Discord calls.
	SendInterval time.Duration `envconfig:"SEND_INTERVAL" default:"750ms"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"45s"`
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if c.SendInterval < 0 {
		return errors.New("SEND_INTERVAL must not be negative")
	}
	return nil
}
