package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath        string `envconfig:"DB_PATH" default:"./data/snooze.db"`
	DefaultTZ     string `envconfig:"DEFAULT_TZ" default:"UTC"`       // alarm wall-clock timezone
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`       // debug|info|warn|error
	HTTPAddr      string `envconfig:"HTTP_ADDR" default:":8080"`      // healthz
	ClassifierURL string `envconfig:"CLASSIFIER_URL" required:"true"` // image classification endpoint
	SupabaseURL   string `envconfig:"SUPABASE_URL" default:""`        // empty disables remote sync
	SupabaseKey   string `envconfig:"SUPABASE_ANON_KEY" default:""`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
