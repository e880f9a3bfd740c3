package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	Host      string `env:"HOST"`
	Port      int    `env:"PORT,default=8787"`
	JWTSecret string `env:"JWT_SECRET,default=dev-secret"`
	// TokenTTL is the validity window of issued credentials.
	TokenTTL time.Duration `env:"TOKEN_TTL,default=168h"`
	LogLevel string        `env:"LOG_LEVEL,default=info"`

	MaxMessageLength   int `env:"MAX_MESSAGE_LENGTH,default=1000"`
	MessageListDefault int `env:"MESSAGE_LIST_DEFAULT,default=50"`
	MessageListCap     int `env:"MESSAGE_LIST_CAP,default=200"`

	// WSStrictErrors surfaces submission failures on the socket as error
	// events instead of dropping them silently.
	WSStrictErrors bool `env:"WS_STRICT_ERRORS,default=false"`

	CORSOrigin string `env:"CORS_ORIGIN,default=*"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
