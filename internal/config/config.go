// Package config loads chatflow settings from defaults, an optional TOML file and
// CHATFLOW_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. CHATFLOW_ENGINE_MAX_STEPS maps to engine.max_steps.
const EnvPrefix = "CHATFLOW_"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Server struct {
		Port int `koanf:"port" validate:"min=1,max=65535"`
	} `koanf:"server"`

	Log struct {
		Level  string `koanf:"level" validate:"oneof=debug info warn error"`
		Format string `koanf:"format" validate:"oneof=text json"`
	} `koanf:"log"`

	API struct {
		Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	} `koanf:"api"`

	Engine struct {
		MaxSteps  int  `koanf:"max_steps" validate:"min=1"`
		Branching bool `koanf:"branching"`
	} `koanf:"engine"`

	Storage struct {
		Driver string `koanf:"driver" validate:"oneof=memory redis postgres"`
	} `koanf:"storage"`

	Redis struct {
		Addr     string        `koanf:"addr" validate:"hostname_port"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db" validate:"min=0"`
		Prefix   string        `koanf:"prefix"`
		TTL      time.Duration `koanf:"ttl" validate:"min=0"`
	} `koanf:"redis"`

	Postgres struct {
		DSN string `koanf:"dsn"`
	} `koanf:"postgres"`

	RateLimit struct {
		Requests int           `koanf:"requests" validate:"min=1"`
		Window   time.Duration `koanf:"window" validate:"gt=0"`
	} `koanf:"ratelimit"`

	Conversation struct {
		// EncryptionKey is a base64 AES-256 key. Empty disables encryption at rest.
		EncryptionKey string `koanf:"encryption_key" validate:"omitempty,base64"`
	} `koanf:"conversation"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":                 8080,
		"log.level":                   "info",
		"log.format":                  "text",
		"api.timeout":                 "10s",
		"engine.max_steps":            1000,
		"engine.branching":            false,
		"storage.driver":              DriverMemory,
		"redis.addr":                  "localhost:6379",
		"redis.db":                    0,
		"redis.prefix":                "chatflow:",
		"redis.ttl":                   "0s",
		"ratelimit.requests":          60,
		"ratelimit.window":            "1m",
		"postgres.dsn":                "",
		"conversation.encryption_key": "",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hostname_port", func(fl validator.FieldLevel) bool {
		host, port, err := net.SplitHostPort(fl.Field().String())
		if err != nil || host == "" || port == "" {
			return false
		}
		_, err = net.LookupPort("tcp", port)
		return err == nil
	})
	return v
}

// Load builds the configuration. path may be empty, in which case ./chatflow.toml
// and $HOME/.chatflow.toml are tried.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, candidate := range []string{"./chatflow.toml", "$HOME/.chatflow.toml"} {
			candidate = os.ExpandEnv(candidate)
			if _, err := os.Stat(candidate); err == nil {
				if err := k.Load(file.Provider(candidate), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading config %s: %w", candidate, err)
				}
				break
			}
		}
	}

	// Only the first underscore separates section from key, so max_steps survives.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field rules and the settings the selected storage driver needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed validation (rule: %s)", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Storage.Driver == DriverPostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required when storage.driver is postgres")
	}
	return nil
}

// Sample is a commented starting configuration file.
const Sample = `# chatflow configuration

[server]
port = 8080

[log]
level = "info"   # debug | info | warn | error
format = "text"  # text | json

[api]
timeout = "10s"  # api_call node request timeout

[engine]
max_steps = 1000
branching = false

[storage]
driver = "memory" # memory | redis | postgres

[redis]
addr = "localhost:6379"
prefix = "chatflow:"
ttl = "0s"

[postgres]
dsn = ""

[ratelimit]
requests = 60
window = "1m"
`

// Init writes Sample to path unless a file already exists there.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists at %s", path)
	}
	return os.WriteFile(path, []byte(Sample), 0o644)
}
