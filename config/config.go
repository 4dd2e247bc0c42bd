package config

import (
	"log/slog"
	"net"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// EnvPrefix keeps configuration variables apart from the CGI
// meta-variables (SERVER_NAME, SERVER_PORT, ...) set by the web server.
const EnvPrefix = "ADD"

// InheritedEnv lists the variables a CGI child needs to load the same
// configuration as its host.
var InheritedEnv = []string{
	"ADD_SERVER_ENVIRONMENT",
	"ADD_LOGGING_LEVEL",
	"ADD_LOGGING_ADD_SOURCE",
}

const (
	DefaultAddress    = ":8080"
	DefaultScriptPath = "/cgi-bin/add"
)

var scriptPathPattern = regexp.MustCompile(`^/[A-Za-z0-9._~/-]*$`)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	AddSource bool   `mapstructure:"add_source"`
}

type CGIConfig struct {
	ScriptPath string `mapstructure:"script_path"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	CGI     CGIConfig     `mapstructure:"cgi"`
}

// Default returns the configuration Load produces when no file or
// environment variable overrides anything.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:     DefaultAddress,
			Environment: EnvDev,
		},
		Logging: LoggingConfig{
			Level: LogLevelInfo,
		},
		CGI: CGIConfig{
			ScriptPath: DefaultScriptPath,
		},
	}
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.add_source", false)
	v.SetDefault("cgi.script_path", DefaultScriptPath)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(ValidateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.CGI,
			validation.Required,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CGIConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CGIConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.ScriptPath,
						validation.Required,
						validation.Match(scriptPathPattern).Error("must be an absolute URL path"),
						validation.NotIn("/", "/health", "/metrics").Error("collides with a built-in route"),
					),
				)
			}),
		),
	)
}

// ValidateHostPort checks that value is a host:port string with a numeric
// port. An empty host is allowed.
func ValidateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if err := is.Port.Validate(port); err != nil {
		return validation.NewError("validation_invalid_port", "invalid port")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
