package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.opentelemetry.io/collector/config/configopaque"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

const (
	EnvPrefix = "swhealth"

	DefaultOutputDir      = "health_check_logs"
	DefaultReportPrefix   = "SWITCH_HEALTH_CHECK"
	DefaultConnectTimeout = 20 * time.Second
	DefaultCommandTimeout = 30 * time.Second
	DefaultHistoryLimit   = 20
	// MinInterval matches the one second resolution of report file names
	MinInterval           = time.Second
)

// Settings holds the runtime options read from the configuration file,
// SWHEALTH_* environment variables and command line flags.
type Settings struct {
	OutputDir      string        `mapstructure:"output_dir"`
	ReportPrefix   string        `mapstructure:"report_prefix"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	// HistoryDB is the SQLite file for run history, empty disables it
	HistoryDB string `mapstructure:"history_db"`
	// MetricsListen is the address serving /metrics, empty disables it
	MetricsListen string `mapstructure:"metrics_listen"`
	// Interval repeats the run, zero runs once
	Interval time.Duration `mapstructure:"interval"`
	LogFile  string        `mapstructure:"log_file"`

	// credentials used when neither the switch nor the defaults block set them
	Username       string              `mapstructure:"username"`
	Password       configopaque.String `mapstructure:"password"`
	EnablePassword configopaque.String `mapstructure:"enable_password"`
}

var settingDefaults = map[string]interface{}{
	"output_dir":      DefaultOutputDir,
	"report_prefix":   DefaultReportPrefix,
	"connect_timeout": DefaultConnectTimeout,
	"command_timeout": DefaultCommandTimeout,
	"history_db":      "",
	"metrics_listen":  "",
	"interval":        time.Duration(0),
	"log_file":        "",
	"username":        "",
	"password":        "",
	"enable_password": "",
}

// LoadSettings reads settings into v from path (when set) and the environment
func LoadSettings(v *viper.Viper, path string) (Settings, error) {
	var s Settings

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range settingDefaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		fh, err := os.Open(path)
		if err != nil {
			return s, errors.Wrap(ErrConfig, err.Error())
		}
		defer fh.Close()

		if err = v.ReadConfig(fh); err != nil {
			return s, errors.Wrap(ErrConfig, "ReadConfig error: "+err.Error())
		}
	}

	if err := v.Unmarshal(&s); err != nil {
		return s, errors.Wrap(ErrConfig, "Unmarshal error: "+err.Error())
	}

	if err := s.validate(); err != nil {
		return s, err
	}

	return s, nil
}

func (s Settings) validate() error {
	if strings.TrimSpace(s.OutputDir) == "" {
		return errors.Wrap(ErrConfig, "output_dir must not be empty")
	}
	if s.ConnectTimeout <= 0 {
		return errors.Wrap(ErrConfig, "connect_timeout must be positive")
	}
	if s.CommandTimeout <= 0 {
		return errors.Wrap(ErrConfig, "command_timeout must be positive")
	}
	if s.Interval < 0 {
		return errors.Wrap(ErrConfig, "interval must not be negative")
	}
	if s.Interval > 0 && s.Interval < MinInterval {
		return errors.Wrap(ErrConfig, "interval must be at least "+MinInterval.String())
	}
	return nil
}

// CredentialDefaults returns the lowest priority values for inventory entries
func (s Settings) CredentialDefaults() entities.DeviceSpec {
	return entities.DeviceSpec{
		Username:       s.Username,
		Password:       s.Password,
		EnablePassword: s.EnablePassword,
	}
}
