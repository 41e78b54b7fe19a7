package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carlosrabelo/swhealth/infrastructure/config"
	"github.com/carlosrabelo/swhealth/internal/logger"
)

// cli carries the state shared by every subcommand of one invocation
type cli struct {
	v         *viper.Viper
	cfgFile   string
	verbosity int
	logFile   *os.File
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:          "swhealth",
		Short:        "Health check for a fleet of network switches",
		SilenceUsage: true,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.logFile != nil {
				c.logFile.Close()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "YAML configuration file (default: search ./, user config dir, /etc/swhealth)")
	root.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "increase log verbosity, -v debug, -vv raw switch output")
	root.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	if err := c.v.BindPFlag("log_file", root.PersistentFlags().Lookup("log-file")); err != nil {
		panic(err)
	}

	root.AddCommand(
		newRunCmd(c),
		newHistoryCmd(c),
		newVersionCmd(),
	)

	return root
}

// loadSettings resolves the configuration file and sets up logging from it
func (c *cli) loadSettings() (config.Settings, string, error) {
	logger.SetLevel(logger.LevelFromVerbosity(c.verbosity))

	path, err := config.ResolvePath(c.cfgFile)
	if err != nil {
		return config.Settings{}, "", err
	}

	settings, err := config.LoadSettings(c.v, path)
	if err != nil {
		return settings, path, err
	}

	if settings.LogFile != "" {
		f, err := os.OpenFile(settings.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return settings, path, errors.Wrap(config.ErrConfig, "log_file: "+err.Error())
		}
		logger.GlobalSetLogFile(f)
		c.logFile = f
	}

	logger.New().Debug().Str("config", path).Msg("configuration loaded")

	return settings, path, nil
}
