package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override flags, e.g.
// SIMFORGE_MAX_TIME for --max-time.
const EnvPrefix = "SIMFORGE"

// rootCmd is the base command for the CLI
var rootCmd = newRootCmd()

// newRootCmd builds the command tree around its own viper instance.
// Values resolve as flags, then environment, then the --config file; a
// key none of them set falls back to the scenario file or flag default.
func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "simforge",
		Short:         "Discrete-event simulator for distributed-system topologies",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v); err != nil {
				return err
			}
			level, err := logrus.ParseLevel(v.GetString("log"))
			if err != nil {
				logrus.Fatalf("Invalid log level: %s", v.GetString("log"))
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().String("config", "", "Config file (YAML, JSON or TOML) supplying flag values")
	root.PersistentFlags().String("log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log", root.PersistentFlags().Lookup("log"))

	root.AddCommand(newRunCmd(v), newValidateCmd(), newServeCmd(v))
	return root
}

func loadConfig(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		logrus.Debugf("using config file %s", v.ConfigFileUsed())
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
