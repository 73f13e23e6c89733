package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cosmossdk.io/log"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
)

const (
	flagHome = "home"

	configName = "proofpay"
	configType = "toml"
	envPrefix  = "PROOFPAY"
)

var defaultHome = os.ExpandEnv("$HOME/.proofpay")

// appState is shared by every command. It is populated before a command runs.
type appState struct {
	Logger log.Logger
	Viper  *viper.Viper

	HomePath string
	Config   types.Config
}

// NewRootCmd returns the root command of the proofpay binary.
func NewRootCmd() *cobra.Command {
	a := &appState{
		Viper: viper.New(),
	}

	rootCmd := &cobra.Command{
		Use:          "proofpay",
		Short:        "Inspect and configure ProofPay contract builds",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.Logger = log.NewLogger(cmd.ErrOrStderr(), log.ColorOption(false))

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			a.Config = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.HomePath, flagHome, defaultHome, "directory holding proofpay.toml")

	rootCmd.AddCommand(
		analyzeCmd(a),
		entryPointsCmd(a),
		configCmd(a),
	)

	return rootCmd
}

// configFile returns the path of the config file in the home directory.
func (a *appState) configFile() string {
	return filepath.Join(a.HomePath, configName+"."+configType)
}

// loadConfig reads proofpay.toml from the home directory. Missing keys keep their defaults and
// PROOFPAY_* environment variables take precedence over the file.
func (a *appState) loadConfig() (types.Config, error) {
	v := a.Viper
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(a.HomePath)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v, types.DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, err
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg types.Config) {
	v.SetDefault("ibc_enabled", cfg.IBCEnabled)
	v.SetDefault("allowed_orders", cfg.AllowedOrders)
	v.SetDefault("supported_versions", cfg.SupportedVersions)
	v.SetDefault("default_packet_timeout", cfg.DefaultPacketTimeout.String())
	v.SetDefault("max_description_length", cfg.MaxDescriptionLength)
}
