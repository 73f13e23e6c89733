package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	errorsmod "cosmossdk.io/errors"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/types"
)

const flagForce = "force"

func configCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage the contract build configuration",
	}

	cmd.AddCommand(
		configInitCmd(a),
		configShowCmd(a),
	)

	return cmd
}

func configInitCmd(a *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, err := cmd.Flags().GetBool(flagForce)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(a.HomePath, 0o755); err != nil {
				return err
			}

			// a fresh instance, file and environment values must not leak into the defaults
			v := viper.New()
			setDefaults(v, types.DefaultConfig())

			path := a.configFile()
			if force {
				err = v.WriteConfigAs(path)
			} else {
				err = v.SafeWriteConfigAs(path)
			}
			if err != nil {
				return errorsmod.Wrapf(err, "failed to write %s", path)
			}

			a.Logger.Info("config written", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolP(flagForce, "f", false, "overwrite an existing config file")
	return cmd
}

func configShowCmd(a *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(configOutput{
				IBCEnabled:           a.Config.IBCEnabled,
				AllowedOrders:        a.Config.AllowedOrders,
				SupportedVersions:    a.Config.SupportedVersions,
				DefaultPacketTimeout: a.Config.DefaultPacketTimeout.String(),
				MaxDescriptionLength: a.Config.MaxDescriptionLength,
			}, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

type configOutput struct {
	IBCEnabled           bool     `json:"ibc_enabled"`
	AllowedOrders        []string `json:"allowed_orders"`
	SupportedVersions    []string `json:"supported_versions"`
	DefaultPacketTimeout string   `json:"default_packet_timeout"`
	MaxDescriptionLength int      `json:"max_description_length"`
}
