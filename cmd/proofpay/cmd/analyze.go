package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay"
	"github.com/proofpay/proofpay-ibc/modules/apps/proofpay/keeper"
	"github.com/proofpay/proofpay-ibc/modules/core/entrypoint"
	entrypointtypes "github.com/proofpay/proofpay-ibc/modules/core/entrypoint/types"
)

// dispatcher builds the contract selected by the loaded config over an empty store.
func (a *appState) dispatcher() *entrypoint.Dispatcher {
	k := keeper.NewKeeper(entrypointtypes.NewKVStoreService(), a.Config, a.Logger)
	return entrypoint.NewDispatcher(proofpay.New(k), a.Logger)
}

func analyzeCmd(a *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Print the static analysis report a host checks when the contract is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(a.dispatcher().Analyze(), "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func entryPointsCmd(a *appState) *cobra.Command {
	return &cobra.Command{
		Use:     "entrypoints",
		Aliases: []string{"ep"},
		Short:   "List the entry points exported by the contract build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, entryPoint := range a.dispatcher().EntryPoints() {
				fmt.Fprintln(cmd.OutOrStdout(), entryPoint)
			}
			return nil
		},
	}
}
