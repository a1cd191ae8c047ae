package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/pagesift/pagesift/internal/console"
	"github.com/pagesift/pagesift/internal/creds"
	"github.com/pagesift/pagesift/internal/extract"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage stored API keys",
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := args[0]
		if !extract.Valid(provider) {
			return eris.Errorf("unsupported provider %q (valid: %s)", provider, extract.ValidNames())
		}
		if !extract.NeedsKey(provider) {
			return eris.Errorf("provider %q does not use an API key", provider)
		}

		key, err := console.New().AskSecret(fmt.Sprintf("Enter your %s API key", provider))
		if err != nil {
			return err
		}
		if key == "" {
			return eris.New("empty API key")
		}

		path, err := creds.DefaultPath()
		if err != nil {
			return err
		}
		if err := creds.NewStore(path).Set(provider, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved key for %s to %s\n", provider, path)
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers with a stored key",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := creds.DefaultPath()
		if err != nil {
			return err
		}
		providers, err := creds.NewStore(path).Providers()
		if err != nil {
			return err
		}
		if len(providers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no stored keys")
			return nil
		}
		for _, p := range providers {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var keysPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the credential file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := creds.DefaultPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd, keysListCmd, keysPathCmd)
	rootCmd.AddCommand(keysCmd)
}
