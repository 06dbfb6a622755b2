// Package cmd implements the CLI commands for the immuclient
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elslush/immudb4go/application"
	"github.com/elslush/immudb4go/client"
	"github.com/elslush/immudb4go/internal"
)

// RootCmd represents the base "immuclient" command when called without
// any subcommands.
var RootCmd = &cobra.Command{
	Use:   "immuclient",
	Short: "Verified immudb client in Go",
	Long: `immuclient talks to an immudb server and cryptographically verifies
every response produced by a safe-* command before trusting it.`,
}

// Execute runs RootCmd, whose subcommands and flags are registered by
// the package's init functions, and exits with a non-zero status on
// error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of immuclient.",
	Long:  `Print the version number of immuclient.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("immuclient v" + internal.Version)
	},
}

func init() {
	RootCmd.PersistentFlags().StringP("config", "c", "config.toml", "Path of the client configuration file")
	RootCmd.AddCommand(versionCmd)
}

// withClient loads the configuration, opens a session and hands the
// connected client to fn, closing everything on the way out.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *client.ImmuClient) error) error {
	confPath := cmd.Flag("config").Value.String()

	opts := client.DefaultOptions()
	if _, err := os.Stat(confPath); err == nil {
		conf, err := application.LoadClientConfig(confPath)
		if err != nil {
			return err
		}
		opts = client.FromConfig(conf)
	}

	c := client.NewImmuClient(opts)
	ctx := context.Background()
	if err := c.Open(ctx, opts.Username, opts.Password, opts.Database); err != nil {
		return err
	}
	defer c.Close(ctx)

	return fn(ctx, c)
}
