package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elslush/immudb4go/client"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Read the current value of a key without verification.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			entry, err := c.Get(ctx, []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("tx:    %d\nkey:   %s\nvalue: %s\n", entry.Tx, entry.Key, entry.Value)
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a key-value pair without verification.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			hdr, err := c.Set(ctx, []byte(args[0]), []byte(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("committed tx: %d\n", hdr.Id)
			return nil
		})
	},
}

var safeGetCmd = &cobra.Command{
	Use:   "safe-get <key>",
	Short: "Read a key and verify the server's proofs first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			entry, err := c.VerifiedGet(ctx, []byte(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("verified\ntx:    %d\nkey:   %s\nvalue: %s\n", entry.Tx, entry.Key, entry.Value)
			return nil
		})
	},
}

var safeSetCmd = &cobra.Command{
	Use:   "safe-set <key> <value>",
	Short: "Write a key-value pair and verify its commit proof.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			hdr, err := c.VerifiedSet(ctx, []byte(args[0]), []byte(args[1]))
			if err != nil {
				return err
			}
			st, err := c.CurrentState(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("verified tx: %d\nnew state:   %d\n", hdr.Id, st.TxID)
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(getCmd, setCmd, safeGetCmd, safeSetCmd)
}
