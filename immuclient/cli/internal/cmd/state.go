package cmd

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elslush/immudb4go/client"
	"github.com/elslush/immudb4go/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the server's health.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			health, err := c.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("status:  %v\nversion: %s\n", health.Status, health.Version)
			return nil
		})
	},
}

var stateCmd = &cobra.Command{
	Use:   "current-state",
	Short: "Print the locally pinned verified state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			st, err := c.CurrentState(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("database: %s\ntxId:     %d\ntxHash:   %s\n",
				st.Database, st.TxID, base64.StdEncoding.EncodeToString(st.TxHash))
			return nil
		})
	},
}

var sqlCmd = &cobra.Command{
	Use:   "sql <statement>",
	Short: "Run a SQL statement or query.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *client.ImmuClient) error {
			res, err := c.SQLQuery(ctx, args[0], nil)
			if err != nil {
				return err
			}
			for _, col := range res.Columns {
				fmt.Printf("%s\t", col.Name)
			}
			fmt.Println()
			for _, row := range res.Rows {
				for _, v := range row.Values {
					fmt.Printf("%s\t", sqlValueString(v))
				}
				fmt.Println()
			}
			return nil
		})
	},
}

func sqlValueString(v *schema.SQLValue) string {
	switch {
	case v == nil || v.Null:
		return "NULL"
	case v.N != nil:
		return fmt.Sprintf("%d", *v.N)
	case v.S != nil:
		return *v.S
	case v.B != nil:
		return fmt.Sprintf("%v", *v.B)
	case v.F != nil:
		return fmt.Sprintf("%g", *v.F)
	case v.Bs != nil:
		return base64.StdEncoding.EncodeToString(v.Bs)
	}
	return ""
}

func init() {
	RootCmd.AddCommand(statusCmd, stateCmd, sqlCmd)
}
