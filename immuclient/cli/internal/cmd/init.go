package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/elslush/immudb4go/application"
	"github.com/elslush/immudb4go/client"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file for immuclient.",
	Long: `Create a file config.toml in the chosen directory, pre-filled with
the default server address, credentials and state directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := cmd.Flag("dir").Value.String()
		file := path.Join(dir, "config.toml")

		check := true
		conf := application.ClientConfig{
			Server:              client.DefaultServerURL,
			Port:                client.DefaultServerPort,
			Username:            client.DefaultUsername,
			Password:            client.DefaultPassword,
			Database:            client.DefaultDatabase,
			StateDir:            client.DefaultStateDir,
			DeploymentInfoCheck: &check,
			Logger: &application.LoggerConfig{
				Environment: "development",
			},
		}
		if err := conf.Save(file); err != nil {
			fmt.Println("Couldn't write config:", err)
			return
		}
		fmt.Println("Wrote", file)
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for the config file")
}
