package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/fedmesh/fedmesh/cli"
	"github.com/fedmesh/fedmesh/pkg/sdk"
)

const defNodeURL = "http://localhost:7000"

func main() {
	nodeURL := os.Getenv("FEDMESH_NODE_URL")
	if nodeURL == "" {
		nodeURL = defNodeURL
	}

	rootCmd := &cobra.Command{
		Use:   "fedmesh-cli",
		Short: "Fedmesh CLI",
		Long:  `Fedmesh CLI is a command line interface for interacting with a fedmesh node.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			s := sdk.NewSDK(sdk.Config{
				NodeURL: nodeURL,
			})
			cli.SetSDK(s)
		},
	}

	rootCmd.PersistentFlags().StringVarP(
		&nodeURL,
		"node-url",
		"n",
		nodeURL,
		"URL of the fedmesh node API",
	)

	rootCmd.AddCommand(cli.NewServersCmd())
	rootCmd.AddCommand(cli.NewToolsCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
