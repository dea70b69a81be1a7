package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/sdk"
)

var (
	minTrust int
	category string
	limit    int
)

var fsdk sdk.SDK

func SetSDK(s sdk.SDK) {
	fsdk = s
}

func NewServersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers [register|view|list|report|verify]",
		Short: "Servers management",
		Long:  `Register, view, list, report and verify federated tool servers.`,
	}

	registerCmd := &cobra.Command{
		Use:   "register <server_json>",
		Short: "Register server",
		Long: `Register a tool server with the node. The argument is a JSON
server descriptor with endpoint, owner and at least one tool.

Example:
  fedmesh-cli servers register '{"endpoint":"http://tools.example.com","owner":"alice","tools":[{"name":"ping"}]}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			var s federation.Server
			if err := json.Unmarshal([]byte(args[0]), &s); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			res, err := fsdk.RegisterServer(s)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "View server",
		Long:  `View server.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := fsdk.GetServer(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		Long:  `List known servers sorted by descending trust score.`,
		Run: func(cmd *cobra.Command, args []string) {
			page, err := fsdk.ListServers(sdk.ListOptions{
				MinTrust: minTrust,
				Category: category,
				Limit:    limit,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}
	listCmd.Flags().IntVar(&minTrust, "min-trust", 0, "minimum trust score")
	listCmd.Flags().StringVar(&category, "category", "", "tool category filter")
	listCmd.Flags().IntVar(&limit, "limit", 10, "maximum servers returned")

	reportCmd := &cobra.Command{
		Use:   "report <id> <reason>",
		Short: "Report server",
		Long:  `File an abuse report against a server.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			if err := fsdk.ReportServer(args[0], args[1]); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, "Report filed")
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <id> <signature>",
		Short: "Verify server owner",
		Long:  `Submit an ownership signature for a server.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			verified, err := fsdk.VerifyOwner(args[0], args[1])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, map[string]bool{"verified": verified})
		},
	}

	cmd.AddCommand(registerCmd, viewCmd, listCmd, reportCmd, verifyCmd)

	return cmd
}

func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Network stats",
		Long:  `Show the node's view of the federation network.`,
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := fsdk.Stats()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, stats)
		},
	}
}
