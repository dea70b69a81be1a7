package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/sdk"
)

var apiKey string

func NewToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools [search|call|auto]",
		Short: "Tools management",
		Long:  `Search for tools across the network and invoke them.`,
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tools",
		Long:  `Search tools across all listed servers, ranked by match quality and server trust.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			res, err := fsdk.SearchTools(args[0], sdk.SearchOptions{
				Category: category,
				MinTrust: minTrust,
				Limit:    limit,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, res)
		},
	}
	searchCmd.Flags().StringVar(&category, "category", "", "tool category filter")
	searchCmd.Flags().IntVar(&minTrust, "min-trust", 0, "minimum server trust score")
	searchCmd.Flags().IntVar(&limit, "limit", 10, "maximum matches returned")

	callCmd := &cobra.Command{
		Use:   "call <server_id> <tool> [params_json]",
		Short: "Call tool",
		Long: `Invoke a tool on a specific server.

Example:
  fedmesh-cli tools call b1d10738-c5d7-4ff1-8f4d-b9328ce6f040 ping '{"host":"example.com"}'`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 || len(args) > 3 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			params, err := parseParams(args)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			resp, err := fsdk.CallTool(federation.ToolCallRequest{
				ServerID: args[0],
				Tool:     args[1],
				Params:   params,
				APIKey:   apiKey,
			})
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, resp)
		},
	}
	callCmd.Flags().StringVar(&apiKey, "api-key", "", "bearer token forwarded to the server")

	autoCmd := &cobra.Command{
		Use:   "auto <tool> [params_json]",
		Short: "Call tool automatically",
		Long:  `Invoke a tool on the most trusted server providing it, falling back through eligible servers.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 || len(args) > 2 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			var params map[string]any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					logErrorCmd(*cmd, err)

					return
				}
			}

			resp, err := fsdk.CallToolAuto(args[0], params, minTrust)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, resp)
		},
	}
	autoCmd.Flags().IntVar(&minTrust, "min-trust", 0, "minimum server trust score")

	cmd.AddCommand(searchCmd, callCmd, autoCmd)

	return cmd
}

func parseParams(args []string) (map[string]any, error) {
	if len(args) < 3 {
		return nil, nil
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(args[2]), &params); err != nil {
		return nil, err
	}

	return params, nil
}
