package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"cf-pages-cli/internal/api"
	"cf-pages-cli/internal/config"
	"cf-pages-cli/internal/output"
)

var getEnvVarsCmd = &cobra.Command{
	Use:   "get-env-vars",
	Short: "Download environment variables into a local JSON file",
	Long: "Download the environment variables of a Pages project into a local JSON " +
		"document with one section per environment. By default the project-level " +
		"settings are fetched and both sections are populated; with --deployment " +
		"only the environment that deployment targets is populated and the other " +
		"is null.",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetString("account")
		token, _ := cmd.Flags().GetString("token")
		project, _ := cmd.Flags().GetString("project")
		deployment, _ := cmd.Flags().GetString("deployment")
		outPath, _ := cmd.Flags().GetString("output")

		creds, err := config.ResolveCredentials(account, token, os.LookupEnv)
		if err != nil {
			return err
		}
		projectName, err := config.Require("project", project, config.EnvProject, os.LookupEnv)
		if err != nil {
			return err
		}
		deploymentID := config.Resolve(deployment, config.EnvDeployment, os.LookupEnv)
		outPath = config.Resolve(outPath, config.EnvOutput, os.LookupEnv)

		client := api.NewClient(creds.Account, creds.Token)
		doc, err := client.FetchVariables(projectName, deploymentID)
		if err != nil {
			return err
		}
		data, err := doc.Marshal()
		if err != nil {
			return err
		}
		return output.Write(cmd.OutOrStdout(), outPath, data)
	},
}

func init() {
	getEnvVarsCmd.Flags().String("account", "", "Cloudflare account ID")
	getEnvVarsCmd.Flags().String("token", "", "Cloudflare access token")
	getEnvVarsCmd.Flags().String("project", "", "Name of the Pages project")
	getEnvVarsCmd.Flags().String("deployment", "", "Deployment ID")
	getEnvVarsCmd.Flags().String("output", "", "Path to save the JSON file. Prints to stdout if not provided")
	rootCmd.AddCommand(getEnvVarsCmd)
}
