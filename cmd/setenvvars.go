package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cf-pages-cli/internal/api"
	"cf-pages-cli/internal/config"
	"cf-pages-cli/internal/envvars"
	"cf-pages-cli/internal/output"
)

var setEnvVarsCmd = &cobra.Command{
	Use:   "set-env-vars",
	Short: "Upload environment variables from a local JSON file",
	Long: "Read a local JSON document and patch the project's variables to match " +
		"it. Only the difference is submitted: unchanged variables are left alone, " +
		"variables missing from the document are deleted, and an environment whose " +
		"section is null is not touched at all. When the document matches the " +
		"remote state no request is sent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, _ := cmd.Flags().GetString("account")
		token, _ := cmd.Flags().GetString("token")
		project, _ := cmd.Flags().GetString("project")
		file, _ := cmd.Flags().GetString("file")

		creds, err := config.ResolveCredentials(account, token, os.LookupEnv)
		if err != nil {
			return err
		}
		projectName, err := config.Require("project", project, config.EnvProject, os.LookupEnv)
		if err != nil {
			return err
		}
		filePath, err := config.Require("file", file, config.EnvFile, os.LookupEnv)
		if err != nil {
			return err
		}

		data, err := output.ReadFile(filePath)
		if err != nil {
			return err
		}
		desired, err := envvars.ParseDocument(data)
		if err != nil {
			return err
		}

		client := api.NewClient(creds.Account, creds.Token)
		proj, err := client.Project(projectName)
		if err != nil {
			return err
		}
		updated, err := client.UpdateVariables(projectName, proj.DeploymentConfigs.Document(), desired)
		if err != nil {
			return err
		}
		if !updated {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes detected. Not submitting patch.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Environment variables successfully updated")
		return nil
	},
}

func init() {
	setEnvVarsCmd.Flags().String("account", "", "Cloudflare account ID")
	setEnvVarsCmd.Flags().String("token", "", "Cloudflare access token")
	setEnvVarsCmd.Flags().String("project", "", "Name of the Pages project")
	setEnvVarsCmd.Flags().String("file", "", "Path to the file containing desired environment variables")
	rootCmd.AddCommand(setEnvVarsCmd)
}
