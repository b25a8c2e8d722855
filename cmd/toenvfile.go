package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"cf-pages-cli/internal/config"
	"cf-pages-cli/internal/dotenv"
	"cf-pages-cli/internal/envvars"
	"cf-pages-cli/internal/output"
)

var toEnvFileEnvironment = envvars.Production

var toEnvFileCmd = &cobra.Command{
	Use:   "to-env-file FILE",
	Short: "Generate .env file for front-end development",
	Long: "Convert one environment of a local JSON variables document into dotenv " +
		"format, one KEY=VALUE line per variable in sorted order. The command is " +
		"purely local: no credentials and no network access are needed.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		empty, _ := cmd.Flags().GetBool("empty")
		outPath, _ := cmd.Flags().GetString("output")

		environment := toEnvFileEnvironment
		if !cmd.Flags().Changed("environment") {
			if v, ok := os.LookupEnv(config.EnvEnvironment); ok && v != "" {
				if err := environment.Set(v); err != nil {
					return err
				}
			}
		}
		empty, err := config.ResolveBool(empty, cmd.Flags().Changed("empty"), config.EnvEmpty, os.LookupEnv)
		if err != nil {
			return err
		}
		outPath = config.Resolve(outPath, config.EnvOutput, os.LookupEnv)

		data, err := output.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := envvars.ParseDocument(data)
		if err != nil {
			return err
		}
		rendered, err := dotenv.Render(doc, environment, empty)
		if err != nil {
			return err
		}
		return output.Write(cmd.OutOrStdout(), outPath, []byte(rendered))
	},
}

func init() {
	toEnvFileCmd.Flags().Var(&toEnvFileEnvironment, "environment", "Environment to export")
	toEnvFileCmd.Flags().Bool("empty", false, "Emit the variable names only, with empty values")
	toEnvFileCmd.Flags().String("output", "", "Path to save the .env file. Prints to stdout if not provided")
	rootCmd.AddCommand(toEnvFileCmd)
}
