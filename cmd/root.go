package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ptree",
	Short: "program tree management tool",
	Example: `ptree serve
ptree db migrate
ptree tree show -c LDROI100B -y 2021
ptree tree paste -c LDROI100B -y 2021 -p LDROI100B/LDROI100T --child LDROI1004
ptree tree detach -c LDROI100B -y 2021 -p LDROI100B/LDROI100T/LDROI1004
ptree link update -c LDROI100B -y 2021 --parent LDROI100T --child LDROI1004 --block 12
ptree prerequisite set -c LDROI100B -y 2021 -p LDROI100B/LDROI100T/LDROI1004 -e "LDROI1001 ET LDROI1002"
ptree tree fill -c LDROI100B -y 2022`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(prerequisiteCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
