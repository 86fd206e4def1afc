package cmd

import (
	"github.com/emrgen/programtree"
	"github.com/emrgen/programtree/internal/command"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var prerequisiteCmd = &cobra.Command{
	Use:   "prerequisite",
	Short: "prerequisite commands",
}

func init() {
	prerequisiteCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	prerequisiteCmd.AddCommand(setPrerequisiteCmd())
}

func setPrerequisiteCmd() *cobra.Command {
	var t command.Tree
	var path, expression string

	command := &cobra.Command{
		Use:     "set",
		Short:   "set the prerequisite of a learning unit, an empty expression removes it",
		Example: `ptree prerequisite set -c LDROI100B -y 2021 -p LDROI100B/LDROI100T/LDROI1004 -e "(LDROI1001 OU LDROI1002) ET LDROI1003"`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, append(treeFlags, "path")) {
				return
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				resolved, err := resolvePath(ctx, client, t, path)
				if err != nil {
					return err
				}
				res, err := client.SetPrerequisite(ctx, command.SetPrerequisite{Tree: t, Path: resolved, Expression: expression})
				if err != nil {
					reportError(err, id)
					return nil
				}
				if res.Expression == "" {
					color.Green("prerequisite of %s removed", res.Code)
					return nil
				}
				printField(res.Code, res.Expression)
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().StringVarP(&path, "path", "p", "", "path of the learning unit, codes separated by / (required)")
	command.Flags().StringVarP(&expression, "expression", "e", "", "prerequisite expression")
	command.Flags().SortFlags = false

	return command
}
