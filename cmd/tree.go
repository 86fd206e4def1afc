package cmd

import (
	"os"
	"strconv"

	"github.com/emrgen/programtree"
	"github.com/emrgen/programtree/internal/command"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "program tree commands",
}

func init() {
	treeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	treeCmd.AddCommand(showTreeCmd())
	treeCmd.AddCommand(pasteCmd())
	treeCmd.AddCommand(detachCmd())
	treeCmd.AddCommand(orderCmd("order-up", "move an element before its previous sibling", true))
	treeCmd.AddCommand(orderCmd("order-down", "move an element after its next sibling", false))
	treeCmd.AddCommand(usedByCmd())
	treeCmd.AddCommand(fillCmd())
	treeCmd.AddCommand(deleteTreeCmd())
}

// withClient runs f with a client of the current context, reporting errors.
func withClient(f func(client programtree.Client) error) {
	client, err := newClient()
	if err != nil {
		color.Red("cannot connect: %v", err)
		return
	}
	defer client.Close()

	if err := f(client); err != nil {
		color.Red("%v", err)
	}
}

func showTreeCmd() *cobra.Command {
	var t command.Tree

	command := &cobra.Command{
		Use:     "show",
		Short:   "show a program tree",
		Example: "ptree tree show -c LDROI100B -y 2021",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, treeFlags) {
				return
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				view, err := client.GetProgramTree(ctx, command.GetProgramTree{Tree: t})
				if err != nil {
					reportError(err, id)
					return nil
				}
				printTree(view)
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().SortFlags = false

	return command
}

func pasteCmd() *cobra.Command {
	var t command.Tree
	var path, child string
	var childYear int
	link := &linkFlags{}

	command := &cobra.Command{
		Use:     "paste",
		Short:   "attach an existing element in a program tree",
		Example: "ptree tree paste -c LDROI100B -y 2021 -p LDROI100B/LDROI100T --child LDROI1004 --block 1",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, append(treeFlags, "child")) {
				return
			}
			if childYear == 0 {
				childYear = t.Year
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				resolved, err := resolvePath(ctx, client, t, path)
				if err != nil {
					return err
				}
				res, err := client.PasteElement(ctx, command.PasteElement{
					Tree:      t,
					Path:      resolved,
					ChildCode: child,
					ChildYear: childYear,
					Link:      link.value(cmd),
				})
				if err != nil {
					reportError(err, id)
					return nil
				}
				color.Green("%s attached under %s with order %d", res.ChildCode, res.ParentCode, res.Order)
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().StringVarP(&path, "path", "p", "", "path of the parent, codes separated by / (root by default)")
	command.Flags().StringVar(&child, "child", "", "code of the element to attach (required)")
	command.Flags().IntVar(&childYear, "child-year", 0, "year of the element, the tree year by default")
	link.bind(command)
	command.Flags().SortFlags = false

	return command
}

func detachCmd() *cobra.Command {
	var t command.Tree
	var path string

	command := &cobra.Command{
		Use:     "detach",
		Short:   "detach an element from a program tree",
		Example: "ptree tree detach -c LDROI100B -y 2021 -p LDROI100B/LDROI100T/LDROI1004",
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
				res, err := client.DetachElement(ctx, command.DetachElement{Tree: t, Path: resolved})
				if err != nil {
					reportError(err, id)
					return nil
				}
				for _, warning := range res.Warnings {
					color.Yellow(warning)
				}
				color.Green("%s detached from %s", res.Link.ChildCode, res.Link.ParentCode)
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().StringVarP(&path, "path", "p", "", "path of the element, codes separated by / (required)")
	command.Flags().SortFlags = false

	return command
}

func orderCmd(use, short string, up bool) *cobra.Command {
	var t command.Tree
	var path string

	command := &cobra.Command{
		Use:   use,
		Short: short,
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
				if up {
					_, err = client.OrderUpLink(ctx, command.OrderUpLink{Tree: t, Path: resolved})
				} else {
					_, err = client.OrderDownLink(ctx, command.OrderDownLink{Tree: t, Path: resolved})
				}
				if err != nil {
					reportError(err, id)
					return nil
				}

				view, err := client.GetProgramTree(ctx, command.GetProgramTree{Tree: t})
				if err != nil {
					return err
				}
				printTree(view)
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().StringVarP(&path, "path", "p", "", "path of the element, codes separated by / (required)")
	command.Flags().SortFlags = false

	return command
}

func usedByCmd() *cobra.Command {
	var code string
	var year int

	command := &cobra.Command{
		Use:     "used-by",
		Short:   "list the links to an element in every program",
		Example: "ptree tree used-by -c LDROI1001 -y 2021",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, treeFlags) {
				return
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				res, err := client.GetLinksUsingNode(ctx, command.GetLinksUsingNode{Code: code, Year: year})
				if err != nil {
					reportError(err, id)
					return nil
				}
				printLinks(res.Links)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&code, "code", "c", "", "code of the element (required)")
	command.Flags().IntVarP(&year, "year", "y", 0, "academic year of the element (required)")

	return command
}

func fillCmd() *cobra.Command {
	var t command.Tree

	command := &cobra.Command{
		Use:     "fill",
		Short:   "fill a program tree with the content of the previous year",
		Example: "ptree tree fill -c LDROI100B -y 2022",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, treeFlags) {
				return
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				res, err := client.FillFromLastYear(ctx, command.FillFromLastYear{Tree: t})
				if err != nil {
					reportError(err, id)
					return nil
				}

				color.Green("%s %d filled with %d links", res.Code, res.Year, res.Links)
				if len(res.Events) == 0 {
					return nil
				}
				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Event", "Element", "Message"})
				for _, event := range res.Events {
					table.Append([]string{event.Type, event.Code + " " + strconv.Itoa(event.Year), event.Message})
				}
				table.Render()
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().SortFlags = false

	return command
}

func deleteTreeCmd() *cobra.Command {
	var t command.Tree

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a program tree and the groups it owns",
		Example: "ptree tree delete -c LDROI100B -y 2021",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, treeFlags) {
				return
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				if _, err := client.DeleteProgramTree(ctx, command.DeleteProgramTree{Tree: t}); err != nil {
					reportError(err, id)
					return nil
				}
				color.Green("%s %d deleted", t.Code, t.Year)
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().SortFlags = false

	return command
}
