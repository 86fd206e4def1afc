package cmd

import (
	"github.com/emrgen/programtree"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "link commands",
}

func init() {
	linkCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	linkCmd.AddCommand(updateLinkCmd())
}

// linkFlags are the editable link attributes. Unset numeric flags stay nil.
type linkFlags struct {
	relativeCredits int
	minCredits      int
	maxCredits      int
	block           int
	link            command.Link
}

func (l *linkFlags) bind(c *cobra.Command) {
	c.Flags().IntVar(&l.relativeCredits, "relative-credits", 0, "relative credits")
	c.Flags().IntVar(&l.minCredits, "min-credits", 0, "minimum credits")
	c.Flags().IntVar(&l.maxCredits, "max-credits", 0, "maximum credits")
	c.Flags().IntVar(&l.block, "block", 0, "blocks as increasing digits, e.g. 12")
	c.Flags().BoolVar(&l.link.IsMandatory, "mandatory", false, "the element is mandatory")
	c.Flags().BoolVar(&l.link.AccessCondition, "access-condition", false, "the element is an access condition")
	c.Flags().StringVar(&l.link.Comment, "comment", "", "comment")
	c.Flags().StringVar(&l.link.CommentEnglish, "comment-english", "", "comment in english")
	c.Flags().StringVar(&l.link.OwnComment, "own-comment", "", "comment of the parent on its own link")
	c.Flags().StringVar(&l.link.QuadrimesterDerogation, "derogation", "", "quadrimester derogation: Q1, Q2, Q1and2, Q1orQ2 or Q3")
	c.Flags().StringVar(&l.link.LinkType, "link-type", "", "REFERENCE for a reference link")
}

func (l *linkFlags) value(c *cobra.Command) command.Link {
	link := l.link
	set := func(name string, v int) *int {
		if !c.Flag(name).Changed {
			return nil
		}
		return &v
	}
	link.RelativeCredits = set("relative-credits", l.relativeCredits)
	link.MinCredits = set("min-credits", l.minCredits)
	link.MaxCredits = set("max-credits", l.maxCredits)
	link.Block = set("block", l.block)
	return link
}

func updateLinkCmd() *cobra.Command {
	var t command.Tree
	var parent, child string
	var parentYear, childYear int
	link := &linkFlags{}

	command := &cobra.Command{
		Use:     "update",
		Short:   "replace the attributes of a link",
		Example: "ptree link update -c LDROI100B -y 2021 --parent LDROI100T --child LDROI1001 --block 12 --mandatory",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, append(treeFlags, "parent", "child")) {
				return
			}
			if parentYear == 0 {
				parentYear = t.Year
			}
			if childYear == 0 {
				childYear = t.Year
			}

			withClient(func(client programtree.Client) error {
				ctx, id := requestContext()
				res, err := client.UpdateLink(ctx, command.UpdateLink{
					Tree:       t,
					ParentCode: parent,
					ParentYear: parentYear,
					ChildCode:  child,
					ChildYear:  childYear,
					Link:       link.value(cmd),
				})
				if err != nil {
					reportError(err, id)
					return nil
				}
				printLinks([]*service.LinkView{res})
				color.Green("link updated")
				return nil
			})
		},
	}

	bindTreeFlags(command, &t)
	command.Flags().StringVar(&parent, "parent", "", "code of the parent (required)")
	command.Flags().IntVar(&parentYear, "parent-year", 0, "year of the parent, the tree year by default")
	command.Flags().StringVar(&child, "child", "", "code of the child (required)")
	command.Flags().IntVar(&childYear, "child-year", 0, "year of the child, the tree year by default")
	link.bind(command)
	command.Flags().SortFlags = false

	return command
}
