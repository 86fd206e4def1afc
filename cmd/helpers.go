package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/programtree"
	"github.com/emrgen/programtree/internal/command"
	"github.com/emrgen/programtree/internal/service"
	"github.com/emrgen/programtree/internal/tree"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		_ = cmd.Usage()

		return true
	}

	return false
}

// bindTreeFlags adds the flags identifying the program tree.
func bindTreeFlags(c *cobra.Command, t *command.Tree) {
	c.Flags().StringVarP(&t.Code, "code", "c", "", "code of the root (required)")
	c.Flags().IntVarP(&t.Year, "year", "y", 0, "academic year of the root (required)")
}

var treeFlags = []string{"code", "year"}

func reportError(err error, correlationID string) {
	logrus.WithField("correlation_id", correlationID).Error(err)
}

// resolvePath turns a path of codes such as LDROI100B/LDROI100T into the path
// of node ids used by the server. A path of ids is returned as is.
func resolvePath(ctx context.Context, client programtree.Client, t command.Tree, path string) (string, error) {
	if path == "" || isIDPath(path) {
		return path, nil
	}

	view, err := client.GetProgramTree(ctx, command.GetProgramTree{Tree: t})
	if err != nil {
		return "", err
	}

	codes := strings.Split(path, "/")
	if codes[0] != view.Root.Code {
		return "", fmt.Errorf("path %s does not start with the root %s", path, view.Root.Code)
	}
	node := view.Root
	for _, code := range codes[1:] {
		var next *service.NodeView
		for _, child := range node.Children {
			if child.Code == code {
				next = child
				break
			}
		}
		if next == nil {
			return "", fmt.Errorf("%s is not a child of %s", code, node.Code)
		}
		node = next
	}
	return node.Path, nil
}

func isIDPath(path string) bool {
	for _, part := range strings.Split(path, tree.PathSeparator) {
		if _, err := strconv.Atoi(part); err != nil {
			return false
		}
	}
	return true
}

func printTree(view *service.ProgramTreeView) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Element", "Type", "Credits", "Block", "Mandatory", "Prerequisite", "Path"})
	table.SetAutoWrapText(false)
	appendNode(table, view.Root, 0)
	table.Render()
}

func appendNode(table *tablewriter.Table, node *service.NodeView, depth int) {
	credits, block, mandatory := "", "", ""
	if node.Credits != nil {
		credits = strconv.FormatFloat(*node.Credits, 'f', -1, 64)
	}
	if node.Link != nil {
		block = node.Link.BlockRepr
		if node.Link.RelativeCreditsRepr != "" {
			credits = node.Link.RelativeCreditsRepr
		}
		if node.Link.IsMandatory {
			mandatory = "yes"
		}
	}

	label := strings.Repeat("  ", depth) + node.Code + " " + node.Title
	table.Append([]string{label, node.NodeType, credits, block, mandatory, node.Prerequisite, node.Path})
	for _, child := range node.Children {
		appendNode(table, child, depth+1)
	}
}

func printLinks(links []*service.LinkView) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"PK", "Parent", "Child", "Order", "Block", "Relative credits", "Mandatory", "Comment"})
	for _, link := range links {
		table.Append([]string{
			strconv.Itoa(link.PK),
			fmt.Sprintf("%s %d", link.ParentCode, link.ParentYear),
			fmt.Sprintf("%s %d", link.ChildCode, link.ChildYear),
			strconv.Itoa(link.Order),
			link.BlockRepr,
			link.RelativeCreditsRepr,
			strconv.FormatBool(link.IsMandatory),
			link.Comment,
		})
	}
	table.Render()
}
