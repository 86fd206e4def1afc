package command

import (
	"errors"

	"github.com/emrgen/programtree/internal/tree"
)

// Command is a request dispatched through the message bus.
type Command interface {
	CommandName() string
}

// Tree identifies the program tree a command applies to.
type Tree struct {
	Code string `json:"code"`
	Year int    `json:"year"`
}

func (t Tree) Identity() tree.ProgramTreeIdentity {
	return tree.ProgramTreeIdentity{Code: t.Code, Year: t.Year}
}

// Validate checks the tree is identified. The grpc validator interceptor calls
// it on every request embedding a Tree.
func (t Tree) Validate() error {
	if t.Code == "" {
		return errors.New("code is required")
	}
	if t.Year <= 0 {
		return errors.New("year is required")
	}
	return nil
}

// Link carries the editable attributes of a link.
type Link struct {
	RelativeCredits        *int   `json:"relative_credits,omitempty"`
	MinCredits             *int   `json:"min_credits,omitempty"`
	MaxCredits             *int   `json:"max_credits,omitempty"`
	IsMandatory            bool   `json:"is_mandatory"`
	Block                  *int   `json:"block,omitempty"`
	AccessCondition        bool   `json:"access_condition"`
	Comment                string `json:"comment,omitempty"`
	CommentEnglish         string `json:"comment_english,omitempty"`
	OwnComment             string `json:"own_comment,omitempty"`
	QuadrimesterDerogation string `json:"quadrimester_derogation,omitempty"`
	LinkType               string `json:"link_type,omitempty"`
}

func (l Link) Attributes() tree.LinkAttributes {
	return tree.LinkAttributes{
		RelativeCredits:        l.RelativeCredits,
		MinCredits:             l.MinCredits,
		MaxCredits:             l.MaxCredits,
		IsMandatory:            l.IsMandatory,
		Block:                  l.Block,
		AccessCondition:        l.AccessCondition,
		Comment:                l.Comment,
		CommentEnglish:         l.CommentEnglish,
		OwnComment:             l.OwnComment,
		QuadrimesterDerogation: tree.QuadrimesterDerogation(l.QuadrimesterDerogation),
		LinkType:               tree.LinkType(l.LinkType),
	}
}

type GetProgramTree struct {
	Tree
}

func (GetProgramTree) CommandName() string { return "GetProgramTree" }

// GetContent returns the rendered tree, served from the content cache when possible.
type GetContent struct {
	Tree
}

func (GetContent) CommandName() string { return "GetContent" }

// PasteElement attaches the node ChildCode/ChildYear under the node at Path.
// An empty path is the root of the tree.
type PasteElement struct {
	Tree
	Path      string `json:"path"`
	ChildCode string `json:"child_code"`
	ChildYear int    `json:"child_year"`
	Link
}

func (PasteElement) CommandName() string { return "PasteElement" }

func (p PasteElement) Validate() error {
	if err := p.Tree.Validate(); err != nil {
		return err
	}
	if p.ChildCode == "" {
		return errors.New("child code is required")
	}
	return nil
}

// DetachElement removes the link ending at Path.
type DetachElement struct {
	Tree
	Path string `json:"path"`
}

func (DetachElement) CommandName() string { return "DetachElement" }

type UpdateLink struct {
	Tree
	ParentCode string `json:"parent_code"`
	ParentYear int    `json:"parent_year"`
	ChildCode  string `json:"child_code"`
	ChildYear  int    `json:"child_year"`
	Link
}

func (UpdateLink) CommandName() string { return "UpdateLink" }

func (u UpdateLink) LinkIdentity() tree.LinkIdentity {
	return tree.LinkIdentity{
		ParentCode: u.ParentCode,
		ParentYear: u.ParentYear,
		ChildCode:  u.ChildCode,
		ChildYear:  u.ChildYear,
	}
}

// BulkUpdateLinks applies every update to the tree or none of them.
type BulkUpdateLinks struct {
	Tree
	Links []UpdateLink `json:"links"`
}

func (BulkUpdateLinks) CommandName() string { return "BulkUpdateLinks" }

type OrderUpLink struct {
	Tree
	Path string `json:"path"`
}

func (OrderUpLink) CommandName() string { return "OrderUpLink" }

type OrderDownLink struct {
	Tree
	Path string `json:"path"`
}

func (OrderDownLink) CommandName() string { return "OrderDownLink" }

// SetPrerequisite sets the expression of the learning unit at Path. An empty
// expression removes the prerequisite.
type SetPrerequisite struct {
	Tree
	Path       string `json:"path"`
	Expression string `json:"expression"`
}

func (SetPrerequisite) CommandName() string { return "SetPrerequisite" }

// GetLinksUsingNode lists the links to the node in every training or mini training using it.
type GetLinksUsingNode struct {
	Code string `json:"code"`
	Year int    `json:"year"`
}

func (GetLinksUsingNode) CommandName() string { return "GetLinksUsingNode" }

func (g GetLinksUsingNode) Validate() error {
	return Tree{Code: g.Code, Year: g.Year}.Validate()
}

// FillFromLastYear copies the content of the tree of Year-1 into the tree of Year.
type FillFromLastYear struct {
	Tree
}

func (FillFromLastYear) CommandName() string { return "FillFromLastYear" }

type DeleteProgramTree struct {
	Tree
}

func (DeleteProgramTree) CommandName() string { return "DeleteProgramTree" }
