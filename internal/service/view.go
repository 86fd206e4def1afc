package service

import (
	"github.com/emrgen/programtree/internal/tree"
)

// ProgramTreeView is the serialized form of a program tree.
type ProgramTreeView struct {
	Code string    `json:"code"`
	Year int       `json:"year"`
	Root *NodeView `json:"root"`
}

type NodeView struct {
	NodeID       int         `json:"node_id"`
	Code         string      `json:"code"`
	Title        string      `json:"title"`
	Year         int         `json:"year"`
	NodeType     string      `json:"node_type"`
	Credits      *float64    `json:"credits,omitempty"`
	Path         string      `json:"path"`
	Prerequisite string      `json:"prerequisite,omitempty"`
	Link         *LinkView   `json:"link,omitempty"`
	Children     []*NodeView `json:"children,omitempty"`
}

type LinkView struct {
	PK                     int    `json:"pk"`
	ParentCode             string `json:"parent_code"`
	ParentYear             int    `json:"parent_year"`
	ChildCode              string `json:"child_code"`
	ChildYear              int    `json:"child_year"`
	Order                  int    `json:"order"`
	RelativeCredits        *int   `json:"relative_credits,omitempty"`
	RelativeCreditsRepr    string `json:"relative_credits_repr,omitempty"`
	MinCredits             *int   `json:"min_credits,omitempty"`
	MaxCredits             *int   `json:"max_credits,omitempty"`
	IsMandatory            bool   `json:"is_mandatory"`
	Block                  *int   `json:"block,omitempty"`
	BlockRepr              string `json:"block_repr,omitempty"`
	AccessCondition        bool   `json:"access_condition"`
	Comment                string `json:"comment,omitempty"`
	CommentEnglish         string `json:"comment_english,omitempty"`
	OwnComment             string `json:"own_comment,omitempty"`
	QuadrimesterDerogation string `json:"quadrimester_derogation,omitempty"`
	LinkType               string `json:"link_type,omitempty"`
}

// DetachResult is the detached link with the warnings about dropped prerequisites.
type DetachResult struct {
	Link     *LinkView `json:"link"`
	Warnings []string  `json:"warnings,omitempty"`
}

type PrerequisiteResult struct {
	Code       string `json:"code"`
	Year       int    `json:"year"`
	Expression string `json:"expression"`
}

type LinksResult struct {
	Links []*LinkView `json:"links"`
}

// ContentResult is the rendered tree as stored in the content cache.
type ContentResult struct {
	Content []byte `json:"content"`
	Cached  bool   `json:"cached"`
}

type FillResult struct {
	Code   string      `json:"code"`
	Year   int         `json:"year"`
	Links  int         `json:"links"`
	Events []EventView `json:"events,omitempty"`
}

type EventView struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Year    int    `json:"year"`
	Message string `json:"message"`
}

type DeleteResult struct {
	Code string `json:"code"`
	Year int    `json:"year"`
}

func newProgramTreeView(t *tree.ProgramTree) *ProgramTreeView {
	return &ProgramTreeView{
		Code: t.Root.Code,
		Year: t.Root.Year,
		Root: newNodeView(t.Root, nil, t.RootPath()),
	}
}

func newNodeView(node *tree.Node, link *tree.Link, path tree.Path) *NodeView {
	view := &NodeView{
		NodeID:   node.NodeID,
		Code:     node.Code,
		Title:    node.Title,
		Year:     node.Year,
		NodeType: string(node.NodeType),
		Credits:  node.Credits,
		Path:     string(path),
	}
	if node.HasPrerequisite() {
		view.Prerequisite = node.GetPrerequisite().String()
	}
	if link != nil {
		view.Link = newLinkView(link)
	}
	for _, child := range node.Children {
		view.Children = append(view.Children, newNodeView(child.Child, child, path.Join(child.Child.NodeID)))
	}
	return view
}

func newLinkView(link *tree.Link) *LinkView {
	view := &LinkView{
		PK:                     link.PK,
		ParentCode:             link.Parent.Code,
		ParentYear:             link.Parent.Year,
		ChildCode:              link.Child.Code,
		ChildYear:              link.Child.Year,
		Order:                  link.Order,
		RelativeCredits:        link.RelativeCredits,
		MinCredits:             link.MinCredits,
		MaxCredits:             link.MaxCredits,
		IsMandatory:            link.IsMandatory,
		Block:                  link.Block,
		BlockRepr:              link.BlockRepr(),
		AccessCondition:        link.AccessCondition,
		Comment:                link.Comment,
		CommentEnglish:         link.CommentEnglish,
		OwnComment:             link.OwnComment,
		QuadrimesterDerogation: string(link.QuadrimesterDerogation),
		LinkType:               string(link.LinkType),
	}
	if link.RelativeCredits != nil {
		view.RelativeCreditsRepr = link.RelativeCreditsRepr()
	}
	return view
}

func newEventViews(report *tree.Report) []EventView {
	events := make([]EventView, 0, len(report.Events))
	for _, e := range report.Events {
		events = append(events, EventView{
			Type:    string(e.Type),
			Code:    e.Node.Code,
			Year:    e.Node.Year,
			Message: e.Message,
		})
	}
	return events
}
