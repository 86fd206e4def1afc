package repository

import (
	"sort"

	"github.com/emrgen/programtree/internal/model"
	"github.com/emrgen/programtree/internal/prerequisite"
	"github.com/emrgen/programtree/internal/tree"
)

// nodeFromElement converts an element and its year row into a node without children.
func nodeFromElement(e *model.Element) *tree.Node {
	switch {
	case e.GroupYear != nil:
		g := e.GroupYear
		return tree.NewNodeOfType(tree.NodeType(g.NodeType), tree.Node{
			NodeID:  e.ID,
			Code:    g.Code,
			Title:   g.Title,
			Year:    g.Year,
			EndYear: g.EndYear,
			Credits: g.Credits,
			Group: &tree.GroupData{
				ConstraintType: tree.ConstraintType(g.ConstraintType),
				MinConstraint:  g.MinConstraint,
				MaxConstraint:  g.MaxConstraint,
				RemarkFr:       g.RemarkFr,
				RemarkEn:       g.RemarkEn,
			},
		})
	case e.LearningUnitYear != nil:
		u := e.LearningUnitYear
		return tree.NewNode(tree.KindLearningUnit, tree.Node{
			NodeID:       e.ID,
			Code:         u.Code,
			Title:        u.Title,
			Year:         u.Year,
			EndYear:      u.EndYear,
			Credits:      u.Credits,
			ProposalType: u.ProposalType,
			LearningUnit: &tree.LearningUnitData{
				Status:      u.Status,
				Periodicity: u.Periodicity,
			},
		})
	case e.LearningClassYear != nil:
		c := e.LearningClassYear
		return tree.NewNode(tree.KindLearningClass, tree.Node{
			NodeID: e.ID,
			Code:   c.Code,
			Title:  c.Title,
			Year:   c.Year,
		})
	}
	return nil
}

func groupYearFromNode(n *tree.Node) *model.GroupYear {
	g := &model.GroupYear{
		Code:     n.Code,
		Year:     n.Year,
		NodeType: string(n.NodeType),
		Title:    n.Title,
		Credits:  n.Credits,
		EndYear:  n.EndYear,
	}
	if n.Group != nil {
		g.ConstraintType = string(n.Group.ConstraintType)
		g.MinConstraint = n.Group.MinConstraint
		g.MaxConstraint = n.Group.MaxConstraint
		g.RemarkFr = n.Group.RemarkFr
		g.RemarkEn = n.Group.RemarkEn
	}
	return g
}

func learningUnitYearFromNode(n *tree.Node) *model.LearningUnitYear {
	u := &model.LearningUnitYear{
		Code:         n.Code,
		Year:         n.Year,
		Title:        n.Title,
		Credits:      n.Credits,
		EndYear:      n.EndYear,
		ProposalType: n.ProposalType,
	}
	if n.LearningUnit != nil {
		u.Status = n.LearningUnit.Status
		u.Periodicity = n.LearningUnit.Periodicity
	}
	return u
}

func linkAttributes(l *model.GroupElementYear) tree.LinkAttributes {
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

func linkModel(l *tree.Link) *model.GroupElementYear {
	return &model.GroupElementYear{
		ID:                     l.PK,
		ParentElementID:        l.Parent.NodeID,
		ChildElementID:         l.Child.NodeID,
		OrderNum:               l.Order,
		RelativeCredits:        l.RelativeCredits,
		MinCredits:             l.MinCredits,
		MaxCredits:             l.MaxCredits,
		IsMandatory:            l.IsMandatory,
		Block:                  l.Block,
		AccessCondition:        l.AccessCondition,
		Comment:                l.Comment,
		CommentEnglish:         l.CommentEnglish,
		OwnComment:             l.OwnComment,
		QuadrimesterDerogation: string(l.QuadrimesterDerogation),
		LinkType:               string(l.LinkType),
	}
}

// prerequisiteFromModel rebuilds the expression. Items are grouped by group
// number and joined by the operator opposite to the main one.
func prerequisiteFromModel(p *model.Prerequisite) *prerequisite.Prerequisite {
	main := prerequisite.Operator(p.MainOperator)
	if !main.Valid() {
		main = prerequisite.AND
	}

	items := make([]*model.PrerequisiteItem, len(p.Items))
	copy(items, p.Items)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].GroupNumber != items[j].GroupNumber {
			return items[i].GroupNumber < items[j].GroupNumber
		}
		return items[i].Position < items[j].Position
	})

	result := prerequisite.New(main)
	var group *prerequisite.ItemGroup
	number := -1
	for _, item := range items {
		if group == nil || item.GroupNumber != number {
			if group != nil {
				result.AddGroup(*group)
			}
			g := prerequisite.NewItemGroup(main.Opposite())
			group = &g
			number = item.GroupNumber
		}
		group.AddItem(item.Code, item.Year)
	}
	if group != nil {
		result.AddGroup(*group)
	}
	return result
}

func prerequisiteModel(rootID, unitID int, p *prerequisite.Prerequisite) *model.Prerequisite {
	m := &model.Prerequisite{
		RootElementID:         rootID,
		LearningUnitElementID: unitID,
		MainOperator:          string(p.MainOperator),
	}
	for number, group := range p.Groups {
		for position, item := range group.Items {
			m.Items = append(m.Items, &model.PrerequisiteItem{
				Code:        item.Code,
				Year:        item.Year,
				GroupNumber: number + 1,
				Position:    position + 1,
			})
		}
	}
	return m
}

func relationshipsFromModel(rows []*model.AuthorizedRelationship) *tree.AuthorizedRelationshipList {
	relationships := make([]tree.AuthorizedRelationship, 0, len(rows))
	for _, row := range rows {
		relationships = append(relationships, tree.AuthorizedRelationship{
			ParentType: tree.NodeType(row.ParentType),
			ChildType:  tree.NodeType(row.ChildType),
			MinCount:   row.MinCount,
			MaxCount:   row.MaxCount,
		})
	}
	return tree.NewAuthorizedRelationshipList(relationships...)
}

func relationshipModels(list *tree.AuthorizedRelationshipList) []*model.AuthorizedRelationship {
	rows := make([]*model.AuthorizedRelationship, 0, len(list.All()))
	for _, r := range list.All() {
		rows = append(rows, &model.AuthorizedRelationship{
			ParentType: string(r.ParentType),
			ChildType:  string(r.ChildType),
			MinCount:   r.MinCount,
			MaxCount:   r.MaxCount,
		})
	}
	return rows
}
