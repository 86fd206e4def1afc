package tree

import (
	"context"
	"fmt"
	"strings"
)

// ReportEventType classifies what happened to a node while copying a tree.
type ReportEventType string

const (
	EventCopyLearningUnitNotExistForYear                ReportEventType = "COPY_LEARNING_UNIT_NOT_EXIST_FOR_YEAR"
	EventNotCopyTrainingMiniTrainingNotExistForYear     ReportEventType = "NOT_COPY_TRAINING_MINI_TRAINING_NOT_EXIST_FOR_YEAR"
	EventNodeAlreadyCopied                              ReportEventType = "NODE_ALREADY_COPIED"
	EventCopyReferenceEmpty                             ReportEventType = "COPY_REFERENCE_EMPTY"
	EventCannotCopyPrerequisiteAsLearningUnitNotPresent ReportEventType = "CANNOT_COPY_PREREQUISITE_AS_LEARNING_UNIT_NOT_PRESENT"
)

// ReportEvent is one remark produced by FillFromLastYear.
type ReportEvent struct {
	Type    ReportEventType
	Node    NodeIdentity
	Message string
}

// Report gathers the remarks produced while copying a tree.
type Report struct {
	Events []ReportEvent
}

func (r *Report) add(eventType ReportEventType, node *Node, format string, args ...any) {
	r.Events = append(r.Events, ReportEvent{
		Type:    eventType,
		Node:    node.Identity(),
		Message: fmt.Sprintf(format, args...),
	})
}

// OfType returns the events of the given type.
func (r *Report) OfType(eventType ReportEventType) []ReportEvent {
	var events []ReportEvent
	for _, e := range r.Events {
		if e.Type == eventType {
			events = append(events, e)
		}
	}
	return events
}

// NodeResolver finds or creates the nodes of the target year while a tree is copied.
type NodeResolver interface {
	// NextYearNode returns the node with the same code one year later, nil when it does not exist.
	NextYearNode(ctx context.Context, node *Node) (*Node, error)
	// CreateNextYearNode creates the group of the next year for node.
	CreateNextYearNode(ctx context.Context, node *Node) (*Node, error)
	// HasContent reports whether node already has children in storage.
	HasContent(ctx context.Context, node *Node) (bool, error)
}

// FillFromLastYear copies the content of from into the empty tree to, one year later.
// Learning units missing in the new year are kept in their old version, closed
// trainings and mini trainings are left out. The copy is recorded as created links of to.
func FillFromLastYear(ctx context.Context, from, to *ProgramTree, resolver NodeResolver) (*Report, error) {
	if to.Year() != from.Year()+1 {
		return nil, NewBusinessError("Cannot fill %s from %s: years must follow each other", to.Identity(), from.Identity())
	}
	if len(to.Root.Children) > 0 {
		return nil, NewBusinessError("Cannot fill %s: the program already has content", to.Identity())
	}

	c := &copier{
		resolver: resolver,
		to:       to,
		report:   &Report{},
		copied:   map[int]*Node{from.Root.NodeID: to.Root},
	}
	if err := c.fill(ctx, from.Root, to.Root); err != nil {
		return nil, err
	}
	to.invalidate()
	c.copyPrerequisites(from)
	to.refreshPrerequisites()

	return c.report, nil
}

type copier struct {
	resolver NodeResolver
	to       *ProgramTree
	report   *Report
	copied   map[int]*Node
}

func (c *copier) fill(ctx context.Context, src, dst *Node) error {
	year := c.to.Year()
	for _, link := range src.Children {
		child := link.Child

		if next, ok := c.copied[child.NodeID]; ok {
			c.attach(dst, next, link)
			continue
		}

		var next *Node
		var err error
		switch {
		case child.IsLearningClass():
			continue

		case child.IsLearningUnit():
			if next, err = c.resolver.NextYearNode(ctx, child); err != nil {
				return err
			}
			if next == nil {
				next = child
				c.report.add(EventCopyLearningUnitNotExistForYear, child,
					"Learning unit %s does not exist in %d: the %d version is used", child.Code, year, child.Year)
			}

		case child.IsTraining() || child.IsMiniTraining():
			if next, err = c.resolver.NextYearNode(ctx, child); err != nil {
				return err
			}
			if next == nil || next.IsClosedBefore(year) {
				c.report.add(EventNotCopyTrainingMiniTrainingNotExistForYear, child,
					"%s is not copied: it does not exist in %d", child.Code, year)
				continue
			}

		default:
			if next, err = c.copyGroup(ctx, child, link); err != nil {
				return err
			}
		}

		c.copied[child.NodeID] = next
		c.attach(dst, next, link)
	}
	return nil
}

func (c *copier) copyGroup(ctx context.Context, group *Node, link *Link) (*Node, error) {
	year := c.to.Year()
	next, err := c.resolver.NextYearNode(ctx, group)
	if err != nil {
		return nil, err
	}

	if next == nil {
		if next, err = c.resolver.CreateNextYearNode(ctx, group); err != nil {
			return nil, err
		}
	} else {
		filled, err := c.resolver.HasContent(ctx, next)
		if err != nil {
			return nil, err
		}
		if filled {
			c.report.add(EventNodeAlreadyCopied, next, "%s already has content in %d: it is not copied again", next.Code, year)
			return next, nil
		}
	}

	if link.IsReference() && len(group.Children) == 0 {
		c.report.add(EventCopyReferenceEmpty, group, "The referenced group %s is empty", group.Code)
	}
	if err := c.fill(ctx, group, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (c *copier) attach(parent, child *Node, from *Link) {
	if parent.GetChildLink(child.NodeID) != nil {
		return
	}
	link := parent.AddChild(child, from.LinkAttributes)
	c.to.createdLinks = append(c.to.createdLinks, link)
}

// copyPrerequisites copies a prerequisite only when every unit it references is in the new tree.
func (c *copier) copyPrerequisites(from *ProgramTree) {
	units := make(map[string]*Node)
	for _, unit := range c.to.GetAllLearningUnitNodes() {
		units[unit.Code] = unit
	}

	for _, item := range from.Prerequisites.All() {
		unit, ok := units[item.Node.Code]
		if !ok {
			continue
		}

		var missing []string
		for _, code := range item.Prerequisite.Codes() {
			if _, ok := units[code]; !ok {
				missing = append(missing, code)
			}
		}
		if len(missing) > 0 {
			c.report.add(EventCannotCopyPrerequisiteAsLearningUnitNotPresent, unit,
				"The prerequisite of %s is not copied: %s not present in %d", unit.Code, strings.Join(missing, ", "), c.to.Year())
			continue
		}

		c.to.Prerequisites.Set(unit.Identity(), item.Prerequisite.Clone(unit.Year))
	}
}
