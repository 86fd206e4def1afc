package tree

import (
	"github.com/emrgen/programtree/internal/prerequisite"
)

// NodePrerequisite is the prerequisite of one learning unit in the context of a tree.
type NodePrerequisite struct {
	Node         NodeIdentity
	Prerequisite *prerequisite.Prerequisite

	hasChanged bool
}

// HasChanged reports whether the prerequisite must be written back.
func (p *NodePrerequisite) HasChanged() bool {
	return p.hasChanged
}

// Prerequisites is the set of prerequisites defined for the units of one tree.
// The same unit can carry different prerequisites in other trees.
type Prerequisites struct {
	ContextTree ProgramTreeIdentity
	items       []*NodePrerequisite
}

func NewPrerequisites(context ProgramTreeIdentity, items ...*NodePrerequisite) *Prerequisites {
	return &Prerequisites{ContextTree: context, items: items}
}

// Get returns the prerequisite of node, the null one when undefined.
func (p *Prerequisites) Get(node NodeIdentity) *prerequisite.Prerequisite {
	if item := p.find(node); item != nil {
		return item.Prerequisite
	}
	return prerequisite.Null()
}

// All returns the non null prerequisites.
func (p *Prerequisites) All() []*NodePrerequisite {
	items := make([]*NodePrerequisite, 0, len(p.items))
	for _, item := range p.items {
		if !item.Prerequisite.IsNull() {
			items = append(items, item)
		}
	}
	return items
}

// Changed returns the prerequisites modified since the load, null ones included.
func (p *Prerequisites) Changed() []*NodePrerequisite {
	var items []*NodePrerequisite
	for _, item := range p.items {
		if item.hasChanged {
			items = append(items, item)
		}
	}
	return items
}

// Set replaces the prerequisite of node.
func (p *Prerequisites) Set(node NodeIdentity, value *prerequisite.Prerequisite) {
	if value == nil {
		value = prerequisite.Null()
	}
	if item := p.find(node); item != nil {
		item.Prerequisite = value
		item.hasChanged = true
		return
	}
	p.items = append(p.items, &NodePrerequisite{Node: node, Prerequisite: value, hasChanged: true})
}

// Remove sets the prerequisite of node to null.
func (p *Prerequisites) Remove(node NodeIdentity) {
	if item := p.find(node); item != nil && !item.Prerequisite.IsNull() {
		item.Prerequisite = prerequisite.Null()
		item.hasChanged = true
	}
}

func (p *Prerequisites) clearChanges() {
	kept := p.items[:0]
	for _, item := range p.items {
		item.hasChanged = false
		if !item.Prerequisite.IsNull() {
			kept = append(kept, item)
		}
	}
	p.items = kept
}

func (p *Prerequisites) find(node NodeIdentity) *NodePrerequisite {
	for _, item := range p.items {
		if item.Node == node {
			return item
		}
	}
	return nil
}
