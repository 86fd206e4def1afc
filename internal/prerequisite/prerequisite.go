package prerequisite

import (
	"strings"
)

// Operator combines prerequisite items or groups of items.
type Operator string

const (
	AND Operator = "AND"
	OR  Operator = "OR"
)

// Label returns the token used in textual expressions.
func (o Operator) Label() string {
	if o == OR {
		return "OU"
	}
	return "ET"
}

// Opposite returns the operator used one nesting level below o.
func (o Operator) Opposite() Operator {
	if o == OR {
		return AND
	}
	return OR
}

// Valid reports whether o is AND or OR.
func (o Operator) Valid() bool {
	return o == AND || o == OR
}

// Item references a learning unit by code and academic year.
type Item struct {
	Code string
	Year int
}

func (i Item) String() string {
	return i.Code
}

// ItemGroup is a set of items joined by the same operator.
type ItemGroup struct {
	Operator Operator
	Items    []Item
}

// NewItemGroup creates a group of items joined by op.
func NewItemGroup(op Operator, items ...Item) ItemGroup {
	return ItemGroup{Operator: op, Items: items}
}

// AddItem appends a learning unit reference to the group.
func (g *ItemGroup) AddItem(code string, year int) {
	g.Items = append(g.Items, Item{Code: code, Year: year})
}

func (g ItemGroup) String() string {
	codes := make([]string, 0, len(g.Items))
	for _, item := range g.Items {
		codes = append(codes, item.String())
	}
	return strings.Join(codes, " "+g.Operator.Label()+" ")
}

// Prerequisite is a boolean expression over learning unit codes with one level of nesting.
// The zero value (no groups) is the null prerequisite.
type Prerequisite struct {
	MainOperator Operator
	Groups       []ItemGroup
}

// New creates a prerequisite combining groups with the main operator.
func New(main Operator, groups ...ItemGroup) *Prerequisite {
	return &Prerequisite{MainOperator: main, Groups: groups}
}

// Null returns the prerequisite meaning "no prerequisite".
func Null() *Prerequisite {
	return &Prerequisite{MainOperator: AND}
}

// IsNull reports whether p carries no item at all.
func (p *Prerequisite) IsNull() bool {
	if p == nil {
		return true
	}
	for _, group := range p.Groups {
		if len(group.Items) > 0 {
			return false
		}
	}
	return true
}

// AddGroup appends a group of items.
func (p *Prerequisite) AddGroup(group ItemGroup) {
	p.Groups = append(p.Groups, group)
}

// Items returns every item of the expression in textual order.
func (p *Prerequisite) Items() []Item {
	if p == nil {
		return nil
	}
	var items []Item
	for _, group := range p.Groups {
		items = append(items, group.Items...)
	}
	return items
}

// Codes returns the codes of every item of the expression in textual order.
func (p *Prerequisite) Codes() []string {
	items := p.Items()
	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Code)
	}
	return codes
}

// References reports whether code appears in the expression.
func (p *Prerequisite) References(code string) bool {
	for _, item := range p.Items() {
		if item.Code == code {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p with every item moved to year.
func (p *Prerequisite) Clone(year int) *Prerequisite {
	if p == nil {
		return Null()
	}
	clone := &Prerequisite{MainOperator: p.MainOperator}
	for _, group := range p.Groups {
		g := ItemGroup{Operator: group.Operator}
		for _, item := range group.Items {
			g.AddItem(item.Code, year)
		}
		clone.AddGroup(g)
	}
	return clone
}

// String renders the expression. A group is parenthesized only when it holds
// more than one item and there is more than one group.
func (p *Prerequisite) String() string {
	if p.IsNull() {
		return ""
	}

	parts := make([]string, 0, len(p.Groups))
	for _, group := range p.Groups {
		if len(group.Items) > 1 && len(p.Groups) > 1 {
			parts = append(parts, "("+group.String()+")")
		} else {
			parts = append(parts, group.String())
		}
	}

	return strings.Join(parts, " "+p.MainOperator.Label()+" ")
}
