package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LinkType distinguishes plain links from reference links.
type LinkType string

const (
	LinkTypeNormal    LinkType = ""
	LinkTypeReference LinkType = "REFERENCE"
)

// QuadrimesterDerogation overrides the quadrimester of a learning unit within a program.
type QuadrimesterDerogation string

const (
	DerogationNone   QuadrimesterDerogation = ""
	DerogationQ1     QuadrimesterDerogation = "Q1"
	DerogationQ2     QuadrimesterDerogation = "Q2"
	DerogationQ1and2 QuadrimesterDerogation = "Q1and2"
	DerogationQ1orQ2 QuadrimesterDerogation = "Q1orQ2"
	DerogationQ3     QuadrimesterDerogation = "Q3"
)

// Valid reports whether d is a known derogation.
func (d QuadrimesterDerogation) Valid() bool {
	switch d {
	case DerogationNone, DerogationQ1, DerogationQ2, DerogationQ1and2, DerogationQ1orQ2, DerogationQ3:
		return true
	}
	return false
}

// LinkAttributes are the editable attributes of a link.
type LinkAttributes struct {
	RelativeCredits        *int
	MinCredits             *int
	MaxCredits             *int
	IsMandatory            bool
	Block                  *int
	AccessCondition        bool
	Comment                string
	CommentEnglish         string
	OwnComment             string
	QuadrimesterDerogation QuadrimesterDerogation
	LinkType               LinkType
}

// Link is the attributed edge between a parent and a child node.
type Link struct {
	PK     int
	Parent *Node
	Child  *Node
	LinkAttributes
	Order int

	hasChanged bool
}

func (l *Link) String() string {
	return fmt.Sprintf("%s - %s", l.Parent, l.Child)
}

// Identity returns the business identity of the link.
func (l *Link) Identity() LinkIdentity {
	return LinkIdentity{
		ParentCode: l.Parent.Code,
		ChildCode:  l.Child.Code,
		ParentYear: l.Parent.Year,
		ChildYear:  l.Child.Year,
	}
}

// HasChanged reports whether the link must be written back.
func (l *Link) HasChanged() bool {
	return l.hasChanged
}

// OrderUp moves the link one position towards the first sibling.
func (l *Link) OrderUp() {
	l.Order--
	l.hasChanged = true
}

// OrderDown moves the link one position towards the last sibling.
func (l *Link) OrderDown() {
	l.Order++
	l.hasChanged = true
}

// SwapOrder exchanges the orders of two sibling links.
func (l *Link) SwapOrder(other *Link) {
	l.Order, other.Order = other.Order, l.Order
	l.hasChanged = true
	other.hasChanged = true
}

// Update replaces the editable attributes.
func (l *Link) Update(attrs LinkAttributes) {
	l.LinkAttributes = attrs
	l.hasChanged = true
}

func (l *Link) IsReference() bool {
	return l.LinkType == LinkTypeReference
}

func (l *Link) IsLinkWithLearningUnit() bool {
	return l.Child.IsLearningUnit()
}

func (l *Link) IsLinkWithGroup() bool {
	return l.Child.IsGroupOrMiniOrTraining()
}

// BlockDigits returns the blocks packed in Block, e.g. 123 gives [1 2 3].
func (l *Link) BlockDigits() []int {
	return blockDigits(l.Block)
}

// BlockRepr renders the blocks as "1 ; 2 ; 3".
func (l *Link) BlockRepr() string {
	digits := l.BlockDigits()
	parts := make([]string, 0, len(digits))
	for _, d := range digits {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, " ; ")
}

// BlockMaxValue returns the highest block of the link, 0 when none.
func (l *Link) BlockMaxValue() int {
	digits := l.BlockDigits()
	if len(digits) == 0 {
		return 0
	}
	return digits[len(digits)-1]
}

// RelativeCreditsRepr renders "<relative> / <child credits>", the relative part
// being empty when unset.
func (l *Link) RelativeCreditsRepr() string {
	relative := ""
	if l.RelativeCredits != nil {
		relative = strconv.Itoa(*l.RelativeCredits)
	}
	credits := 0
	if l.Child.Credits != nil {
		credits = int(math.Round(*l.Child.Credits))
	}
	return fmt.Sprintf("%s / %d", relative, credits)
}

func blockDigits(block *int) []int {
	if block == nil || *block <= 0 {
		return nil
	}
	s := strconv.Itoa(*block)
	digits := make([]int, 0, len(s))
	for _, r := range s {
		digits = append(digits, int(r-'0'))
	}
	return digits
}
