package model

import "time"

// GroupElementYear is an adjacency row: the link between a parent element and a child element.
type GroupElementYear struct {
	ID                     int `gorm:"primaryKey;autoIncrement"`
	ParentElementID        int `gorm:"not null;uniqueIndex:idx_group_element_years_parent_child;index"`
	ChildElementID         int `gorm:"not null;uniqueIndex:idx_group_element_years_parent_child;index"`
	OrderNum               int `gorm:"column:order_num;not null;default:0"`
	RelativeCredits        *int
	MinCredits             *int
	MaxCredits             *int
	IsMandatory            bool `gorm:"not null"`
	Block                  *int
	AccessCondition        bool `gorm:"not null"`
	Comment                string
	CommentEnglish         string
	OwnComment             string
	QuadrimesterDerogation string
	LinkType               string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (GroupElementYear) TableName() string {
	return "group_element_years"
}

// AdjacencyRow is one row of the recursive adjacency query. Path joins the
// element ids from the starting node down to the child.
type AdjacencyRow struct {
	ID              int
	ParentElementID int
	ChildElementID  int
	OrderNum        int
	Path            string
	Level           int
	StartingNodeID  int
}
