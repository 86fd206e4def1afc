package model

import "time"

// Element is the storage identity of a tree node. Exactly one of the year
// references is set; its id is the node id used in tree paths.
type Element struct {
	ID                  int  `gorm:"primaryKey;autoIncrement"`
	GroupYearID         *int `gorm:"uniqueIndex"`
	GroupYear           *GroupYear
	LearningUnitYearID  *int `gorm:"uniqueIndex"`
	LearningUnitYear    *LearningUnitYear
	LearningClassYearID *int `gorm:"uniqueIndex"`
	LearningClassYear   *LearningClassYear
	CreatedAt           time.Time
}

func (Element) TableName() string {
	return "elements"
}

// Code returns the code of the referenced year row.
func (e *Element) Code() string {
	switch {
	case e.GroupYear != nil:
		return e.GroupYear.Code
	case e.LearningUnitYear != nil:
		return e.LearningUnitYear.Code
	case e.LearningClassYear != nil:
		return e.LearningClassYear.Code
	}
	return ""
}

// GroupYear is a training, mini training or group for one academic year.
type GroupYear struct {
	ID             int    `gorm:"primaryKey;autoIncrement"`
	Code           string `gorm:"not null;uniqueIndex:idx_group_years_code_year"`
	Year           int    `gorm:"not null;uniqueIndex:idx_group_years_code_year;index"`
	NodeType       string `gorm:"not null"`
	Title          string `gorm:"not null;default:''"`
	Credits        *float64
	EndYear        *int
	ConstraintType string
	MinConstraint  *int
	MaxConstraint  *int
	RemarkFr       string
	RemarkEn       string
}

func (GroupYear) TableName() string {
	return "group_years"
}

// LearningUnitYear is a learning unit for one academic year.
type LearningUnitYear struct {
	ID           int    `gorm:"primaryKey;autoIncrement"`
	Code         string `gorm:"not null;uniqueIndex:idx_learning_unit_years_code_year"`
	Year         int    `gorm:"not null;uniqueIndex:idx_learning_unit_years_code_year;index"`
	Title        string `gorm:"not null;default:''"`
	Credits      *float64
	EndYear      *int
	Status       bool `gorm:"not null"`
	Periodicity  string
	ProposalType string
}

func (LearningUnitYear) TableName() string {
	return "learning_unit_years"
}

// LearningClassYear is a class of a learning unit for one academic year.
type LearningClassYear struct {
	ID                 int    `gorm:"primaryKey;autoIncrement"`
	Code               string `gorm:"not null"`
	Year               int    `gorm:"not null"`
	Title              string
	LearningUnitYearID int `gorm:"not null;index"`
}

func (LearningClassYear) TableName() string {
	return "learning_class_years"
}
