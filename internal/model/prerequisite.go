package model

// Prerequisite is the expression of a learning unit in the context of one program tree.
type Prerequisite struct {
	ID                    int                 `gorm:"primaryKey;autoIncrement"`
	RootElementID         int                 `gorm:"not null;uniqueIndex:idx_prerequisites_root_unit;index"`
	LearningUnitElementID int                 `gorm:"not null;uniqueIndex:idx_prerequisites_root_unit"`
	MainOperator          string              `gorm:"not null"`
	Items                 []*PrerequisiteItem `gorm:"constraint:OnDelete:CASCADE"`
}

func (Prerequisite) TableName() string {
	return "prerequisites"
}

// PrerequisiteItem is one learning unit code of an expression. Items sharing a
// group number form a group; position orders the items within a group.
type PrerequisiteItem struct {
	ID             int    `gorm:"primaryKey;autoIncrement"`
	PrerequisiteID int    `gorm:"not null;index"`
	Code           string `gorm:"not null"`
	Year           int    `gorm:"not null"`
	GroupNumber    int    `gorm:"not null"`
	Position       int    `gorm:"not null"`
}

func (PrerequisiteItem) TableName() string {
	return "prerequisite_items"
}
