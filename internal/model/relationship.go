package model

// AuthorizedRelationship allows children of ChildType under parents of ParentType.
type AuthorizedRelationship struct {
	ID         int    `gorm:"primaryKey;autoIncrement"`
	ParentType string `gorm:"not null;uniqueIndex:idx_authorized_relationships_parent_child"`
	ChildType  string `gorm:"not null;uniqueIndex:idx_authorized_relationships_parent_child"`
	MinCount   int    `gorm:"not null;default:0"`
	MaxCount   int    `gorm:"not null;default:0"`
}

func (AuthorizedRelationship) TableName() string {
	return "authorized_relationships"
}
