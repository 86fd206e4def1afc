package tree

// AuthorizedRelationship allows children of ChildType under parents of ParentType.
// A zero MaxCount means no upper bound.
type AuthorizedRelationship struct {
	ParentType NodeType
	ChildType  NodeType
	MinCount   int
	MaxCount   int
}

// AuthorizedRelationshipList is the policy table of parent/child types.
type AuthorizedRelationshipList struct {
	relationships []AuthorizedRelationship
}

func NewAuthorizedRelationshipList(relationships ...AuthorizedRelationship) *AuthorizedRelationshipList {
	return &AuthorizedRelationshipList{relationships: relationships}
}

// All returns the relationships of the list.
func (l *AuthorizedRelationshipList) All() []AuthorizedRelationship {
	return l.relationships
}

// Get returns the relationship between parentType and childType.
func (l *AuthorizedRelationshipList) Get(parentType, childType NodeType) (AuthorizedRelationship, bool) {
	for _, r := range l.relationships {
		if r.ParentType == parentType && r.ChildType == childType {
			return r, true
		}
	}
	return AuthorizedRelationship{}, false
}

func (l *AuthorizedRelationshipList) IsAuthorized(parentType, childType NodeType) bool {
	_, ok := l.Get(parentType, childType)
	return ok
}

// IsMandatoryChildType reports whether childType must be present under some parent type.
func (l *AuthorizedRelationshipList) IsMandatoryChildType(parentType, childType NodeType) bool {
	r, ok := l.Get(parentType, childType)
	return ok && r.MinCount > 0
}

// GetAuthorizedChildrenTypes returns the child types allowed under parentType.
func (l *AuthorizedRelationshipList) GetAuthorizedChildrenTypes(parentType NodeType) []NodeType {
	var types []NodeType
	for _, r := range l.relationships {
		if r.ParentType == parentType {
			types = append(types, r.ChildType)
		}
	}
	return types
}

// GetOrderedMandatoryChildrenTypes returns the child types having a minimum count under parentType.
func (l *AuthorizedRelationshipList) GetOrderedMandatoryChildrenTypes(parentType NodeType) []NodeType {
	var types []NodeType
	for _, r := range l.relationships {
		if r.ParentType == parentType && r.MinCount > 0 {
			types = append(types, r.ChildType)
		}
	}
	return types
}
