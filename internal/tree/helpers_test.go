package tree

import (
	"testing"
)

const testYear = 2021

func newGroup(id int, code string, nodeType NodeType) *Node {
	return NewNodeOfType(nodeType, Node{NodeID: id, Code: code, Title: code, Year: testYear})
}

func newUnit(id int, code string) *Node {
	credits := 5.0
	return NewNode(KindLearningUnit, Node{NodeID: id, Code: code, Title: code, Year: testYear, Credits: &credits})
}

func attach(parent, child *Node, pk int) *Link {
	link := parent.AddChild(child, LinkAttributes{})
	link.PK = pk
	return link
}

func testRelationships() *AuthorizedRelationshipList {
	return NewAuthorizedRelationshipList(
		AuthorizedRelationship{ParentType: TypeBachelor, ChildType: TypeCommonCore, MinCount: 1, MaxCount: 1},
		AuthorizedRelationship{ParentType: TypeBachelor, ChildType: TypeOptionListChoice, MaxCount: 1},
		AuthorizedRelationship{ParentType: TypeCommonCore, ChildType: TypeSubGroup},
		AuthorizedRelationship{ParentType: TypeCommonCore, ChildType: TypeLearningUnit},
		AuthorizedRelationship{ParentType: TypeSubGroup, ChildType: TypeSubGroup},
		AuthorizedRelationship{ParentType: TypeSubGroup, ChildType: TypeLearningUnit},
		AuthorizedRelationship{ParentType: TypeOptionListChoice, ChildType: TypeOption},
	)
}

// fixture is the tree
//
//	1 LDROI100B (bachelor)
//	└── 5 LDROI100T (common core)
//	    ├── 6 LDROI101R (sub group)
//	    │   ├── 11 LDROI1002
//	    │   └── 12 LDROI1003
//	    └── 10 LDROI1001
type fixture struct {
	tree     *ProgramTree
	root     *Node
	core     *Node
	subGroup *Node
	u1001    *Node
	u1002    *Node
	u1003    *Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		root:     newGroup(1, "LDROI100B", TypeBachelor),
		core:     newGroup(5, "LDROI100T", TypeCommonCore),
		subGroup: newGroup(6, "LDROI101R", TypeSubGroup),
		u1001:    newUnit(10, "LDROI1001"),
		u1002:    newUnit(11, "LDROI1002"),
		u1003:    newUnit(12, "LDROI1003"),
	}
	attach(f.root, f.core, 100)
	attach(f.core, f.subGroup, 101)
	attach(f.core, f.u1001, 102)
	attach(f.subGroup, f.u1002, 103)
	attach(f.subGroup, f.u1003, 104)

	f.tree = New(f.root, testRelationships(), nil)
	return f
}

func linkIdentity(parent, child *Node) LinkIdentity {
	return LinkIdentity{ParentCode: parent.Code, ParentYear: parent.Year, ChildCode: child.Code, ChildYear: child.Year}
}

func intPtr(v int) *int {
	return &v
}
