package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// PathSeparator joins node ids in a Path.
const PathSeparator = "|"

// Path locates a node in a tree instance: the ids of the nodes walked from the root.
// The same node can appear under several parents, so only the path is unique.
type Path string

// BuildPath returns the path made of the given nodes, root first.
func BuildPath(nodes ...*Node) Path {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, strconv.Itoa(n.NodeID))
	}
	return Path(strings.Join(ids, PathSeparator))
}

// Join appends a node id to the path.
func (p Path) Join(nodeID int) Path {
	if p == "" {
		return Path(strconv.Itoa(nodeID))
	}
	return Path(string(p) + PathSeparator + strconv.Itoa(nodeID))
}

// Parent returns the path without its last element.
func (p Path) Parent() Path {
	idx := strings.LastIndex(string(p), PathSeparator)
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// NodeIDs returns the node ids composing the path.
func (p Path) NodeIDs() ([]int, error) {
	if p == "" {
		return nil, nil
	}
	parts := strings.Split(string(p), PathSeparator)
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed path %q", ErrNodeNotFound, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Last returns the id of the node the path points to.
func (p Path) Last() (int, error) {
	ids, err := p.NodeIDs()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: empty path", ErrNodeNotFound)
	}
	return ids[len(ids)-1], nil
}

// Depth returns the number of links walked from the root.
func (p Path) Depth() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), PathSeparator)
}

// NodeIdentity is the business identity of a node.
type NodeIdentity struct {
	Code string
	Year int
}

func (i NodeIdentity) String() string {
	return fmt.Sprintf("%s (%d)", i.Code, i.Year)
}

// ProgramTreeIdentity is the identity of the root node of a tree.
type ProgramTreeIdentity struct {
	Code string
	Year int
}

func (i ProgramTreeIdentity) String() string {
	return fmt.Sprintf("%s (%d)", i.Code, i.Year)
}

// NodeIdentity returns the identity of the root node.
func (i ProgramTreeIdentity) NodeIdentity() NodeIdentity {
	return NodeIdentity{Code: i.Code, Year: i.Year}
}

// LinkIdentity identifies a link by its parent and child.
type LinkIdentity struct {
	ParentCode string
	ChildCode  string
	ParentYear int
	ChildYear  int
}

func (i LinkIdentity) String() string {
	return fmt.Sprintf("%s (%d) - %s (%d)", i.ParentCode, i.ParentYear, i.ChildCode, i.ChildYear)
}
