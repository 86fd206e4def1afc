package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emrgen/programtree/internal/prerequisite"
)

const (
	minBlock = 1
	maxBlock = 6
)

// Validator checks one business rule.
type Validator interface {
	Validate() error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func() error

func (f ValidatorFunc) Validate() error { return f() }

// ValidatorList runs every validator and gathers all the failures.
type ValidatorList []Validator

// Validate returns nil when every validator passes, a *MultipleBusinessErrors otherwise.
func (l ValidatorList) Validate() error {
	var errs []error
	for _, v := range l {
		err := v.Validate()
		if err == nil {
			continue
		}
		var multiple *MultipleBusinessErrors
		if errors.As(err, &multiple) {
			errs = append(errs, multiple.Errors...)
			continue
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return &MultipleBusinessErrors{Errors: errs}
}

func joinBusinessErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultipleBusinessErrors{Errors: errs}
	}
}

// ValidateBlock checks the packed block digits are strictly increasing within 1 to 6.
func ValidateBlock(block *int) error {
	if block == nil {
		return nil
	}
	if *block <= 0 {
		return NewBusinessError("Block %d is invalid: blocks are digits from %d to %d", *block, minBlock, maxBlock)
	}
	previous := 0
	for _, d := range blockDigits(block) {
		if d < minBlock || d > maxBlock || d <= previous {
			return NewBusinessError("Block %d is invalid: blocks must be increasing digits from %d to %d", *block, minBlock, maxBlock)
		}
		previous = d
	}
	return nil
}

func validateRelativeCredits(attrs LinkAttributes) error {
	if attrs.RelativeCredits != nil && *attrs.RelativeCredits < 0 {
		return NewBusinessError("Relative credits must be greater or equal to 0")
	}
	return nil
}

func validateCreditsRange(attrs LinkAttributes) error {
	if attrs.MinCredits != nil && attrs.MaxCredits != nil && *attrs.MinCredits > *attrs.MaxCredits {
		return NewBusinessError("Minimum credits (%d) cannot exceed maximum credits (%d)", *attrs.MinCredits, *attrs.MaxCredits)
	}
	return nil
}

func validateReferenceChild(child *Node, attrs LinkAttributes) error {
	if attrs.LinkType == LinkTypeReference && child.IsLearningUnit() {
		return NewBusinessError("You are not allowed to create a reference with a learning unit (%s)", child.Code)
	}
	return nil
}

func validateDerogation(attrs LinkAttributes) error {
	if !attrs.QuadrimesterDerogation.Valid() {
		return NewBusinessError("Unknown quadrimester derogation %q", attrs.QuadrimesterDerogation)
	}
	return nil
}

func linkAttributesValidators(child *Node, attrs LinkAttributes) ValidatorList {
	return ValidatorList{
		ValidatorFunc(func() error { return ValidateBlock(attrs.Block) }),
		ValidatorFunc(func() error { return validateRelativeCredits(attrs) }),
		ValidatorFunc(func() error { return validateCreditsRange(attrs) }),
		ValidatorFunc(func() error { return validateReferenceChild(child, attrs) }),
		ValidatorFunc(func() error { return validateDerogation(attrs) }),
	}
}

// pasteValidators returns the rules checked before attaching child under parent.
func (t *ProgramTree) pasteValidators(path Path, parent, child *Node, attrs LinkAttributes) ValidatorList {
	validators := ValidatorList{
		ValidatorFunc(func() error {
			if parent.IsLearningUnit() {
				return NewBusinessError("Cannot add any element to learning unit %s", parent.Code)
			}
			return nil
		}),
		ValidatorFunc(func() error {
			if child.IsLearningClass() {
				return NewBusinessError("Learning class %s cannot be pasted", child.Code)
			}
			return nil
		}),
		ValidatorFunc(func() error {
			ancestors, err := path.NodeIDs()
			if err != nil {
				return err
			}
			for _, id := range ancestors {
				if child.NodeID == id || child.ContainsID(id) {
					return NewBusinessError("The child %s cannot be attached to %s: it is one of its ancestors", child, parent)
				}
			}
			return nil
		}),
		ValidatorFunc(func() error {
			if parent.GetChildLink(child.NodeID) != nil {
				return NewBusinessError("%s is already a child of %s", child, parent)
			}
			return nil
		}),
		ValidatorFunc(func() error {
			if !child.IsLearningUnit() && child.Year != t.Year() {
				return NewBusinessError("The year of %s must be the same as the year of the program (%d)", child, t.Year())
			}
			return nil
		}),
		ValidatorFunc(func() error {
			if child.IsClosedBefore(t.Year()) {
				return NewBusinessError("%s is closed since %d and cannot be used in %d", child.Code, *child.EndYear, t.Year())
			}
			return nil
		}),
		ValidatorFunc(func() error {
			return validateAuthorizedRelationship(t.AuthorizedRelationships, parent, child, attrs.LinkType, nil)
		}),
	}
	return append(validators, linkAttributesValidators(child, attrs)...)
}

// validateAuthorizedRelationship checks the child types are allowed under parent
// and do not exceed their maximum count. A reference link brings the types of
// the referenced node's children instead of its own. The replaced link, when
// set, is left out of the current children.
func validateAuthorizedRelationship(relationships *AuthorizedRelationshipList, parent, child *Node, linkType LinkType, replaced *Link) error {
	if relationships == nil || parent.IsLearningUnit() || child.IsLearningClass() {
		return nil
	}

	added := []NodeType{child.NodeType}
	if linkType == LinkTypeReference {
		added = child.GetChildrenTypes(true)
	}

	counts := make(map[NodeType]int)
	for _, link := range parent.Children {
		if link == replaced {
			continue
		}
		if link.IsReference() {
			for _, nodeType := range link.Child.GetChildrenTypes(true) {
				counts[nodeType]++
			}
			continue
		}
		counts[link.Child.NodeType]++
	}
	addedCounts := make(map[NodeType]int)
	var order []NodeType
	for _, nodeType := range added {
		if addedCounts[nodeType] == 0 {
			order = append(order, nodeType)
		}
		addedCounts[nodeType]++
	}

	var errs []error
	for _, nodeType := range order {
		r, ok := relationships.Get(parent.NodeType, nodeType)
		if !ok {
			errs = append(errs, NewBusinessError("You cannot add %s of type %s to %s of type %s",
				child.Code, nodeType, parent.Code, parent.NodeType))
			continue
		}
		if r.MaxCount > 0 && counts[nodeType]+addedCounts[nodeType] > r.MaxCount {
			errs = append(errs, NewBusinessError("The parent %s cannot have more than %d children of type %s",
				parent.Code, r.MaxCount, nodeType))
		}
	}
	return joinBusinessErrors(errs)
}

// updateLinkValidators returns the rules checked before replacing the
// attributes of link. Turning a link into a reference brings the children of
// its child under the parent.
func (t *ProgramTree) updateLinkValidators(link *Link, attrs LinkAttributes) ValidatorList {
	validators := linkAttributesValidators(link.Child, attrs)
	if attrs.LinkType == LinkTypeReference && !link.IsReference() {
		validators = append(validators, ValidatorFunc(func() error {
			return validateAuthorizedRelationship(t.AuthorizedRelationships, link.Parent, link.Child, attrs.LinkType, link)
		}))
	}
	return validators
}

// detachValidators returns the fatal rules checked before removing link.
func (t *ProgramTree) detachValidators(link *Link) ValidatorList {
	return ValidatorList{
		ValidatorFunc(func() error { return t.validateNotPrerequisite(link) }),
		ValidatorFunc(func() error { return t.validateMinimumChildren(link) }),
	}
}

// detachedLearningUnits returns the learning units reachable only through link.
func (t *ProgramTree) detachedLearningUnits(link *Link) ([]*Node, map[int]*Node) {
	remaining := t.nodesWithout(link)
	units := link.Child.GetAllChildrenAsLearningUnitNodes()
	if link.Child.IsLearningUnit() {
		units = append([]*Node{link.Child}, units...)
	}

	detached := make([]*Node, 0, len(units))
	for _, unit := range units {
		if _, ok := remaining[unit.NodeID]; !ok {
			detached = append(detached, unit)
		}
	}
	return detached, remaining
}

// validateNotPrerequisite fails when a detached learning unit is still required
// by a unit remaining in the tree.
func (t *ProgramTree) validateNotPrerequisite(link *Link) error {
	detached, remaining := t.detachedLearningUnits(link)

	var codes []string
	for _, unit := range detached {
		for _, dependent := range unit.GetIsPrerequisiteOf() {
			if _, ok := remaining[dependent.NodeID]; ok {
				codes = append(codes, unit.Code)
				break
			}
		}
	}
	if len(codes) == 0 {
		return nil
	}

	if link.Child.IsLearningUnit() {
		return &CannotDetachLearningWhoIsPrerequisiteError{Root: t.Identity(), Node: link.Child.Identity()}
	}
	sort.Strings(codes)
	return &CannotDetachChildrenWhoArePrerequisiteError{Root: t.Identity(), Node: link.Child.Identity(), Codes: codes}
}

func (t *ProgramTree) validateMinimumChildren(link *Link) error {
	if t.AuthorizedRelationships == nil {
		return nil
	}
	parent, child := link.Parent, link.Child
	r, ok := t.AuthorizedRelationships.Get(parent.NodeType, child.NodeType)
	if !ok || r.MinCount == 0 {
		return nil
	}

	count := 0
	for _, nodeType := range parent.GetChildrenTypes(false) {
		if nodeType == child.NodeType {
			count++
		}
	}
	if count-1 < r.MinCount {
		return NewBusinessError("The parent %s must have at least %d children of type %s",
			parent.Code, r.MinCount, child.NodeType)
	}
	return nil
}

// detachWarnings lists the prerequisites lost by removing link.
func (t *ProgramTree) detachWarnings(link *Link) *BusinessWarnings {
	detached, _ := t.detachedLearningUnits(link)

	var codes []string
	for _, unit := range detached {
		if unit.HasPrerequisite() {
			codes = append(codes, unit.Code)
		}
	}
	if len(codes) == 0 {
		return nil
	}

	sort.Strings(codes)
	warnings := &BusinessWarnings{}
	warnings.Add("The prerequisites for the following learning units contained in %s will be deleted: %s",
		link.Child.Code, strings.Join(codes, ", "))
	return warnings
}

// prerequisiteValidators returns the rules checked before setting p on unit.
func (t *ProgramTree) prerequisiteValidators(unit *Node, p *prerequisite.Prerequisite) ValidatorList {
	return ValidatorList{
		ValidatorFunc(func() error {
			if p.References(unit.Code) {
				return NewBusinessError("A learning unit cannot be prerequisite to itself: %s", unit.Code)
			}
			return nil
		}),
		ValidatorFunc(func() error {
			present := make(map[string]struct{})
			for _, n := range t.GetAllLearningUnitNodes() {
				present[n.Code] = struct{}{}
			}
			var errs []error
			for _, code := range p.Codes() {
				if _, ok := present[code]; !ok {
					errs = append(errs, NewBusinessError("No match for learning unit %s in the program %s", code, t.Identity()))
				}
			}
			return joinBusinessErrors(errs)
		}),
		ValidatorFunc(func() error {
			seen := make(map[string]struct{})
			var errs []error
			for _, code := range p.Codes() {
				if _, ok := seen[code]; ok {
					errs = append(errs, NewBusinessError("Learning unit %s is duplicated in the prerequisite", code))
				}
				seen[code] = struct{}{}
			}
			return joinBusinessErrors(errs)
		}),
	}
}

func syntaxError(expression string, err error) error {
	return &BusinessError{
		Message: fmt.Sprintf("Prerequisite syntax is incorrect: %q", expression),
		Err:     err,
	}
}
