package prerequisite

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidSyntax is returned when an expression does not follow the prerequisite grammar.
	ErrInvalidSyntax = errors.New("invalid prerequisite syntax")
)

// AcronymPattern matches a learning unit acronym, partims included.
const AcronymPattern = `[BLMWX][A-Z]{2,4}\d{4}[A-Z0-9]?`

func elementPattern(secondary Operator) string {
	return fmt.Sprintf(`(?:%[1]s|\(%[1]s(?: %[2]s %[1]s)+\))`, AcronymPattern, secondary.Label())
}

func multiplePattern(main Operator) string {
	element := elementPattern(main.Opposite())
	return fmt.Sprintf(`%[1]s(?: %[2]s %[1]s)+`, element, main.Label())
}

var (
	// SyntaxRegexp accepts the empty expression, a single acronym, or acronyms
	// joined by one main operator whose parenthesized groups use the other one.
	SyntaxRegexp = regexp.MustCompile(fmt.Sprintf(
		`^(?i)(?:|%s|%s|%s)$`,
		AcronymPattern,
		multiplePattern(AND),
		multiplePattern(OR),
	))

	multipleOrRegexp = regexp.MustCompile(`^(?i)` + multiplePattern(OR) + `$`)
	parenthesis      = strings.NewReplacer("(", "", ")", "")
)

// IsValidExpression reports whether expression matches SyntaxRegexp.
func IsValidExpression(expression string) bool {
	return SyntaxRegexp.MatchString(strings.TrimSpace(expression))
}

// FromExpression parses a textual expression such as "(LDROI1001 OU LDROI1002) ET LDROI1003".
// Every item is bound to year. The empty expression yields the null prerequisite.
func FromExpression(expression string, year int) (*Prerequisite, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return Null(), nil
	}

	if !SyntaxRegexp.MatchString(expression) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSyntax, expression)
	}

	expression = strings.ToUpper(expression)
	main := detectMainOperator(expression)
	secondary := main.Opposite()

	p := New(main)
	for _, part := range strings.Split(expression, " "+main.Label()+" ") {
		group := ItemGroup{Operator: secondary}
		for _, code := range strings.Split(parenthesis.Replace(part), " "+secondary.Label()+" ") {
			group.AddItem(code, year)
		}
		p.AddGroup(group)
	}

	return p, nil
}

// MustFromExpression is like FromExpression but panics on a syntax error.
func MustFromExpression(expression string, year int) *Prerequisite {
	p, err := FromExpression(expression, year)
	if err != nil {
		panic(err)
	}
	return p
}

// OR binds looser than AND: an expression of OU-joined elements has OR as main operator.
func detectMainOperator(expression string) Operator {
	if multipleOrRegexp.MatchString(expression) {
		return OR
	}
	return AND
}
