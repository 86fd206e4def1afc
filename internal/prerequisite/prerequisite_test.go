package prerequisite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromExpression_RoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{name: "single item", expression: "LDROI1001"},
		{name: "and items", expression: "LDROI1001 ET LDROI1002"},
		{name: "or items", expression: "LDROI1001 OU LDROI1002 OU LDROI1003"},
		{name: "and of or group", expression: "(LDROI1001 OU LDROI1002) ET LDROI1003"},
		{name: "or of and groups", expression: "(LDROI1001 ET LDROI1002) OU (LDROI1003 ET LDROI1004)"},
		{name: "partim", expression: "LDROI1001A ET LDROI1002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := FromExpression(tt.expression, 2021)
			require.NoError(t, err)
			assert.Equal(t, tt.expression, p.String())

			again, err := FromExpression(p.String(), 2021)
			require.NoError(t, err)
			assert.Equal(t, p, again)
		})
	}
}

func TestFromExpression_AndOfTrivialGroups(t *testing.T) {
	p, err := FromExpression("LDROI1001 ET LDROI1002", 2021)
	require.NoError(t, err)

	expected := New(AND,
		NewItemGroup(OR, Item{Code: "LDROI1001", Year: 2021}),
		NewItemGroup(OR, Item{Code: "LDROI1002", Year: 2021}),
	)
	assert.Equal(t, expected, p)
	assert.Equal(t, "LDROI1001 ET LDROI1002", p.String())
}

func TestFromExpression_AndWithOrGroup(t *testing.T) {
	p, err := FromExpression("(LDROI1001 OU LDROI1002) ET LDROI1003", 2021)
	require.NoError(t, err)

	assert.Equal(t, AND, p.MainOperator)
	require.Len(t, p.Groups, 2)
	assert.Equal(t, OR, p.Groups[0].Operator)
	assert.Equal(t, []Item{{Code: "LDROI1001", Year: 2021}, {Code: "LDROI1002", Year: 2021}}, p.Groups[0].Items)
	assert.Equal(t, []Item{{Code: "LDROI1003", Year: 2021}}, p.Groups[1].Items)
	assert.Equal(t, "(LDROI1001 OU LDROI1002) ET LDROI1003", p.String())
}

func TestFromExpression_MainOperatorOr(t *testing.T) {
	p, err := FromExpression("(LDROI1001 ET LDROI1002) OU LDROI1003", 2021)
	require.NoError(t, err)

	assert.Equal(t, OR, p.MainOperator)
	assert.Equal(t, AND, p.Groups[0].Operator)
	assert.Equal(t, []string{"LDROI1001", "LDROI1002", "LDROI1003"}, p.Codes())
}

func TestFromExpression_Empty(t *testing.T) {
	p, err := FromExpression("", 2021)
	require.NoError(t, err)

	assert.True(t, p.IsNull())
	assert.Equal(t, "", p.String())
}

func TestFromExpression_InvalidSyntax(t *testing.T) {
	tests := []string{
		"LDROI1001 ET LDROI1002 OU LDROI1003",
		"(LDROI1001 ET LDROI1002) ET LDROI1003",
		"LDROI1001 ET",
		"(LDROI1001)",
		"NOT_A_CODE",
		"LDROI1001 AND LDROI1002",
	}

	for _, expression := range tests {
		t.Run(expression, func(t *testing.T) {
			_, err := FromExpression(expression, 2021)
			assert.ErrorIs(t, err, ErrInvalidSyntax)
			assert.False(t, IsValidExpression(expression))
		})
	}
}

func TestFromExpression_CaseInsensitive(t *testing.T) {
	p, err := FromExpression("ldroi1001 et ldroi1002", 2021)
	require.NoError(t, err)

	assert.Equal(t, "LDROI1001 ET LDROI1002", p.String())
}

func TestPrerequisite_String(t *testing.T) {
	single := New(OR, NewItemGroup(AND, Item{Code: "LDROI1001"}, Item{Code: "LDROI1002"}))
	assert.Equal(t, "LDROI1001 ET LDROI1002", single.String())

	var nilPrerequisite *Prerequisite
	assert.True(t, nilPrerequisite.IsNull())
	assert.Equal(t, "", Null().String())
}

func TestPrerequisite_Clone(t *testing.T) {
	p := MustFromExpression("(LDROI1001 OU LDROI1002) ET LDROI1003", 2021)
	clone := p.Clone(2022)

	assert.Equal(t, p.String(), clone.String())
	for _, item := range clone.Items() {
		assert.Equal(t, 2022, item.Year)
	}
	assert.True(t, clone.References("LDROI1002"))
	assert.False(t, clone.References("LDROI1004"))
}
