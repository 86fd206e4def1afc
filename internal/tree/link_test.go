package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLink_Order(t *testing.T) {
	for _, order := range []int{0, 1, 5} {
		link := &Link{Order: order}
		link.OrderUp()
		assert.Equal(t, order-1, link.Order)
		assert.True(t, link.HasChanged())
		link.OrderDown()
		assert.Equal(t, order, link.Order)

		link = &Link{Order: order}
		link.OrderDown()
		link.OrderUp()
		assert.Equal(t, order, link.Order)
	}
}

func TestLink_BlockRepr(t *testing.T) {
	tests := []struct {
		block    *int
		repr     string
		maxValue int
	}{
		{block: nil, repr: "", maxValue: 0},
		{block: intPtr(1), repr: "1", maxValue: 1},
		{block: intPtr(123), repr: "1 ; 2 ; 3", maxValue: 3},
		{block: intPtr(46), repr: "4 ; 6", maxValue: 6},
	}

	for _, tt := range tests {
		link := &Link{LinkAttributes: LinkAttributes{Block: tt.block}}
		assert.Equal(t, tt.repr, link.BlockRepr())
		assert.Equal(t, tt.maxValue, link.BlockMaxValue())
	}
}

func TestLink_RelativeCreditsRepr(t *testing.T) {
	child := newUnit(2, "LDROI1001")
	link := &Link{Parent: newGroup(1, "LDROI100T", TypeCommonCore), Child: child}
	assert.Equal(t, " / 5", link.RelativeCreditsRepr())

	link.RelativeCredits = intPtr(3)
	assert.Equal(t, "3 / 5", link.RelativeCreditsRepr())

	assert.Equal(t, LinkIdentity{ParentCode: "LDROI100T", ChildCode: "LDROI1001", ParentYear: testYear, ChildYear: testYear}, link.Identity())
	assert.True(t, link.IsLinkWithLearningUnit())
	assert.False(t, link.IsLinkWithGroup())
	assert.False(t, link.IsReference())

	for _, nodeType := range []NodeType{TypeSubGroup, TypeBachelor, TypeOption} {
		withGroup := &Link{Parent: link.Parent, Child: newGroup(3, "LDROI100G", nodeType)}
		assert.True(t, withGroup.IsLinkWithGroup(), nodeType)
	}
}

func TestValidateBlock(t *testing.T) {
	valid := []int{1, 6, 12, 135, 123456}
	for _, block := range valid {
		assert.NoError(t, ValidateBlock(intPtr(block)), block)
	}

	invalid := []int{0, -1, 7, 11, 21, 1237, 103}
	for _, block := range invalid {
		assert.Error(t, ValidateBlock(intPtr(block)), block)
	}

	assert.NoError(t, ValidateBlock(nil))
}
