package rpc

import (
	"testing"

	"github.com/emrgen/programtree/internal/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethods(t *testing.T) {
	seen := make(map[string]struct{})
	for _, m := range Methods {
		_, dup := seen[m.Name]
		assert.False(t, dup, m.Name)
		seen[m.Name] = struct{}{}

		cmd := m.New()
		assert.Equal(t, m.Name, cmd.CommandName())
	}
	assert.Len(t, Methods, 12)

	m, ok := Lookup("PasteElement")
	require.True(t, ok)
	assert.True(t, m.Write)
	assert.IsType(t, &command.PasteElement{}, m.New())

	_, ok = Lookup("Unknown")
	assert.False(t, ok)
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/programtree.v1.ProgramTreeService/GetProgramTree", FullMethod("GetProgramTree"))
}

func TestCodec(t *testing.T) {
	codec := Codec{}
	data, err := codec.Marshal(&command.PasteElement{
		Tree:      command.Tree{Code: "LDROI100B", Year: 2021},
		Path:      "1|2",
		ChildCode: "LDROI1001",
		ChildYear: 2021,
	})
	require.NoError(t, err)

	cmd := &command.PasteElement{}
	require.NoError(t, codec.Unmarshal(data, cmd))
	assert.Equal(t, "LDROI100B", cmd.Code)
	assert.Equal(t, "1|2", cmd.Path)
	assert.Equal(t, "LDROI1001", cmd.ChildCode)
	assert.Equal(t, "json", codec.Name())
}
