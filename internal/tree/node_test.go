package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeValueRoundTrip(t *testing.T) {
	n := New("Track")
	require.NoError(t, n.SetValue("name", "Lead"))
	require.NoError(t, n.SetValue("channel", 3))

	var name string
	ok, err := n.Value("name", &name)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Lead", name)

	var missing string
	ok, err = n.Value("nope", &missing)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarshalUnmarshalPreservesUnknownProperties(t *testing.T) {
	root := New("ProjectRoot")
	require.NoError(t, root.SetValue("futureFeature", map[string]int{"x": 1}))
	child := New("Track")
	require.NoError(t, child.SetValue("id", "t1"))
	root.AddChild(child)

	data, err := Marshal(root)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "ProjectRoot", back.Name)
	require.Len(t, back.Children, 1)
	assert.Equal(t, "Track", back.Children[0].Name)

	raw, ok := back.Get("futureFeature")
	assert.True(t, ok)
	assert.JSONEq(t, `{"x":1}`, string(raw))
}

func TestChildrenNamed(t *testing.T) {
	root := New("ProjectRoot")
	root.AddChild(New("Track"))
	root.AddChild(New("Track"))
	root.AddChild(New("VersionControl"))
	assert.Len(t, root.ChildrenNamed("Track"), 2)
	assert.NotNil(t, root.FirstChildNamed("VersionControl"))
	assert.Nil(t, root.FirstChildNamed("Nope"))
}
