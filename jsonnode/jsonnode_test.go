package jsonnode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbortree/xpathql/jsonnode"
	"github.com/arbortree/xpathql/xpath"
)

const sampleJSON = `{
  "name": "Liechtenstein",
  "rank": 1,
  "active": true,
  "neighbors": ["Austria", "Switzerland"]
}`

func TestParseObjectRootHasNoParent(t *testing.T) {
	root, err := jsonnode.Parse([]byte(sampleJSON))
	require.NoError(t, err)
	require.Equal(t, xpath.ElementNode, root.NodeKind())
	_, hasParent := root.Parent()
	require.False(t, hasParent)
}

func TestObjectKeysBecomeNamedChildren(t *testing.T) {
	root, err := jsonnode.Parse([]byte(sampleJSON))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, c := range root.Children() {
		names[c.Name()] = true
	}
	require.True(t, names["name"])
	require.True(t, names["rank"])
	require.True(t, names["active"])
	require.True(t, names["neighbors"])
}

func TestArrayElementsShareParentName(t *testing.T) {
	root, err := jsonnode.Parse([]byte(sampleJSON))
	require.NoError(t, err)

	var neighbors xpath.Node
	for _, c := range root.Children() {
		if c.Name() == "neighbors" {
			neighbors = c
		}
	}
	require.NotNil(t, neighbors)
	children := neighbors.Children()
	require.Len(t, children, 2)
	for _, c := range children {
		require.Equal(t, "neighbors", c.Name())
	}
	require.Equal(t, "Austria", children[0].StringValue())
	require.Equal(t, "Switzerland", children[1].StringValue())
}

func TestScalarLeafStringValueAndUnwrap(t *testing.T) {
	root, err := jsonnode.Parse([]byte(sampleJSON))
	require.NoError(t, err)

	var rank xpath.Node
	for _, c := range root.Children() {
		if c.Name() == "rank" {
			rank = c
		}
	}
	require.NotNil(t, rank)
	require.Equal(t, "1", rank.StringValue())
	require.Equal(t, float64(1), rank.Unwrap())
}

func TestBareScalarDocument(t *testing.T) {
	root, err := jsonnode.Parse([]byte(`"just a string"`))
	require.NoError(t, err)
	require.Equal(t, xpath.TextNode, root.NodeKind())
	require.Equal(t, "just a string", root.StringValue())
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := jsonnode.Parse([]byte(`{not valid json`))
	require.Error(t, err)
}

func TestAttributesAreAlwaysEmpty(t *testing.T) {
	root, err := jsonnode.Parse([]byte(sampleJSON))
	require.NoError(t, err)
	require.Empty(t, root.Attributes())
}
