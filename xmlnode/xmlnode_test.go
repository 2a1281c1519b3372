package xmlnode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbortree/xpathql/xmlnode"
	"github.com/arbortree/xpathql/xpath"
)

const sampleXML = `<root attr="value">
  <!-- a comment -->
  <child>text content</child>
  <child>more text</child>
</root>`

func TestParseReturnsRootElementNotADocumentWrapper(t *testing.T) {
	root, err := xmlnode.Parse([]byte(sampleXML))
	require.NoError(t, err)
	require.Equal(t, xpath.ElementNode, root.NodeKind())
	require.Equal(t, "root", root.Name())
	_, hasParent := root.Parent()
	require.False(t, hasParent, "the returned root must have no parent")
}

func TestParseBuildsAttributesAndChildren(t *testing.T) {
	root, err := xmlnode.Parse([]byte(sampleXML))
	require.NoError(t, err)

	attrs := root.Attributes()
	require.Len(t, attrs, 1)
	require.Equal(t, "attr", attrs[0].Name())
	require.Equal(t, "value", attrs[0].StringValue())

	var childCount int
	for _, c := range root.Children() {
		if c.NodeKind() == xpath.ElementNode {
			childCount++
		}
	}
	require.Equal(t, 2, childCount)
}

func TestStringValueConcatenatesDescendantText(t *testing.T) {
	root, err := xmlnode.Parse([]byte(sampleXML))
	require.NoError(t, err)
	require.Contains(t, root.StringValue(), "text content")
	require.Contains(t, root.StringValue(), "more text")
}

func TestUnwrapDistinguishesLeavesFromElements(t *testing.T) {
	root, err := xmlnode.Parse([]byte(sampleXML))
	require.NoError(t, err)

	require.IsType(t, root, root.Unwrap())

	attrs := root.Attributes()
	require.Equal(t, "value", attrs[0].Unwrap())
}

func TestParseRejectsDocumentWithoutRootElement(t *testing.T) {
	_, err := xmlnode.Parse([]byte(`<!-- just a comment -->`))
	require.Error(t, err)
}

func TestParseMalformedXML(t *testing.T) {
	_, err := xmlnode.Parse([]byte(`<root><unclosed></root>`))
	require.Error(t, err)
}

func TestIdentityEqualDistinguishesNodes(t *testing.T) {
	root, err := xmlnode.Parse([]byte(sampleXML))
	require.NoError(t, err)

	children := root.Children()
	var elements []xpath.Node
	for _, c := range children {
		if c.NodeKind() == xpath.ElementNode {
			elements = append(elements, c)
		}
	}
	require.Len(t, elements, 2)
	require.True(t, elements[0].IdentityEqual(elements[0]))
	require.False(t, elements[0].IdentityEqual(elements[1]))
}
