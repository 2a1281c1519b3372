package xpathql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arbortree/xpathql"
	"github.com/arbortree/xpathql/xmlnode"
)

// countryXML is the fixture spec.md §8's end-to-end scenario table
// describes: a root `<data>` carrying an `asd` attribute and three
// `<country>` children, each with rank/year/gdppc/neighbor content.
const countryXML = `<data asd="dsa">
  <country name="Liechtenstein">
    <rank>1</rank>
    <year>2008</year>
    <gdppc>141100</gdppc>
    <neighbor name="Austria" direction="E"/>
    <neighbor name="Switzerland" direction="W"/>
  </country>
  <country name="Singapore">
    <rank>4</rank>
    <year>2011</year>
    <gdppc>59900</gdppc>
    <neighbor name="Malaysia" direction="N"/>
  </country>
  <country name="Panama">
    <rank>68</rank>
    <year>2011</year>
    <gdppc>13600</gdppc>
    <neighbor name="Costa Rica" direction="W"/>
    <neighbor name="Colombia" direction="E"/>
  </country>
</data>`

func mustParse(t *testing.T) any {
	t.Helper()
	doc, err := xmlnode.Parse([]byte(countryXML))
	require.NoError(t, err)
	return doc
}

func TestCountryScenarios(t *testing.T) {
	doc := mustParse(t)

	t.Run("1 attribute shorthand", func(t *testing.T) {
		got, err := xpathql.Query(doc, "@asd", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, []any{"dsa"}, got)
	})

	t.Run("2 child elements in document order", func(t *testing.T) {
		got, err := xpathql.Query(doc, "country", xpathql.Options{})
		require.NoError(t, err)
		require.Len(t, got, 3)
	})

	t.Run("3 explicit attribute axis matches shorthand", func(t *testing.T) {
		got, err := xpathql.Query(doc, "attribute::asd", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, []any{"dsa"}, got)
	})

	t.Run("4 predicate on attribute existence", func(t *testing.T) {
		got, err := xpathql.Query(doc, "country[@name]", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, got, 3)
	})

	t.Run("5 positional predicate", func(t *testing.T) {
		got, err := xpathql.Query(doc, "country[1]", xpathql.Options{UnwrapNodes: false})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("6 rank text values", func(t *testing.T) {
		got, err := xpathql.Query(doc, "country/rank/text()", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, []any{"1", "4", "68"}, got)
	})

	t.Run("7 value comparison", func(t *testing.T) {
		got, err := xpathql.Query(doc, "2 eq 2", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, []any{true}, got)

		got, err = xpathql.Query(doc, "'2' eq '3'", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, []any{false}, got)
	})

	t.Run("8 predicate filters on nested text then projects", func(t *testing.T) {
		got, err := xpathql.Query(doc, "country[rank/text() eq '1']/year/text()", xpathql.DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, []any{"2008"}, got)
	})

	t.Run("9 context item self reference", func(t *testing.T) {
		got, err := xpathql.Query(doc, ".", xpathql.Options{UnwrapNodes: false})
		require.NoError(t, err)
		require.Len(t, got, 1)

		got2, err := xpathql.Query(doc, "./.", xpathql.Options{UnwrapNodes: false})
		require.NoError(t, err)
		require.Len(t, got2, 1)
	})

	t.Run("10 self step is a no-op path segment", func(t *testing.T) {
		got, err := xpathql.Query(doc, "country/.", xpathql.Options{UnwrapNodes: false})
		require.NoError(t, err)
		require.Len(t, got, 3)
	})
}

func TestQueryUnknownFunction(t *testing.T) {
	doc := mustParse(t)
	_, err := xpathql.Query(doc, "frobnicate()", xpathql.DefaultOptions())
	require.Error(t, err)
}

func TestQueryDoubleSlashDescendant(t *testing.T) {
	doc := mustParse(t)
	got, err := xpathql.Query(doc, "//neighbor", xpathql.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 5)
}
