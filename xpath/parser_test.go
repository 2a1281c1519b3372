package xpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParserShapes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare child step",
			input: "country",
			want:  `AxisStep(child,NameTest("country"))`,
		},
		{
			name:  "attribute shorthand",
			input: "@asd",
			want:  `AxisStep(attribute,NameTest("asd"))`,
		},
		{
			name:  "explicit axis",
			input: "attribute::asd",
			want:  `AxisStep(attribute,NameTest("asd"))`,
		},
		{
			name:  "leading slash with a step",
			input: "/root",
			want:  `PathOperator(RootStep(),AxisStep(child,NameTest("root")))`,
		},
		{
			name:  "bare leading slash",
			input: "/",
			want:  `RootStep()`,
		},
		{
			name:  "positional predicate",
			input: "country[1]",
			want:  `AxisStep(child,NameTest("country"),Predicate(Literal(1)))`,
		},
		{
			name:  "path composition",
			input: "country/rank",
			want:  `PathOperator(AxisStep(child,NameTest("country")),AxisStep(child,NameTest("rank")))`,
		},
		{
			name:  "self step",
			input: ".",
			want:  `Context()`,
		},
		{
			name:  "parent abbreviation",
			input: "..",
			want:  `AxisStep(parent,AnyKindTest())`,
		},
		{
			name:  "value comparison",
			input: "2 eq 2",
			want:  `Compare(Literal(2),Literal(2),eq)`,
		},
		{
			name:  "function call",
			input: "count(country)",
			want:  `StaticFunctionCall("count",AxisStep(child,NameTest("country")))`,
		},
		{
			name:  "text node test",
			input: "rank/text()",
			want:  `PathOperator(AxisStep(child,NameTest("rank")),AxisStep(child,TextTest()))`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ast, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q): unexpected error: %v", tc.input, err)
			}
			if got := ast.String(); got != tc.want {
				t.Fatalf("Parse(%q):\n got  %s\n want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestParserDoubleSlashDesugars(t *testing.T) {
	ast, err := Parse("//neighbor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `PathOperator(PathOperator(RootStep(),AxisStep(descendant-or-self,AnyKindTest())),AxisStep(child,NameTest("neighbor")))`
	if got := ast.String(); got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

func TestParserSyntaxErrors(t *testing.T) {
	testCases := []string{
		"country[",
		"/(",
		"1 eq",
		"country::",
		"'unterminated",
	}
	for _, input := range testCases {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q): expected an error, got none", input)
			}
			xerr, ok := err.(*Error)
			if !ok {
				t.Fatalf("Parse(%q): expected *Error, got %T", input, err)
			}
			if xerr.Code != CodeSyntax {
				t.Fatalf("Parse(%q): expected %s, got %s", input, CodeSyntax, xerr.Code)
			}
		})
	}
}

func TestParserComparisonIsNonAssociative(t *testing.T) {
	_, err := Parse("1 eq 2 eq 3")
	if err == nil {
		t.Fatal("expected a syntax error chaining comparisons, got none")
	}
}

// TestParserStructuralEquality checks the AST shape field-by-field rather
// than via its String() rendering, catching a drift between the two that a
// String()-only comparison (TestParserShapes) would miss.
func TestParserStructuralEquality(t *testing.T) {
	got, err := Parse("country[1]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &AxisStep{
		Axis: Child,
		Test: NameTest{Name: "country"},
		Predicates: []*Predicate{
			{Expr: &Literal{Value: int64(1)}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("AST mismatch (-want +got):\n%s", diff)
	}
}
