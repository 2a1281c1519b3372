package xpath

import "testing"

func TestLexerTokens(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "simple path",
			input:    "/root",
			expected: []TokenType{TokSlash, TokEQName, TokEOF},
		},
		{
			name:     "descendant path",
			input:    "//element",
			expected: []TokenType{TokDoubleSlash, TokEQName, TokEOF},
		},
		{
			name:     "attribute selection",
			input:    "@id",
			expected: []TokenType{TokAt, TokEQName, TokEOF},
		},
		{
			name:     "predicate with number",
			input:    "item[1]",
			expected: []TokenType{TokEQName, TokLBracket, TokNumber, TokRBracket, TokEOF},
		},
		{
			name:     "string literal",
			input:    "'hello world'",
			expected: []TokenType{TokString, TokEOF},
		},
		{
			name:     "axis keyword followed by ::",
			input:    "child::foo",
			expected: []TokenType{TokAxis, TokEQName, TokEOF},
		},
		{
			name:     "axis keyword not followed by :: lexes as a name",
			input:    "child",
			expected: []TokenType{TokEQName, TokEOF},
		},
		{
			name:     "word operators",
			input:    "1 eq 2 and 3 ne 4",
			expected: []TokenType{TokNumber, TokEq, TokNumber, TokAnd, TokNumber, TokNe, TokNumber, TokEOF},
		},
		{
			name:     "general comparison operators",
			input:    "1 <= 2 >= 3 != 4",
			expected: []TokenType{TokNumber, TokGeneralLe, TokNumber, TokGeneralGe, TokNumber, TokGeneralNe, TokNumber, TokEOF},
		},
		{
			name:     "parent and self abbreviations",
			input:    "../.",
			expected: []TokenType{TokDoubleDot, TokSlash, TokDot, TokEOF},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newLexer(tc.input)
			for i, want := range tc.expected {
				got := l.nextToken()
				if got.Type != want {
					t.Fatalf("token %d: got type %v, want %v (value %q)", i, got.Type, want, got.Value)
				}
			}
		})
	}
}

func TestLexerAxisFollowsSkipsWhitespace(t *testing.T) {
	l := newLexer("child  ::  foo")
	tok := l.nextToken()
	if tok.Type != TokAxis {
		t.Fatalf("expected TokAxis, got %v", tok.Type)
	}
	if tok.Value != "child" {
		t.Fatalf("expected value %q, got %q", "child", tok.Value)
	}
}

func TestLexerErrorOnUnterminatedString(t *testing.T) {
	l := newLexer(`"unterminated`)
	tok := l.nextToken()
	if tok.Type != TokError {
		t.Fatalf("expected TokError, got %v", tok.Type)
	}
}

func TestLexerErrorOnBareColon(t *testing.T) {
	l := newLexer(":foo")
	tok := l.nextToken()
	if tok.Type != TokError {
		t.Fatalf("expected TokError, got %v", tok.Type)
	}
}

func TestLexerNumberForms(t *testing.T) {
	testCases := []struct {
		input string
		value string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{".5", ".5"},
		{"10.", "10"},
	}
	for _, tc := range testCases {
		l := newLexer(tc.input)
		tok := l.nextToken()
		if tok.Type != TokNumber {
			t.Fatalf("input %q: expected TokNumber, got %v", tc.input, tok.Type)
		}
		if tok.Value != tc.value {
			t.Fatalf("input %q: got value %q, want %q", tc.input, tok.Value, tc.value)
		}
	}
}
