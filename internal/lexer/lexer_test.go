package lexer

import "testing"

func TestNextPunctuationAndRelations(t *testing.T) {
	input := `( ) { } , . - + ; / * ! != = == > >= < <=`

	tests := []struct {
		expectedType   TokenType
		expectedLexeme string
	}{
		{TokenLeftParen, "("},
		{TokenRightParen, ")"},
		{TokenLeftBrace, "{"},
		{TokenRightBrace, "}"},
		{TokenComma, ","},
		{TokenDot, "."},
		{TokenMinus, "-"},
		{TokenPlus, "+"},
		{TokenSemicolon, ";"},
		{TokenSlash, "/"},
		{TokenStar, "*"},
		{TokenBang, "!"},
		{TokenBangEqual, "!="},
		{TokenEqual, "="},
		{TokenEqualEqual, "=="},
		{TokenGreater, ">"},
		{TokenGreaterEqual, ">="},
		{TokenLess, "<"},
		{TokenLessEqual, "<="},
		{TokenEOF, ""},
	}

	s := New(input)
	for i, tt := range tests {
		tok := s.Next()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s", i, tt.expectedType, tok.Type)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestNextKeywords(t *testing.T) {
	input := `and class def else False for if is None not or print return True var while identifier`

	tests := []TokenType{
		TokenAnd, TokenClass, TokenDef, TokenElse, TokenFalse, TokenFor, TokenIf, TokenIs,
		TokenNone, TokenNot, TokenOr, TokenPrint, TokenReturn, TokenTrue, TokenVar, TokenWhile,
		TokenIdentifier, TokenEOF,
	}

	s := New(input)
	for i, want := range tests {
		tok := s.Next()
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s (%q)", i, want, tok.Type, tok.Lexeme)
		}
	}
}

func TestNextNumber(t *testing.T) {
	s := New(`123 4.56`)

	tok := s.Next()
	if tok.Type != TokenNumber || tok.Lexeme != "123" {
		t.Fatalf("got %s %q", tok.Type, tok.Lexeme)
	}

	tok = s.Next()
	if tok.Type != TokenNumber || tok.Lexeme != "4.56" {
		t.Fatalf("got %s %q", tok.Type, tok.Lexeme)
	}
}

func TestNextString(t *testing.T) {
	s := New(`"hello world"`)
	tok := s.Next()
	if tok.Type != TokenString {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Lexeme != `"hello world"` {
		t.Fatalf("unexpected lexeme %q", tok.Lexeme)
	}
}

func TestNextUnterminatedString(t *testing.T) {
	s := New(`"unterminated`)
	tok := s.Next()
	if tok.Type != TokenError || tok.Lexeme != "Unterminated string." {
		t.Fatalf("got %s %q", tok.Type, tok.Lexeme)
	}
}

func TestNextSkipsCommentsAndWhitespace(t *testing.T) {
	s := New("  // a comment\n  42")
	tok := s.Next()
	if tok.Type != TokenNumber || tok.Lexeme != "42" {
		t.Fatalf("got %s %q", tok.Type, tok.Lexeme)
	}
	if tok.Line != 2 {
		t.Fatalf("expected line 2, got %d", tok.Line)
	}
}

func TestNextUnexpectedCharacter(t *testing.T) {
	s := New(`@`)
	tok := s.Next()
	if tok.Type != TokenError || tok.Lexeme != "Unexpected character." {
		t.Fatalf("got %s %q", tok.Type, tok.Lexeme)
	}
}

func TestIdentifierVsKeywordPrefix(t *testing.T) {
	// "orchid" must not be mistaken for "or"; identifierType only matches on
	// an exact suffix length.
	s := New(`orchid ifx nonexistent`)

	for _, want := range []string{"orchid", "ifx", "nonexistent"} {
		tok := s.Next()
		if tok.Type != TokenIdentifier {
			t.Fatalf("expected IDENTIFIER for %q, got %s", want, tok.Type)
		}
		if tok.Lexeme != want {
			t.Fatalf("expected lexeme %q, got %q", want, tok.Lexeme)
		}
	}
}
