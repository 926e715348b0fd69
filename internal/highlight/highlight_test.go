package highlight

import (
	"testing"
)

func tokenAt(tokens []Token, pos int) (Token, bool) {
	for _, tok := range tokens {
		if pos >= tok.Start && pos < tok.End {
			return tok, true
		}
	}
	return Token{}, false
}

func TestPython_Basics(t *testing.T) {
	l := PythonLexer()

	tokens, state := l.Line(`def main():  # entry`, StateNormal)
	if state != StateNormal {
		t.Errorf("state = %v", state)
	}

	tok, ok := tokenAt(tokens, 0)
	if !ok || tok.Type != TokenKeyword {
		t.Errorf("def token = %+v", tok)
	}
	if tok, ok = tokenAt(tokens, 13); !ok || tok.Type != TokenComment {
		t.Errorf("comment token = %+v", tok)
	}
}

func TestPython_StringSwallowsHash(t *testing.T) {
	l := PythonLexer()

	tokens, _ := l.Line(`x = "a # b"`, StateNormal)
	tok, ok := tokenAt(tokens, 6)
	if !ok || tok.Type != TokenString {
		t.Errorf("token inside string = %+v, want string", tok)
	}
}

func TestPython_MultibyteIdentifier(t *testing.T) {
	l := PythonLexer()

	tokens, _ := l.Line(`naïve = True`, StateNormal)
	if tok, ok := tokenAt(tokens, 0); ok && tok.Type == TokenKeyword {
		t.Errorf("multibyte identifier classified as keyword: %+v", tok)
	}
	// True starts at byte 9 ("naïve" is 6 bytes plus " = ").
	if tok, ok := tokenAt(tokens, 9); !ok || tok.Type != TokenConstant {
		t.Errorf("True token = %+v, want constant", tok)
	}
}

func TestPython_TripleQuoteAcrossLines(t *testing.T) {
	l := PythonLexer()

	tokens, state := l.Line(`doc = """start`, StateNormal)
	if state != StateTripleDouble {
		t.Fatalf("state after open = %v", state)
	}
	if tok, ok := tokenAt(tokens, 8); !ok || tok.Type != TokenString {
		t.Errorf("open token = %+v", tok)
	}

	tokens, state = l.Line(`middle line`, state)
	if state != StateTripleDouble {
		t.Errorf("state mid-string = %v", state)
	}
	if tok, ok := tokenAt(tokens, 0); !ok || tok.Type != TokenString || tok.End != 11 {
		t.Errorf("mid token = %+v", tok)
	}

	tokens, state = l.Line(`end""" + x`, state)
	if state != StateNormal {
		t.Errorf("state after close = %v", state)
	}
	if tok, ok := tokenAt(tokens, 0); !ok || tok.Type != TokenString || tok.End != 6 {
		t.Errorf("close token = %+v", tok)
	}
}

func TestC_BlockCommentAndPreproc(t *testing.T) {
	l := CLexer()

	tokens, _ := l.Line(`#include <stdio.h>`, StateNormal)
	if tok, ok := tokenAt(tokens, 0); !ok || tok.Type != TokenPreproc {
		t.Errorf("preproc token = %+v", tok)
	}

	_, state := l.Line(`int x; /* begin`, StateNormal)
	if state != StateBlockComment {
		t.Fatalf("state = %v", state)
	}
	tokens, state = l.Line(`still */ int y;`, state)
	if state != StateNormal {
		t.Errorf("state after close = %v", state)
	}
	if tok, ok := tokenAt(tokens, 0); !ok || tok.Type != TokenComment {
		t.Errorf("comment token = %+v", tok)
	}
	if tok, ok := tokenAt(tokens, 9); !ok || tok.Type != TokenTypeName {
		t.Errorf("int after comment = %+v", tok)
	}
}

func TestC_CommentInsideString(t *testing.T) {
	l := CLexer()

	tokens, state := l.Line(`puts("not /* a comment");`, StateNormal)
	if state != StateNormal {
		t.Errorf("state = %v", state)
	}
	tok, ok := tokenAt(tokens, 12)
	if !ok || tok.Type != TokenString {
		t.Errorf("token = %+v, want string", tok)
	}
}

func TestJava_Annotations(t *testing.T) {
	l := JavaLexer()

	tokens, _ := l.Line(`@Override public void run() {}`, StateNormal)
	if tok, ok := tokenAt(tokens, 0); !ok || tok.Type != TokenPreproc {
		t.Errorf("annotation = %+v", tok)
	}
	if tok, ok := tokenAt(tokens, 10); !ok || tok.Type != TokenKeyword {
		t.Errorf("public = %+v", tok)
	}
}

func TestTokensSortedAndDisjoint(t *testing.T) {
	l := CppLexer()

	tokens, _ := l.Line(`std::cout << "x=" << 42 << std::endl; // done`, StateNormal)
	for i := 1; i < len(tokens); i++ {
		if tokens[i].Start < tokens[i-1].End {
			t.Errorf("tokens overlap: %+v then %+v", tokens[i-1], tokens[i])
		}
	}
}

func TestRegistry_ForFile(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		path string
		lang string
	}{
		{"main.py", "python"},
		{"prog.c", "c"},
		{"prog.H", "c"},
		{"prog.cpp", "cpp"},
		{"Main.java", "java"},
	}
	for _, tt := range tests {
		l := r.ForFile(tt.path)
		if l == nil || l.Language() != tt.lang {
			t.Errorf("ForFile(%s) = %v, want %s", tt.path, l, tt.lang)
		}
	}

	if r.ForFile("notes.txt") != nil {
		t.Error("ForFile(notes.txt) != nil")
	}
	if r.ForFile("Makefile") != nil {
		t.Error("ForFile(Makefile) != nil")
	}
}
