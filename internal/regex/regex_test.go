package regex

import (
	"testing"
)

func TestCutDelimiters(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"slash", "/foo/", "foo"},
		{"slash_open", "/foo", "foo"},
		{"single_quote", "'foo'", "foo"},
		{"double_quote", `"foo"`, "foo"},
		{"bang", "!foo!", "foo"},
		{"no_delimiter", "foo", "foo"},
		{"empty", "", ""},
		{"inner_slash_kept", "/a/b/", "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CutDelimiters(tt.expr); got != tt.want {
				t.Errorf("CutDelimiters(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestShorthands(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"digit", `\d+`, "[0-9]+"},
		{"nondigit", `\D`, "[^0-9]"},
		{"tab", `a\tb`, "a\tb"},
		{"word_kept", `\w\W\s\S`, `\w\W\s\S`},
		{"escape_kept", `\.`, `\.`},
		{"plain", "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Shorthands(tt.pattern); got != tt.want {
				t.Errorf("Shorthands(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompileAnchored(t *testing.T) {
	tests := []struct {
		expr     string
		anchored bool
	}{
		{"/^foo/", true},
		{"/$/", true},
		{"/foo/", false},
		{"foo$", false},
	}
	for _, tt := range tests {
		p, err := Compile(tt.expr)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tt.expr, err)
		}
		if p.Anchored() != tt.anchored {
			t.Errorf("Compile(%q).Anchored() = %v, want %v", tt.expr, p.Anchored(), tt.anchored)
		}
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("/a[/"); err == nil {
		t.Error("expected compile error for unbalanced bracket")
	}
}

func TestFindLine(t *testing.T) {
	p, err := Compile("/foo/")
	if err != nil {
		t.Fatal(err)
	}
	buff := []byte("a foo b foo\n")

	loc := p.FindLine(buff, 0)
	if loc == nil || loc[0] != 2 || loc[1] != 5 {
		t.Fatalf("first match = %v, want [2 5]", loc)
	}
	loc = p.FindLine(buff, 5)
	if loc == nil || 5+loc[0] != 8 {
		t.Fatalf("second match from 5 = %v", loc)
	}
	if loc := p.FindLine(buff, 11); loc != nil {
		t.Errorf("match past content = %v, want nil", loc)
	}
}

func TestFindLineAnchoredNotBol(t *testing.T) {
	p, err := Compile("/^foo/")
	if err != nil {
		t.Fatal(err)
	}
	buff := []byte("foo foo\n")

	if loc := p.FindLine(buff, 0); loc == nil {
		t.Error("anchored pattern should match at column 0")
	}
	if loc := p.FindLine(buff, 1); loc != nil {
		t.Error("anchored pattern must not match at a non-zero column")
	}
}

func TestFindLineEolAnchor(t *testing.T) {
	p, err := Compile("/$/")
	if err != nil {
		t.Fatal(err)
	}
	buff := []byte("abc\n")
	loc := p.FindLine(buff, 0)
	if loc == nil || loc[0] != 3 || loc[1] != 3 {
		t.Fatalf("$ match = %v, want zero-width at 3", loc)
	}
}

func TestMatchLine(t *testing.T) {
	p, err := Compile("/foo/")
	if err != nil {
		t.Fatal(err)
	}
	if !p.MatchLine([]byte("has foo inside\n")) {
		t.Error("expected match")
	}
	if p.MatchLine([]byte("nothing here\n")) {
		t.Error("unexpected match")
	}

	empty := Pattern{}
	if empty.MatchLine([]byte("anything\n")) {
		t.Error("empty pattern must match nothing")
	}
}
