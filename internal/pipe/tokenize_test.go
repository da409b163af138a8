package pipe

import (
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name   string
		argstr string
		want   []string
	}{
		{"plain", "ls -la /tmp", []string{"ls", "-la", "/tmp"}},
		{"single_quotes", "sh -c 'echo hello'", []string{"sh", "-c", "echo hello"}},
		{"double_quotes", `grep "two words" file`, []string{"grep", "two words", "file"}},
		{"escaped_space", `cat one\ file`, []string{"cat", "one file"}},
		{"escaped_quote", `echo don\'t`, []string{"echo", "don't"}},
		{"escaped_backslash", `echo a\\b`, []string{"echo", `a\b`}},
		{"tabs", "a\tb", []string{"a", "b"}},
		{"quoted_empty", "cmd ''", []string{"cmd", ""}},
		{"mixed", `sh -c 'echo "a b"'`, []string{"sh", "-c", `echo "a b"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.argstr)
			if err != nil {
				t.Fatalf("ParseArgs(%q): %v", tt.argstr, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseArgs(%q) = %q, want %q", tt.argstr, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseArgsEmpty(t *testing.T) {
	if _, err := ParseArgs(""); err == nil {
		t.Error("empty argv must be refused")
	}
	if _, err := ParseArgs("   "); err == nil {
		t.Error("blank argv must be refused")
	}
}

func TestFilterEscSeq(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello\n", "hello\n"},
		{"title_set", "\x1b]0;my title\x07after", "after"},
		{"csi_color", "a\x1b[31mred\x1b[0mb", "aredb"},
		{"csi_cursor", "\x1b[2Jtext", "text"},
		{"two_byte", "\x1bMline", "line"},
		{"trailing_esc", "text\x1b", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(FilterEscSeq([]byte(tt.in))); got != tt.want {
				t.Errorf("FilterEscSeq(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
