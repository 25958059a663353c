package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"ls -la /tmp", []string{"ls", "-la", "/tmp"}},
		{"  echo\t\thi  ", []string{"echo", "hi"}},
		{"cat < in.txt > out.txt", []string{"cat", "<", "in.txt", ">", "out.txt"}},
		{"a|b", []string{"a|b"}},
		{"echo \"a b\"", []string{"echo", "\"a", "b\""}},
		{"line\r\n", []string{"line"}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokenize(tc.line))
		})
	}
}

func TestTokenizeBlank(t *testing.T) {
	for _, line := range []string{"", " ", "\t \t", "\n", "\a"} {
		assert.Empty(t, Tokenize(line), "line %q", line)
	}
}

func TestTokenizeNeverYieldsEmptyTokens(t *testing.T) {
	for _, tok := range Tokenize(" a  \t b\t\t c \n") {
		assert.NotEmpty(t, tok)
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	lines := []string{
		"grep -r TODO src/",
		"   sort   -n   ",
		"printf a\tb",
		"x",
	}
	for _, line := range lines {
		joined := strings.Join(Tokenize(line), " ")
		assert.Equal(t, strings.Fields(line), Tokenize(joined), "line %q", line)
	}
}
