package pipeline

import "strings"

// delimiters are the characters that separate tokens.
const delimiters = " \t\r\n\a"

// Tokenize splits line on runs of blanks. There is no quoting or escaping:
// a token can never contain a blank, and an all-blank line yields no tokens.
func Tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
}
