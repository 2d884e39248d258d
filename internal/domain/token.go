package domain

import "strings"

// Token is one whitespace-delimited field of a report and its position.
type Token struct {
	Text  string
	Index int
}

// Tokenize splits a report body on whitespace, keeping the original order.
// Punctuation is not trimmed. Empty input yields an empty slice.
func Tokenize(body string) []Token {
	fields := strings.Fields(body)
	tokens := make([]Token, len(fields))
	for i, f := range fields {
		tokens[i] = Token{Text: f, Index: i}
	}
	return tokens
}
