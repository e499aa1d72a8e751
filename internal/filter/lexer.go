package filter

import (
	"fmt"
	"strings"
)

// tokenKind discriminates the token types produced by the lexer.
type tokenKind int

const (
	tokenEOF      tokenKind = iota
	tokenWord               // bare identifier, number, boolean or date token
	tokenString             // quoted string, quotes and escapes removed
	tokenCompare            // = != > >= < <=
	tokenAnd                // &&
	tokenOr                 // ||
	tokenLBracket           // [
	tokenRBracket           // ]
	tokenComma              // ,
)

// token is a single lexeme with its 0-based offset into the input.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// bare word tokens end at whitespace or any character that starts another
// token kind. Everything else ('+', '-', ':', '.') stays inside the word so
// date tokens like "now+7d" and "2024-01-02T10:00:00Z" lex as one token.
const wordTerminators = "=!<>&|[],'\""

// lexAll tokenizes the whole input up front. The grammar is small enough
// that a token slice is simpler than a streaming lexer.
func lexAll(input string) ([]token, *ParseError) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '[':
			tokens = append(tokens, token{tokenLBracket, "[", i})
			i++
		case c == ']':
			tokens = append(tokens, token{tokenRBracket, "]", i})
			i++
		case c == ',':
			tokens = append(tokens, token{tokenComma, ",", i})
			i++
		case c == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errorAt(input, i, "expected '&&'")
			}
			tokens = append(tokens, token{tokenAnd, "&&", i})
			i += 2
		case c == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errorAt(input, i, "expected '||'")
			}
			tokens = append(tokens, token{tokenOr, "||", i})
			i += 2
		case c == '!':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errorAt(input, i, "expected '!='")
			}
			tokens = append(tokens, token{tokenCompare, "!=", i})
			i += 2
		case c == '>' || c == '<':
			op := string(c)
			start := i
			i++
			if i < len(input) && input[i] == '=' {
				op += "="
				i++
			}
			tokens = append(tokens, token{tokenCompare, op, start})
		case c == '=':
			tokens = append(tokens, token{tokenCompare, "=", i})
			i++
		case c == '\'' || c == '"':
			tok, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		default:
			tok, next := lexWord(input, i)
			tokens = append(tokens, tok)
			i = next
		}
	}
	tokens = append(tokens, token{tokenEOF, "", len(input)})
	return tokens, nil
}

// lexString scans a quoted string starting at the opening quote. Backslash
// escapes the next character, mirroring the CSV quoting rules used on the
// import path.
func lexString(input string, start int) (token, int, *ParseError) {
	quote := input[start]
	var sb strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case '\\':
			if i+1 >= len(input) {
				return token{}, 0, errorAt(input, i, "unterminated escape sequence")
			}
			sb.WriteByte(input[i+1])
			i += 2
		case quote:
			return token{tokenString, sb.String(), start}, i + 1, nil
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return token{}, 0, errorAt(input, start, "unterminated string literal")
}

// lexWord scans a bare token starting at start.
func lexWord(input string, start int) (token, int) {
	i := start
	for i < len(input) {
		c := input[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		if strings.IndexByte(wordTerminators, c) >= 0 {
			break
		}
		i++
	}
	if i == start {
		// Lone unexpected character; emit it as a word so the parser
		// reports a positioned error instead of looping.
		i = start + 1
	}
	return token{tokenWord, input[start:i], start}, i
}

// errorAt builds a ParseError with a short excerpt of the input around pos.
func errorAt(input string, pos int, format string, args ...any) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
		Context:  contextAt(input, pos),
	}
}

// contextAt returns up to contextRadius characters either side of pos.
const contextRadius = 12

func contextAt(input string, pos int) string {
	if input == "" {
		return ""
	}
	start := pos - contextRadius
	if start < 0 {
		start = 0
	}
	end := pos + contextRadius
	if end > len(input) {
		end = len(input)
	}
	excerpt := input[start:end]
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(input) {
		excerpt += "..."
	}
	return excerpt
}
