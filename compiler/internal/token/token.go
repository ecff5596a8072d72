package token

import (
	"unicode"
)

type Type int

const (
	Illegal Type = iota
	Ident
	Number
	LBrace
	RBrace
	Colon
	Comma
	Eq
	DotDot
	DotDotEq
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "integer"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case Colon:
		return "':'"
	case Comma:
		return "','"
	case Eq:
		return "'='"
	case DotDot:
		return "'..'"
	case DotDotEq:
		return "'..='"
	}
	return "illegal character"
}

type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

// Tokenize splits a layout source into tokens. Unknown characters become
// Illegal tokens so the parser can report them with a position.
func Tokenize(input string) []Token {
	return TokenizeAt(input, 1, 1)
}

// TokenizeAt tokenizes input whose first rune sits at line:col of a larger
// document.
func TokenizeAt(input string, line, col int) []Token {
	var tokens []Token
	runes := []rune(input)
	lineStart := 1 - col

	emit := func(value string, typ Type, at int) {
		tokens = append(tokens, Token{Value: value, Type: typ, Line: line, Col: at - lineStart + 1})
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			lineStart = i + 1
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '/' {
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		}

		// Block comment
		if r == '/' && i+1 < len(runes) && runes[i+1] == '*' {
			i += 2
			for i < len(runes) && !(runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
					lineStart = i + 1
				}
				i++
			}
			i++
			continue
		}

		switch r {
		case '{':
			emit("{", LBrace, i)
			continue
		case '}':
			emit("}", RBrace, i)
			continue
		case ':':
			emit(":", Colon, i)
			continue
		case ',':
			emit(",", Comma, i)
			continue
		case '=':
			emit("=", Eq, i)
			continue
		case '.':
			if i+1 < len(runes) && runes[i+1] == '.' {
				if i+2 < len(runes) && runes[i+2] == '=' {
					emit("..=", DotDotEq, i)
					i += 2
				} else {
					emit("..", DotDot, i)
					i++
				}
				continue
			}
		}

		// Integer literal, including 0x/0o/0b prefixes, '_' separators and
		// any trailing garbage such as a type suffix; the parser rejects it.
		if unicode.IsDigit(r) {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			emit(string(runes[start:i]), Number, start)
			i--
			continue
		}

		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			emit(string(runes[start:i]), Ident, start)
			i--
			continue
		}

		emit(string(r), Illegal, i)
	}

	return tokens
}
