// Package parse turns the textual expression language into canonical
// expressions, and drives the small scripting surface used by the REPL:
// assignments, print, and the \derivate, \integrate and \eval commands.
package parse

import (
	"strings"

	"github.com/pkg/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokCommand // backslash-prefixed, e.g. \derivate
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokComma
	tokEquals
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}
	start := l.pos
	c := l.input[l.pos]
	switch {
	case c == '+':
		l.pos++
		return token{tokPlus, "+", start}, nil
	case c == '-':
		l.pos++
		return token{tokMinus, "-", start}, nil
	case c == '*':
		l.pos++
		return token{tokStar, "*", start}, nil
	case c == '/':
		l.pos++
		return token{tokSlash, "/", start}, nil
	case c == '^':
		l.pos++
		return token{tokCaret, "^", start}, nil
	case c == '(':
		l.pos++
		return token{tokLParen, "(", start}, nil
	case c == ')':
		l.pos++
		return token{tokRParen, ")", start}, nil
	case c == ',':
		l.pos++
		return token{tokComma, ",", start}, nil
	case c == '=':
		l.pos++
		return token{tokEquals, "=", start}, nil
	case c == '\\':
		l.pos++
		word := l.takeWhile(isIdentChar)
		if word == "" {
			return token{}, errors.Errorf("parse: bare backslash at position %d", start)
		}
		return token{tokCommand, "\\" + word, start}, nil
	case c >= '0' && c <= '9':
		num := l.takeWhile(func(r byte) bool { return r >= '0' && r <= '9' })
		if l.pos < len(l.input) && l.input[l.pos] == '.' {
			l.pos++
			frac := l.takeWhile(func(r byte) bool { return r >= '0' && r <= '9' })
			if frac == "" {
				return token{}, errors.Errorf("parse: malformed number at position %d", start)
			}
			num += "." + frac
		}
		return token{tokNumber, num, start}, nil
	case isIdentStart(c):
		return token{tokIdent, l.takeWhile(isIdentChar), start}, nil
	}
	return token{}, errors.Errorf("parse: unexpected character %q at position %d", string(c), start)
}

func (l *lexer) takeWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

// Identifiers are ASCII; any other byte is rejected by the lexer rather
// than split mid-rune into a garbled name.
func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: strings.TrimSpace(input)}
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}
