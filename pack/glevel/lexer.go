package glevel

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_TEXT = iota
	TOKEN_SEPARATOR
	TOKEN_NEWLINE
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[^,\|=\r\n]+`), getToken(TOKEN_TEXT))
	lexer.Add([]byte(`\r`), getToken(TOKEN_TEXT))
	lexer.Add([]byte(`,`), getToken(TOKEN_SEPARATOR))
	lexer.Add([]byte(`\|`), getToken(TOKEN_SEPARATOR))
	lexer.Add([]byte(`=`), getToken(TOKEN_SEPARATOR))
	lexer.Add([]byte(`\r?\n`), getToken(TOKEN_NEWLINE))
	// compile eagerly, Scanner would otherwise compile lazily on first use
	// and race between concurrent parses
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

type line struct {
	num    int
	tokens []*lexmachine.Token
}

type field struct {
	index int
	text  string
}

func (l *line) text() string {
	var sb strings.Builder
	for _, tok := range l.tokens {
		sb.Write(tok.Lexeme)
	}
	return sb.String()
}

func (l *line) blank() bool {
	return strings.TrimSpace(l.text()) == ""
}

// split cuts the line on one separator. Other separators stay part of the
// field text, so the result equals strings.Split(l.text(), string(sep)).
func (l *line) split(sep byte) []field {
	fields := make([]field, 0, 8)
	var sb strings.Builder
	for _, tok := range l.tokens {
		if tok.Type == TOKEN_SEPARATOR && tok.Lexeme[0] == sep {
			fields = append(fields, field{index: len(fields), text: sb.String()})
			sb.Reset()
		} else {
			sb.Write(tok.Lexeme)
		}
	}
	return append(fields, field{index: len(fields), text: sb.String()})
}

// splitLines frames the text into lines. Line numbers are 1-based and
// trailing blank lines are dropped.
func splitLines(text []byte) ([]*line, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	lines := make([]*line, 0, 16)
	current := &line{num: 1}
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to scan line %d", current.num)
		}
		tok := itok.(*lexmachine.Token)
		if tok.Type == TOKEN_NEWLINE {
			lines = append(lines, current)
			current = &line{num: current.num + 1}
			continue
		}
		current.tokens = append(current.tokens, tok)
	}
	if len(current.tokens) != 0 {
		lines = append(lines, current)
	}

	for len(lines) != 0 && lines[len(lines)-1].blank() {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
