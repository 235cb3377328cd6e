// Copyright 2011 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nin

import "fmt"

// token is one lexical unit: its kind, plus the identifier text for
// tokIdent tokens.
type token struct {
	kind tokenKind
	text string
	pos  Position
}

// lexer hand-scans manifest bytes into a token stream. There is no
// code-generation step (the reference tokenizer this is grounded on
// is re2c-generated; re2c is a build-time C tool, not something a Go
// module can depend on), so dispatch is a plain byte-by-byte switch.
type lexer struct {
	path  string
	input []byte
	ofs   int
	atBOL bool
}

func newLexer(path string, input []byte) *lexer {
	return &lexer{path: path, input: input, atBOL: true}
}

func (l *lexer) pos() Position { return Position{Path: l.path, Offset: l.ofs} }

func (l *lexer) errorf(format string, args ...interface{}) error {
	return &LexError{Pos: l.pos(), Input: l.input, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) peek() byte {
	if l.ofs >= len(l.input) {
		return 0
	}
	return l.input[l.ofs]
}

// Next returns the next structural token, skipping comments and
// inline whitespace. At the start of a line, a run of leading spaces
// is reported as a single tokIndent rather than being skipped, since
// the parser uses its presence to recognize a nested binding line. A
// leading tab is always a LexError: ninja manifests are spaces-only.
func (l *lexer) Next() (token, error) {
	if l.atBOL {
		l.atBOL = false
		spaces := 0
		for l.ofs+spaces < len(l.input) && l.input[l.ofs+spaces] == ' ' {
			spaces++
		}
		if l.ofs+spaces < len(l.input) && l.input[l.ofs+spaces] == '\t' {
			l.ofs += spaces
			return token{}, l.errorf("tabs are not allowed, use spaces")
		}
		if spaces > 0 {
			p := l.pos()
			l.ofs += spaces
			return token{kind: tokIndent, pos: p}, nil
		}
	}
	for {
		c := l.peek()
		switch {
		case c == 0:
			return token{kind: tokEOF, pos: l.pos()}, nil
		case c == '\r':
			l.ofs++
		case c == '\n':
			p := l.pos()
			l.ofs++
			l.atBOL = true
			return token{kind: tokNewline, pos: p}, nil
		case c == '\t':
			return token{}, l.errorf("tabs are not allowed, use spaces")
		case c == ' ':
			l.ofs++
		case c == '#':
			for l.peek() != '\n' && l.peek() != 0 {
				l.ofs++
			}
		case c == ':':
			p := l.pos()
			l.ofs++
			return token{kind: tokColon, pos: p}, nil
		case c == '=':
			p := l.pos()
			l.ofs++
			return token{kind: tokEquals, pos: p}, nil
		case c == '|':
			p := l.pos()
			if l.ofs+1 < len(l.input) && l.input[l.ofs+1] == '|' {
				l.ofs += 2
				return token{kind: tokPipe2, pos: p}, nil
			}
			l.ofs++
			return token{kind: tokPipe, pos: p}, nil
		case isIdentStart(c):
			return l.readKeywordOrIdent()
		default:
			return token{}, l.errorf("unexpected character %q", string(c))
		}
	}
}

func (l *lexer) readKeywordOrIdent() (token, error) {
	p := l.pos()
	start := l.ofs
	for isIdentChar(l.peek()) {
		l.ofs++
	}
	text := string(l.input[start:l.ofs])
	switch text {
	case "build":
		return token{kind: tokBuild, pos: p}, nil
	case "rule":
		return token{kind: tokRule, pos: p}, nil
	case "default":
		return token{kind: tokDefault, pos: p}, nil
	case "include":
		return token{kind: tokInclude, pos: p}, nil
	case "subninja":
		return token{kind: tokSubninja, pos: p}, nil
	}
	return token{kind: tokIdent, text: text, pos: p}, nil
}

// skipInlineSpaces consumes a run of plain spaces (not newlines, not
// tabs) at the current position.
func (l *lexer) skipInlineSpaces() {
	for l.peek() == ' ' {
		l.ofs++
	}
}

// readRuleName scans a single identifier, without keyword
// interpretation, used for the rule name after a build edge's colon.
func (l *lexer) readRuleName() (string, Position, error) {
	l.skipInlineSpaces()
	p := l.pos()
	start := l.ofs
	for isIdentChar(l.peek()) {
		l.ofs++
	}
	if l.ofs == start {
		return "", p, l.errorf("expected rule name")
	}
	return string(l.input[start:l.ofs]), p, nil
}

// atLineEnd reports whether, after skipping inline spaces, the
// current position is a newline or EOF.
func (l *lexer) atLineEnd() bool {
	save := l.ofs
	l.skipInlineSpaces()
	c := l.peek()
	l.ofs = save
	return c == '\n' || c == 0
}

// ReadEvalString scans an unexpanded value starting at the current
// position, handling '$'-escapes and line continuations. In path
// mode, an unescaped space, colon or pipe also terminates the value
// (used for build-statement path lists); otherwise only an unescaped
// newline or EOF terminates it (used for binding values).
func (l *lexer) ReadEvalString(path bool) (EvalString, error) {
	var e EvalString
	start := l.ofs
	flush := func(end int) {
		if end > start {
			e.addText(string(l.input[start:end]))
		}
	}
	for {
		c := l.peek()
		switch {
		case c == 0:
			flush(l.ofs)
			return e, nil
		case c == '\n':
			flush(l.ofs)
			return e, nil
		case path && (c == ' ' || c == ':' || c == '|'):
			flush(l.ofs)
			return e, nil
		case c == '\r':
			flush(l.ofs)
			l.ofs++
			start = l.ofs
		case c == '$':
			flush(l.ofs)
			l.ofs++
			if err := l.readEscape(&e); err != nil {
				return EvalString{}, err
			}
			start = l.ofs
		default:
			l.ofs++
		}
	}
}

func (l *lexer) readEscape(e *EvalString) error {
	c := l.peek()
	switch {
	case c == 0:
		return l.errorf("unexpected EOF after '$'")
	case c == '\n':
		l.ofs++
		l.skipInlineSpaces()
		return nil
	case c == '\r':
		l.ofs++
		if l.peek() == '\n' {
			l.ofs++
		}
		l.skipInlineSpaces()
		return nil
	case c == ' ':
		l.ofs++
		e.addText(" ")
		return nil
	case c == ':':
		l.ofs++
		e.addText(":")
		return nil
	case c == '$':
		l.ofs++
		e.addText("$")
		return nil
	case c == '{':
		l.ofs++
		start := l.ofs
		for isVarNameChar(l.peek()) {
			l.ofs++
		}
		if l.peek() != '}' {
			return l.errorf("expected '}' to close variable reference")
		}
		name := string(l.input[start:l.ofs])
		l.ofs++
		if name == "" {
			return l.errorf("empty variable name in '${}'")
		}
		e.addVar(name)
		return nil
	case isSimpleVarNameStart(c):
		start := l.ofs
		for isSimpleVarNameChar(l.peek()) {
			l.ofs++
		}
		e.addVar(string(l.input[start:l.ofs]))
		return nil
	default:
		return l.errorf("bad $-escape (literal $ must be written as $$)")
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '.' || c == '-' || c == '/' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdentChar(c byte) bool { return isIdentStart(c) }

// isVarNameChar is the charset allowed inside ${...}: it includes
// dots, unlike the bare $name form.
func isVarNameChar(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSimpleVarNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSimpleVarNameChar(c byte) bool { return isSimpleVarNameStart(c) }
