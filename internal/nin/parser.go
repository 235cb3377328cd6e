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

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
)

// parseManifest tokenizes and parses a single manifest file into its
// abstract form, without resolving includes/subninjas or expanding
// any variable.
func parseManifest(path string, input []byte) (*manifestAST, error) {
	p := &parser{lex: newLexer(path, input)}
	ast := &manifestAST{Path: path, Dir: filepath.Dir(path)}
	if err := p.parseFile(ast); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return ast, nil
}

// parser turns a lexer's token stream into a manifestAST. It keeps at
// most one token of lookahead, since most of the grammar needs to
// peek one token past the current statement.
type parser struct {
	lex    *lexer
	pushed *token
}

func (p *parser) next() (token, error) {
	if p.pushed != nil {
		t := *p.pushed
		p.pushed = nil
		return t, nil
	}
	return p.lex.Next()
}

func (p *parser) unread(t token) { p.pushed = &t }

func (p *parser) parseErrorf(pos Position, format string, args ...interface{}) error {
	return &ParseError{Pos: pos, Input: p.lex.input, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseFile(ast *manifestAST) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokEOF:
			return nil
		case tokNewline:
			continue
		case tokIndent:
			return p.parseErrorf(tok.pos, "unexpected indent")
		case tokRule:
			r, err := p.parseRule(tok.pos)
			if err != nil {
				return err
			}
			ast.Statements = append(ast.Statements, r)
		case tokBuild:
			b, err := p.parseBuild(tok.pos)
			if err != nil {
				return err
			}
			ast.Statements = append(ast.Statements, b)
		case tokDefault:
			d, err := p.parseDefault(tok.pos)
			if err != nil {
				return err
			}
			ast.Statements = append(ast.Statements, d)
		case tokInclude:
			path, err := p.parsePathStmt(tok.pos)
			if err != nil {
				return err
			}
			ast.Statements = append(ast.Statements, &includeStmt{Path: path, Pos: tok.pos})
		case tokSubninja:
			path, err := p.parsePathStmt(tok.pos)
			if err != nil {
				return err
			}
			ast.Statements = append(ast.Statements, &subninjaStmt{Path: path, Pos: tok.pos})
		case tokIdent:
			b, err := p.parseBinding(tok)
			if err != nil {
				return err
			}
			ast.Statements = append(ast.Statements, b)
		default:
			return p.parseErrorf(tok.pos, "unexpected %s", tok.kind)
		}
	}
}

func (p *parser) expectLineEnd() error {
	// A pushed-back token means the lexer is already past it (possibly at
	// the start of the next line), so skipping spaces here would swallow
	// that line's indentation.
	if p.pushed == nil {
		p.lex.skipInlineSpaces()
	}
	tok, err := p.next()
	if err != nil {
		return err
	}
	if tok.kind != tokNewline && tok.kind != tokEOF {
		return p.parseErrorf(tok.pos, "expected newline, got %s", tok.kind)
	}
	return nil
}

func (p *parser) parsePathStmt(pos Position) (EvalString, error) {
	p.lex.skipInlineSpaces()
	val, err := p.lex.ReadEvalString(true)
	if err != nil {
		return EvalString{}, err
	}
	if val.Empty() {
		return EvalString{}, p.parseErrorf(pos, "expected a path")
	}
	if err := p.expectLineEnd(); err != nil {
		return EvalString{}, err
	}
	return val, nil
}

func (p *parser) parseBinding(nameTok token) (*bindingStmt, error) {
	p.lex.skipInlineSpaces()
	eq, err := p.next()
	if err != nil {
		return nil, err
	}
	if eq.kind != tokEquals {
		return nil, p.parseErrorf(eq.pos, "expected '=', got %s", eq.kind)
	}
	p.lex.skipInlineSpaces()
	val, err := p.lex.ReadEvalString(false)
	if err != nil {
		return nil, err
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	return &bindingStmt{Name: nameTok.text, Value: val, Pos: nameTok.pos}, nil
}

// parseIndentedBindings consumes zero or more `  name = value` lines
// following a `rule` or `build` header, stopping (and pushing back
// the token that ended it) at the first non-indented line.
func (p *parser) parseIndentedBindings() ([]*bindingStmt, error) {
	var out []*bindingStmt
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokIndent {
			p.unread(tok)
			return out, nil
		}
		nameTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if nameTok.kind != tokIdent {
			return nil, p.parseErrorf(nameTok.pos, "expected variable name, got %s", nameTok.kind)
		}
		if nameTok.text == "in" || nameTok.text == "out" {
			return nil, p.parseErrorf(nameTok.pos, "%q is a reserved name and cannot be bound by a rule or build edge", nameTok.text)
		}
		b, err := p.parseBinding(nameTok)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
}

func (p *parser) parseRule(pos Position) (*ruleStmt, error) {
	nameTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if nameTok.kind != tokIdent {
		return nil, p.parseErrorf(nameTok.pos, "expected rule name, got %s", nameTok.kind)
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	bindings, err := p.parseIndentedBindings()
	if err != nil {
		return nil, err
	}
	m := make(map[string]EvalString, len(bindings))
	for _, b := range bindings {
		m[b.Name] = b.Value
	}
	if _, ok := m["command"]; !ok {
		return nil, p.parseErrorf(pos, "rule %q is missing 'command'", nameTok.text)
	}
	return &ruleStmt{Name: nameTok.text, Bindings: m, Pos: pos}, nil
}

// parsePathList reads a whitespace-separated run of paths, stopping
// at an unescaped newline/EOF or '|'. stopAtColon additionally stops
// the list at ':' (used for the output lists, which end at the ':'
// before the rule name).
func (p *parser) parsePathList(stopAtColon bool) ([]EvalString, error) {
	var out []EvalString
	for {
		p.lex.skipInlineSpaces()
		if p.lex.atLineEnd() || p.lex.peek() == '|' || (stopAtColon && p.lex.peek() == ':') {
			break
		}
		val, err := p.lex.ReadEvalString(true)
		if err != nil {
			return nil, err
		}
		if val.Empty() {
			break
		}
		out = append(out, val)
	}
	return out, nil
}

func (p *parser) parseBuild(pos Position) (*buildStmt, error) {
	outs, err := p.parsePathList(true)
	if err != nil {
		return nil, err
	}
	if len(outs) == 0 {
		return nil, p.parseErrorf(pos, "expected at least one output")
	}

	var implicitOuts []EvalString
	p.lex.skipInlineSpaces()
	if p.lex.peek() == '|' {
		pipeTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if pipeTok.kind == tokPipe2 {
			return nil, p.parseErrorf(pipeTok.pos, "'||' is not valid among outputs")
		}
		implicitOuts, err = p.parsePathList(true)
		if err != nil {
			return nil, err
		}
		if len(implicitOuts) == 0 {
			return nil, p.parseErrorf(pipeTok.pos, "expected at least one implicit output after '|'")
		}
	}

	p.lex.skipInlineSpaces()
	colonTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if colonTok.kind != tokColon {
		return nil, p.parseErrorf(colonTok.pos, "expected ':', got %s", colonTok.kind)
	}

	ruleName, rulePos, err := p.lex.readRuleName()
	if err != nil {
		return nil, err
	}

	ins, err := p.parsePathList(false)
	if err != nil {
		return nil, err
	}

	var implicit []EvalString
	p.lex.skipInlineSpaces()
	if p.lex.peek() == '|' {
		pipeTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if pipeTok.kind == tokPipe2 {
			p.unread(pipeTok)
		} else {
			implicit, err = p.parsePathList(false)
			if err != nil {
				return nil, err
			}
			if len(implicit) == 0 {
				return nil, p.parseErrorf(pipeTok.pos, "expected at least one implicit input after '|'")
			}
		}
	}

	// Order-only inputs (`|| PATHS...`) parse but are discarded:
	// order-only scheduling is a documented non-goal, so they never
	// reach the resolved edge. A possible '||' may already sit in
	// p.pushed (from the implicit-input check above pushing one back),
	// so this looks at the next token rather than re-peeking raw
	// lexer bytes, which would have already been consumed past it.
	p.lex.skipInlineSpaces()
	orderOnlyTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if orderOnlyTok.kind == tokPipe2 {
		if _, err := p.parsePathList(false); err != nil {
			return nil, err
		}
	} else {
		p.unread(orderOnlyTok)
	}

	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	bindings, err := p.parseIndentedBindings()
	if err != nil {
		return nil, err
	}
	return &buildStmt{
		Outputs:         outs,
		ImplicitOutputs: implicitOuts,
		Rule:            ruleName,
		RulePos:         rulePos,
		Inputs:          ins,
		Implicit:        implicit,
		Bindings:        bindings,
		Pos:             pos,
	}, nil
}

func (p *parser) parseDefault(pos Position) (*defaultStmt, error) {
	var targets []EvalString
	for {
		p.lex.skipInlineSpaces()
		if p.lex.atLineEnd() {
			break
		}
		val, err := p.lex.ReadEvalString(true)
		if err != nil {
			return nil, err
		}
		if val.Empty() {
			break
		}
		targets = append(targets, val)
	}
	if len(targets) == 0 {
		return nil, p.parseErrorf(pos, "expected at least one default target")
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	return &defaultStmt{Targets: targets, Pos: pos}, nil
}
