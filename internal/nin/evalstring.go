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

import "strings"

// evalPieceKind distinguishes a literal run of text from a `$name`
// variable reference within an unexpanded value.
type evalPieceKind int

const (
	pieceRaw evalPieceKind = iota
	pieceVar
)

// evalPiece is one element of a parsed but unexpanded value: either a
// literal run of text or the name of a variable to substitute.
type evalPiece struct {
	kind evalPieceKind
	text string
}

// EvalString is a value as written in a manifest, split into literal
// and variable-reference pieces, not yet evaluated against any scope.
// Parsing `$`-escapes happens once, at lex time; evaluation against a
// scope can happen many times (e.g. once per edge sharing a rule).
type EvalString struct {
	pieces []evalPiece
}

// addText appends a literal run, merging it into the previous piece
// when possible to keep Unparse's output compact.
func (e *EvalString) addText(s string) {
	if s == "" {
		return
	}
	if n := len(e.pieces); n > 0 && e.pieces[n-1].kind == pieceRaw {
		e.pieces[n-1].text += s
		return
	}
	e.pieces = append(e.pieces, evalPiece{kind: pieceRaw, text: s})
}

// addVar appends a variable reference.
func (e *EvalString) addVar(name string) {
	e.pieces = append(e.pieces, evalPiece{kind: pieceVar, text: name})
}

// Empty reports whether the value has no content at all.
func (e *EvalString) Empty() bool {
	return len(e.pieces) == 0
}

// Evaluate substitutes every variable reference by looking it up in
// scope, concatenating the result.
func (e *EvalString) Evaluate(scope *Scope) string {
	if e.Empty() {
		return ""
	}
	var b strings.Builder
	for _, p := range e.pieces {
		switch p.kind {
		case pieceRaw:
			b.WriteString(p.text)
		case pieceVar:
			b.WriteString(scope.Lookup(p.text))
		}
	}
	return b.String()
}

// Unparse renders the value back to manifest source syntax, escaping
// `$` so that re-lexing it reproduces the same pieces. Used by tests
// to check the lexer/serializer round-trip.
func (e *EvalString) Unparse() string {
	var b strings.Builder
	for _, p := range e.pieces {
		switch p.kind {
		case pieceRaw:
			for _, r := range p.text {
				if r == '$' || r == ' ' || r == ':' {
					b.WriteByte('$')
				}
				b.WriteRune(r)
			}
		case pieceVar:
			b.WriteString("${")
			b.WriteString(p.text)
			b.WriteByte('}')
		}
	}
	return b.String()
}
