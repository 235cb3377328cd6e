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

// tokenKind identifies a lexical unit produced by the lexer.
type tokenKind int

const (
	tokError tokenKind = iota
	tokBuild
	tokColon
	tokDefault
	tokEquals
	tokIdent
	tokInclude
	tokIndent
	tokNewline
	tokPipe
	tokPipe2
	tokRule
	tokSubninja
	tokEOF
)

// String returns a human-readable form of a token, used in diagnostics.
func (t tokenKind) String() string {
	switch t {
	case tokError:
		return "lexing error"
	case tokBuild:
		return "'build'"
	case tokColon:
		return "':'"
	case tokDefault:
		return "'default'"
	case tokEquals:
		return "'='"
	case tokIdent:
		return "identifier"
	case tokInclude:
		return "'include'"
	case tokIndent:
		return "indent"
	case tokNewline:
		return "newline"
	case tokPipe:
		return "'|'"
	case tokPipe2:
		return "'||'"
	case tokRule:
		return "'rule'"
	case tokSubninja:
		return "'subninja'"
	case tokEOF:
		return "eof"
	}
	return "unknown token"
}

// Position identifies a byte offset within a specific manifest file,
// used to anchor diagnostics.
type Position struct {
	Path   string
	Offset int
}
