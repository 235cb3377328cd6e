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

// bindingStmt is a top-level or edge-local `name = value` line.
type bindingStmt struct {
	Name  string
	Value EvalString
	Pos   Position
}

// ruleStmt is a `rule NAME` block and its indented bindings.
type ruleStmt struct {
	Name     string
	Bindings map[string]EvalString
	Pos      Position
}

// buildStmt is a `build OUTS [| IMPLICIT_OUTS]: RULE INS... [| IMPLICIT_INS] [|| ORDER_ONLY]`
// block and its indented edge-local bindings. Order-only inputs are
// accepted syntactically but dropped during parsing: order-only
// scheduling is a documented non-goal.
type buildStmt struct {
	Outputs         []EvalString
	ImplicitOutputs []EvalString
	Rule            string
	RulePos         Position
	Inputs          []EvalString
	Implicit        []EvalString
	Bindings        []*bindingStmt
	Pos             Position
}

// includeStmt is an `include PATH` line: PATH's bindings and rules
// are injected into the including scope.
type includeStmt struct {
	Path EvalString
	Pos  Position
}

// subninjaStmt is a `subninja PATH` line: PATH is parsed in a fresh
// child scope, isolated from the including manifest.
type subninjaStmt struct {
	Path EvalString
	Pos  Position
}

// defaultStmt is a `default TARGETS...` line.
type defaultStmt struct {
	Targets []EvalString
	Pos     Position
}

// manifestAST is one parsed manifest file: an ordered list of
// statements (order matters, since later bindings can shadow earlier
// ones and rule lookups must see only rules declared before use).
type manifestAST struct {
	Path       string
	Dir        string
	Statements []interface{}
}
