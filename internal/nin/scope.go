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

import "sort"

// RuleDef is a named, parameterized command template: `command` and
// `description` hold the edge-level templates. Other keys are stored
// but never bound as variables: a name those templates reference is
// looked up in the edge's scope chain (edge-local bindings, then the
// scope that declared the edge and its ancestors), not among the
// rule's own bindings.
type RuleDef struct {
	Name     string
	Bindings map[string]EvalString
	Pos      Position
}

// Scope is a chain of variable and rule binding frames, walked
// innermost-to-outermost on lookup: edge-local bindings shadow the
// manifest scope that declared the edge, which shadows whatever
// included or outer scope it was built from.
type Scope struct {
	parent *Scope
	vars   map[string]string
	rules  map[string]*RuleDef
}

// newScope creates a child frame of parent (nil for the top level).
func newScope(parent *Scope) *Scope {
	return &Scope{parent: parent, vars: map[string]string{}, rules: map[string]*RuleDef{}}
}

// Lookup resolves name against this scope and its ancestors. An
// undefined name evaluates to the empty string, matching manifest
// semantics where referencing an unset variable is not an error.
func (s *Scope) Lookup(name string) string {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v
		}
	}
	return ""
}

// Bind sets name to value in this scope frame only.
func (s *Scope) Bind(name, value string) {
	s.vars[name] = value
}

// AddRule registers r in this scope frame.
func (s *Scope) AddRule(r *RuleDef) {
	s.rules[r.Name] = r
}

// LookupRule walks the scope chain for a rule definition.
func (s *Scope) LookupRule(name string) *RuleDef {
	for sc := s; sc != nil; sc = sc.parent {
		if r, ok := sc.rules[name]; ok {
			return r
		}
	}
	return nil
}

// RuleNames collects every rule name visible from this scope, sorted,
// for use in "did you mean" diagnostics.
func (s *Scope) RuleNames() []string {
	seen := map[string]bool{}
	var names []string
	for sc := s; sc != nil; sc = sc.parent {
		for name := range sc.rules {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
