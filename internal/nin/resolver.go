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
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ManifestReader abstracts reading manifest file bytes, so tests can
// substitute an in-memory filesystem for the real one.
type ManifestReader interface {
	ReadFile(path string) ([]byte, error)
}

type osManifestReader struct{}

func (osManifestReader) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// NewOSManifestReader returns a ManifestReader backed by the real
// filesystem.
func NewOSManifestReader() ManifestReader { return osManifestReader{} }

// Resolver loads a root manifest together with everything it
// includes or subninja's, flattening variable scopes, expanding every
// build edge into final command text, and assembling the resulting
// Graph.
type Resolver struct {
	reader ManifestReader
	log    *logrus.Logger
}

// NewResolver builds a Resolver. A nil log defaults to logrus's
// standard logger.
func NewResolver(reader ManifestReader, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{reader: reader, log: log}
}

// loadState carries the bits of resolution state that span a single
// Load call's recursive walk through includes and subninjas.
type loadState struct {
	graph       *Graph
	defaults    []string
	defaultSeen map[string]bool
	outputPos   map[string]Position
}

// Load parses path and everything it transitively includes or
// subninja's, returning the resolved graph and the default target
// list: the evaluated `default` statements if any were declared, else
// every output no edge consumes as an input.
func (r *Resolver) Load(path string) (*Graph, []string, error) {
	st := &loadState{graph: newGraph(), outputPos: map[string]Position{}, defaultSeen: map[string]bool{}}
	top := newScope(nil)
	if err := r.processManifest(path, top, st); err != nil {
		return nil, nil, err
	}
	defaults := st.defaults
	if len(defaults) == 0 {
		defaults = st.graph.RootOutputs()
	} else {
		for _, t := range defaults {
			if !st.graph.KnownPath(t) {
				return nil, nil, &UnknownTargetError{Target: t, Suggestion: suggestName(t, st.graph.AllPaths())}
			}
		}
	}
	return st.graph, defaults, nil
}

// processManifest parses path and walks its statements in order:
// bindings and rules go into scope, includes are loaded into this
// same scope, subninjas are loaded into a fresh child scope, and each
// build edge is expanded and added to st.graph.
func (r *Resolver) processManifest(path string, scope *Scope, st *loadState) error {
	data, err := r.reader.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading manifest %s", path)
	}
	ast, err := parseManifest(path, data)
	if err != nil {
		return err
	}
	r.log.WithField("path", path).Debug("loaded manifest")
	for _, stmt := range ast.Statements {
		switch s := stmt.(type) {
		case *bindingStmt:
			scope.Bind(s.Name, s.Value.Evaluate(scope))
		case *ruleStmt:
			scope.AddRule(&RuleDef{Name: s.Name, Bindings: s.Bindings, Pos: s.Pos})
		case *buildStmt:
			if err := r.resolveBuild(s, scope, st); err != nil {
				return err
			}
		case *defaultStmt:
			for _, t := range s.Targets {
				name := t.Evaluate(scope)
				if st.defaultSeen[name] {
					continue
				}
				st.defaultSeen[name] = true
				st.defaults = append(st.defaults, name)
			}
		case *includeStmt:
			incPath := resolveRelative(ast.Dir, s.Path.Evaluate(scope))
			if err := r.processManifest(incPath, scope, st); err != nil {
				return &IncludeError{Pos: s.Pos, Path: incPath, Cause: err}
			}
		case *subninjaStmt:
			subPath := resolveRelative(ast.Dir, s.Path.Evaluate(scope))
			child := newScope(scope)
			if err := r.processManifest(subPath, child, st); err != nil {
				return &IncludeError{Pos: s.Pos, Path: subPath, Cause: err}
			}
		}
	}
	return nil
}

// resolveBuild expands one build statement into a ResolvedEdge.
// Output, input and implicit paths are evaluated against the
// declaring scope; the command and description templates are
// evaluated last, against a scope that layers edge-local bindings
// (themselves evaluated in declaration order, so later ones can refer
// to earlier ones) over $in/$out, which must already be bound before
// any rule template sees them.
func (r *Resolver) resolveBuild(s *buildStmt, scope *Scope, st *loadState) error {
	outs := evaluateList(s.Outputs, scope)
	implicitOuts := evaluateList(s.ImplicitOutputs, scope)
	ins := evaluateList(s.Inputs, scope)
	implicit := evaluateList(s.Implicit, scope)

	rule := scope.LookupRule(s.Rule)
	if rule == nil {
		return &UnknownRuleError{Pos: s.RulePos, Name: s.Rule, Suggestion: suggestName(s.Rule, scope.RuleNames())}
	}

	// $in/$out are bound before the edge-local bindings loop so that
	// both edge-local values and the rule's own templates can refer to
	// them; parseIndentedBindings rejects a binding literally named
	// "in" or "out", so neither can be shadowed here.
	edgeScope := newScope(scope)
	edgeScope.Bind("in", strings.Join(ins, " "))
	edgeScope.Bind("out", strings.Join(outs, " "))
	for _, b := range s.Bindings {
		edgeScope.Bind(b.Name, b.Value.Evaluate(edgeScope))
	}

	var command string
	if tmpl, ok := rule.Bindings["command"]; ok {
		command = tmpl.Evaluate(edgeScope)
	}
	if command == "" {
		return &MissingCommandError{Rule: s.Rule, Pos: s.Pos}
	}
	var description string
	if tmpl, ok := rule.Bindings["description"]; ok {
		description = tmpl.Evaluate(edgeScope)
	}

	allOuts := outs
	if len(implicitOuts) > 0 {
		allOuts = append(append([]string(nil), outs...), implicitOuts...)
	}
	for _, out := range allOuts {
		if first, ok := st.outputPos[out]; ok {
			return &DuplicateOutputError{Output: out, FirstEdge: first, SecondEdge: s.Pos}
		}
	}
	for _, out := range allOuts {
		st.outputPos[out] = s.Pos
	}

	st.graph.addEdge(&ResolvedEdge{
		Outputs:         outs,
		ImplicitOutputs: implicitOuts,
		Inputs:          ins,
		Implicit:        implicit,
		Rule:            s.Rule,
		Command:         command,
		Description:     description,
		Pos:             s.Pos,
	})
	r.log.WithFields(logrus.Fields{"rule": s.Rule, "outputs": outs}).Debug("resolved build edge")
	return nil
}

func evaluateList(vals []EvalString, scope *Scope) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.Evaluate(scope))
	}
	return out
}

// resolveRelative resolves an include/subninja path relative to the
// including manifest's own directory, per spec.
func resolveRelative(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
