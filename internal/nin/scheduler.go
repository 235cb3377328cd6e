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
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// outputTime tracks the minimum of a set of timestamps.
type outputTime struct {
	t   time.Time
	set bool
}

func (o *outputTime) observe(t time.Time) {
	if !o.set || t.Before(o.t) {
		o.t = t
		o.set = true
	}
}

// inputTime tracks the maximum of a set of timestamps.
type inputTime struct {
	t   time.Time
	set bool
}

func (i *inputTime) observe(t time.Time) {
	if !i.set || t.After(i.t) {
		i.t = t
		i.set = true
	}
}

// Scheduler walks a Graph from a set of requested targets, runs every
// stale edge whose inputs are ready, and fans work out across a
// bounded pool of goroutines. There is no job-pool concept (each edge
// costs one slot), no keep-going mode (the first failure stops new
// dispatch), and no cycle detection: edges on a cycle never become
// ready, so Build stops once nothing else is runnable and leaves them
// unbuilt without reporting an error.
type Scheduler struct {
	graph  *Graph
	disk   DiskInterface
	runner CommandRunner
	jobs   int
	log    *logrus.Logger
}

// NewScheduler builds a Scheduler. jobs <= 0 is treated as 1. A nil
// log defaults to logrus's standard logger.
func NewScheduler(graph *Graph, disk DiskInterface, runner CommandRunner, jobs int, log *logrus.Logger) *Scheduler {
	if jobs <= 0 {
		jobs = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{graph: graph, disk: disk, runner: runner, jobs: jobs, log: log}
}

type edgePlan struct {
	edge *ResolvedEdge
}

// Build runs everything transitively required to produce targets. It
// returns the first error encountered (an unknown target, a missing
// source input, or a failed command); edges already dispatched when a
// failure occurs are allowed to finish, but no further edge is
// started afterward.
func (s *Scheduler) Build(ctx context.Context, targets []string) error {
	edgeSet, order, err := s.plan(targets)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return nil
	}

	pending := make(map[EdgeID]int, len(order))
	for id, ep := range edgeSet {
		count := 0
		for _, in := range ep.edge.AllInputs() {
			if prod, ok := s.graph.Producer(in); ok {
				if _, inSet := edgeSet[prod]; inSet {
					count++
				}
			}
		}
		pending[id] = count
	}

	var ready []EdgeID
	for _, id := range order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	type jobResult struct {
		id  EdgeID
		err error
	}

	jobCh := make(chan EdgeID)
	resultCh := make(chan jobResult)
	var wg sync.WaitGroup
	wg.Add(s.jobs)
	for i := 0; i < s.jobs; i++ {
		go func() {
			defer wg.Done()
			for id := range jobCh {
				_, err := s.execute(ctx, id, edgeSet[id].edge)
				resultCh <- jobResult{id: id, err: err}
			}
		}()
	}

	completed := 0
	inFlight := 0
	draining := false
	var firstErr error

	for completed < len(order) {
		var sendCh chan EdgeID
		var sendVal EdgeID
		if !draining && len(ready) > 0 {
			sendCh = jobCh
			sendVal = ready[0]
		}
		if sendCh == nil && inFlight == 0 {
			// Nothing left to dispatch and nothing outstanding: either a
			// failure cut the plan short, or the graph stranded some
			// edge that never became ready (only possible with a cycle,
			// itself a documented non-goal).
			break
		}
		select {
		case sendCh <- sendVal:
			ready = ready[1:]
			inFlight++
		case res := <-resultCh:
			inFlight--
			completed++
			if res.err != nil {
				s.log.WithError(res.err).Error("build edge failed")
				if !draining {
					draining = true
					firstErr = res.err
				}
				continue
			}
			s.advance(res.id, edgeSet, pending, &ready)
		}
	}
	close(jobCh)
	wg.Wait()
	return firstErr
}

// plan walks backward from targets, collecting every edge
// transitively required to produce them, in a deterministic
// discovery order. A target that names neither an edge output nor any
// edge's input is an UnknownTargetError.
func (s *Scheduler) plan(targets []string) (map[EdgeID]*edgePlan, []EdgeID, error) {
	edgeSet := map[EdgeID]*edgePlan{}
	var order []EdgeID
	visitedPath := map[string]bool{}

	var visit func(path string) error
	visit = func(path string) error {
		if visitedPath[path] {
			return nil
		}
		visitedPath[path] = true
		id, ok := s.graph.Producer(path)
		if !ok {
			return nil
		}
		if _, already := edgeSet[id]; already {
			return nil
		}
		e := s.graph.Edge(id)
		edgeSet[id] = &edgePlan{edge: e}
		order = append(order, id)
		for _, in := range e.AllInputs() {
			if err := visit(in); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range targets {
		if !s.graph.KnownPath(t) {
			return nil, nil, &UnknownTargetError{Target: t, Suggestion: suggestName(t, s.graph.AllPaths())}
		}
		if err := visit(t); err != nil {
			return nil, nil, err
		}
	}
	return edgeSet, order, nil
}

// advance decrements the pending counter of every edge (within the
// current plan) that consumes one of id's outputs, queuing any that
// reach zero. A dependent edge that uses the same producer more than
// once (e.g. twice in its input list) is decremented once per
// occurrence, matching how pending counters were initialized.
func (s *Scheduler) advance(id EdgeID, edgeSet map[EdgeID]*edgePlan, pending map[EdgeID]int, ready *[]EdgeID) {
	e := edgeSet[id].edge
	for _, out := range e.AllOutputs() {
		for _, dep := range s.graph.Dependents(out) {
			if _, inSet := edgeSet[dep]; !inSet {
				continue
			}
			pending[dep]--
			if pending[dep] == 0 {
				*ready = append(*ready, dep)
			}
		}
	}
}

// execute checks one edge for staleness and, if stale, dispatches its
// command. A fresh (non-stale) edge is skipped without being run.
func (s *Scheduler) execute(ctx context.Context, id EdgeID, e *ResolvedEdge) (ran bool, err error) {
	stale, err := s.isStale(e)
	if err != nil {
		return false, err
	}
	if !stale {
		s.log.WithField("edge", int(id)).Debug("up to date, skipping")
		return false, nil
	}
	s.log.WithFields(logrus.Fields{"edge": int(id), "command": e.Command}).Debug("running command")
	res, runErr := s.runner.Run(ctx, e.Command)
	if runErr != nil {
		return true, &CommandFailedError{Outputs: e.Outputs, Command: e.Command, Cause: runErr}
	}
	if res.ExitCode != 0 {
		return true, &CommandFailedError{Outputs: e.Outputs, Command: e.Command, ExitCode: res.ExitCode}
	}
	return true, nil
}

// isStale compares the minimum output mtime (a missing output counts
// as stale) against the maximum input mtime (a missing, non-produced
// input is a MissingSourceError, since the graph guarantees every
// produced input's edge ran first).
func (s *Scheduler) isStale(e *ResolvedEdge) (bool, error) {
	var outMtime outputTime
	for _, out := range e.AllOutputs() {
		mt, exists, err := s.disk.Stat(out)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
		outMtime.observe(mt)
	}

	var inMtime inputTime
	for _, in := range e.AllInputs() {
		mt, exists, err := s.disk.Stat(in)
		if err != nil {
			return false, err
		}
		if !exists {
			if _, produced := s.graph.Producer(in); !produced {
				return false, &MissingSourceError{Path: in}
			}
			continue
		}
		inMtime.observe(mt)
	}

	return inMtime.set && outMtime.set && inMtime.t.After(outMtime.t), nil
}
