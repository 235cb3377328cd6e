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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chainGraph() *Graph {
	g := newGraph()
	g.addEdge(&ResolvedEdge{Outputs: []string{"a.o"}, Inputs: []string{"a.c"}, Rule: "cc", Command: "build a.o"})
	g.addEdge(&ResolvedEdge{Outputs: []string{"app"}, Inputs: []string{"a.o"}, Rule: "link", Command: "build app"})
	return g
}

func TestScheduler_SkipsUpToDate(t *testing.T) {
	g := chainGraph()
	disk := NewFakeDiskInterface()
	now := time.Unix(1000, 0)
	disk.Touch("a.c", now)
	disk.Touch("a.o", now.Add(time.Second))
	disk.Touch("app", now.Add(2*time.Second))

	runner := NewFakeRunner()
	sched := NewScheduler(g, disk, runner, 2, nil)
	require.NoError(t, sched.Build(context.Background(), []string{"app"}))
	require.Empty(t, runner.Invocations, "nothing should have run, everything is up to date")
}

func TestScheduler_RebuildOnInputTouch(t *testing.T) {
	g := chainGraph()
	disk := NewFakeDiskInterface()
	now := time.Unix(1000, 0)
	disk.Touch("a.c", now.Add(5*time.Second)) // newer than a.o: forces a.o stale
	disk.Touch("a.o", now)
	disk.Touch("app", now.Add(-time.Second)) // older than a.o: forces app stale independent of the fake runner not touching disk

	runner := NewFakeRunner()
	sched := NewScheduler(g, disk, runner, 2, nil)
	require.NoError(t, sched.Build(context.Background(), []string{"app"}))
	require.ElementsMatch(t, []string{"build a.o", "build app"}, runner.Invocations)
}

func TestScheduler_StaleImplicitOutputTriggersBuild(t *testing.T) {
	g := newGraph()
	g.addEdge(&ResolvedEdge{Outputs: []string{"a.o"}, ImplicitOutputs: []string{"a.stamp"}, Inputs: []string{"a.c"}, Rule: "cc", Command: "build a.o"})

	disk := NewFakeDiskInterface()
	now := time.Unix(1000, 0)
	disk.Touch("a.c", now)
	disk.Touch("a.o", now.Add(time.Second))
	// a.stamp, an implicit output, does not exist yet: the edge must
	// still be considered stale even though its explicit output is
	// newer than its input.

	runner := NewFakeRunner()
	sched := NewScheduler(g, disk, runner, 1, nil)
	require.NoError(t, sched.Build(context.Background(), []string{"a.o"}))
	require.Equal(t, []string{"build a.o"}, runner.Invocations)
}

func TestScheduler_MissingOutputTriggersBuild(t *testing.T) {
	g := chainGraph()
	disk := NewFakeDiskInterface()
	disk.Touch("a.c", time.Unix(1, 0))
	disk.Touch("a.o", time.Unix(2, 0))
	// app does not exist yet.

	runner := NewFakeRunner()
	sched := NewScheduler(g, disk, runner, 1, nil)
	require.NoError(t, sched.Build(context.Background(), []string{"app"}))
	require.Equal(t, []string{"build app"}, runner.Invocations)
}

func TestScheduler_UnknownTarget(t *testing.T) {
	g := chainGraph()
	disk := NewFakeDiskInterface()
	sched := NewScheduler(g, disk, NewFakeRunner(), 1, nil)
	err := sched.Build(context.Background(), []string{"nope"})
	require.Error(t, err)
	var target *UnknownTargetError
	require.ErrorAs(t, err, &target)
}

func TestScheduler_MissingSourceInput(t *testing.T) {
	g := chainGraph()
	disk := NewFakeDiskInterface()
	// Outputs already exist so staleness falls through to checking
	// inputs; a.c (a source, not produced by any edge) is never Touch'd.
	disk.Touch("a.o", time.Unix(5, 0))
	disk.Touch("app", time.Unix(6, 0))
	sched := NewScheduler(g, disk, NewFakeRunner(), 1, nil)
	err := sched.Build(context.Background(), []string{"app"})
	require.Error(t, err)
	var missing *MissingSourceError
	require.ErrorAs(t, err, &missing)
}

func TestScheduler_CommandFailureStopsFurtherDispatch(t *testing.T) {
	g := newGraph()
	g.addEdge(&ResolvedEdge{Outputs: []string{"a.o"}, Inputs: []string{"a.c"}, Rule: "cc", Command: "fail-a"})
	g.addEdge(&ResolvedEdge{Outputs: []string{"b.o"}, Inputs: []string{"b.c"}, Rule: "cc", Command: "ok-b"})
	g.addEdge(&ResolvedEdge{Outputs: []string{"app"}, Inputs: []string{"a.o", "b.o"}, Rule: "link", Command: "link-app"})

	disk := NewFakeDiskInterface()
	disk.Touch("a.c", time.Unix(10, 0))
	disk.Touch("b.c", time.Unix(10, 0))

	runner := NewFakeRunner()
	runner.Scripted["fail-a"] = CommandResult{ExitCode: 1}

	sched := NewScheduler(g, disk, runner, 2, nil)
	err := sched.Build(context.Background(), []string{"app"})
	require.Error(t, err)
	var failed *CommandFailedError
	require.ErrorAs(t, err, &failed)
	require.NotContains(t, runner.Invocations, "link-app", "the edge depending on the failed one must never run")
}

func TestScheduler_DryRunNeverInvokesRunner(t *testing.T) {
	g := chainGraph()
	disk := NewFakeDiskInterface()
	disk.Touch("a.c", time.Unix(10, 0))

	runner := NewFakeRunner()
	var asCommandRunner CommandRunner = DryRunRunner{}
	sched := NewScheduler(g, disk, asCommandRunner, 1, nil)
	require.NoError(t, sched.Build(context.Background(), []string{"app"}))
	require.Empty(t, runner.Invocations)
}
