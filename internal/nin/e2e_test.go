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

const e2eManifest = `
rule cc
  command = compile $in -o $out

rule link
  command = link $in -o $out

build a.o: cc a.c
build b.o: cc b.c
build app: link a.o b.o
`

func buildFromManifest(t *testing.T, manifest string, disk *FakeDiskInterface, runner *FakeRunner, targets []string) error {
	t.Helper()
	reader := fakeManifestReader{"/root/build.ninja": manifest}
	resolver := NewResolver(reader, nil)
	graph, defaults, err := resolver.Load("/root/build.ninja")
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = defaults
	}
	sched := NewScheduler(graph, disk, runner, 2, nil)
	return sched.Build(context.Background(), targets)
}

func TestEndToEnd_EmptyManifestBuildsNothing(t *testing.T) {
	disk := NewFakeDiskInterface()
	runner := NewFakeRunner()
	err := buildFromManifest(t, "\n", disk, runner, nil)
	require.NoError(t, err)
	require.Empty(t, runner.Invocations)
}

func TestEndToEnd_FirstBuildCompilesAndLinks(t *testing.T) {
	disk := NewFakeDiskInterface()
	base := time.Unix(100, 0)
	disk.Touch("a.c", base)
	disk.Touch("b.c", base)
	runner := NewFakeRunner()

	require.NoError(t, buildFromManifest(t, e2eManifest, disk, runner, nil))
	require.ElementsMatch(t, []string{"compile a.c -o a.o", "compile b.c -o b.o", "link a.o b.o -o app"}, runner.Invocations)
}

func TestEndToEnd_ChainRebuildOnSourceTouch(t *testing.T) {
	disk := NewFakeDiskInterface()
	base := time.Unix(100, 0)
	disk.Touch("a.c", base)
	disk.Touch("b.c", base)
	disk.Touch("a.o", base.Add(time.Second))
	disk.Touch("b.o", base.Add(time.Second))
	disk.Touch("app", base.Add(2*time.Second))

	runner := NewFakeRunner()
	require.NoError(t, buildFromManifest(t, e2eManifest, disk, runner, nil))
	require.Empty(t, runner.Invocations, "everything already up to date")

	// Touching a.c should cascade: a.o becomes stale, which (since
	// app's recorded mtime predates the rebuilt a.o in a real
	// filesystem) would cascade to app too; here we model that by also
	// setting app's mtime older than a.o's, since the fake runner does
	// not itself mutate disk state.
	disk.Touch("a.c", base.Add(10*time.Second))
	disk.Touch("app", base)

	require.NoError(t, buildFromManifest(t, e2eManifest, disk, runner, nil))
	require.ElementsMatch(t, []string{"compile a.c -o a.o", "link a.o b.o -o app"}, runner.Invocations)
}

func TestEndToEnd_CustomTargetSubset(t *testing.T) {
	disk := NewFakeDiskInterface()
	base := time.Unix(100, 0)
	disk.Touch("a.c", base)
	disk.Touch("b.c", base)
	runner := NewFakeRunner()

	require.NoError(t, buildFromManifest(t, e2eManifest, disk, runner, []string{"a.o"}))
	require.Equal(t, []string{"compile a.c -o a.o"}, runner.Invocations)
}

func TestEndToEnd_FailedCompileStopsLink(t *testing.T) {
	disk := NewFakeDiskInterface()
	base := time.Unix(100, 0)
	disk.Touch("a.c", base)
	disk.Touch("b.c", base)
	runner := NewFakeRunner()
	runner.Scripted["compile a.c -o a.o"] = CommandResult{ExitCode: 2}

	err := buildFromManifest(t, e2eManifest, disk, runner, nil)
	require.Error(t, err)
	var failed *CommandFailedError
	require.ErrorAs(t, err, &failed)
	require.NotContains(t, runner.Invocations, "link a.o b.o -o app")
}
