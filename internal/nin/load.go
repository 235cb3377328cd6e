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
	"path/filepath"
)

// DefaultManifestName is the manifest filename looked for in dir when
// no override is given.
const DefaultManifestName = "build.ninja"

// DiscoverManifest returns the manifest path to load: override if
// non-empty (resolved relative to dir if it isn't already absolute),
// else DefaultManifestName inside dir.
func DiscoverManifest(dir, override string) string {
	if override == "" {
		return filepath.Join(dir, DefaultManifestName)
	}
	if filepath.IsAbs(override) {
		return override
	}
	return filepath.Join(dir, override)
}

// BuildOptions groups everything Build needs beyond the graph itself.
type BuildOptions struct {
	Jobs   int
	DryRun bool
}

// Build loads manifestPath, resolves targets (or the manifest's
// defaults if targets is empty), and runs the scheduler against disk
// and a real or dry-run command runner. It is the
// single entry point cmd/nin drives.
func Build(resolver *Resolver, disk DiskInterface, manifestPath string, targets []string, opts BuildOptions) error {
	graph, defaults, err := resolver.Load(manifestPath)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = defaults
	}

	var runner CommandRunner
	if opts.DryRun {
		runner = DryRunRunner{}
	} else {
		runner = NewShellRunner()
	}

	sched := NewScheduler(graph, disk, runner, opts.Jobs, nil)
	return sched.Build(context.Background(), targets)
}
