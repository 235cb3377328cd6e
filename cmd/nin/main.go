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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nbuild/nin/internal/nin"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		manifestPath string
		jobs         int
		dryRun       bool
		verbose      bool
	)

	log := logrus.StandardLogger()

	cmd := &cobra.Command{
		Use:           "nin [targets...]",
		Short:         "A small Ninja-compatible build graph engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			manifest := nin.DiscoverManifest(dir, manifestPath)

			resolver := nin.NewResolver(nin.NewOSManifestReader(), log)
			return nin.Build(resolver, nin.RealDiskInterface{}, manifest, args, nin.BuildOptions{
				Jobs:   jobs,
				DryRun: dryRun,
			})
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "file", "f", "", "build manifest to load (default build.ninja)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "maximum number of concurrent jobs")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would run without executing any command")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log scheduling decisions and command invocations")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "nin:", err)
		return 1
	}
	return 0
}
