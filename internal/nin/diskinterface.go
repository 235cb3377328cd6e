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
	"sync"
	"time"
)

// DiskInterface abstracts the one filesystem query the scheduler
// needs: a path's modification time, and whether it exists at all.
type DiskInterface interface {
	Stat(path string) (mtime time.Time, exists bool, err error)
}

// RealDiskInterface backs DiskInterface with the actual filesystem.
type RealDiskInterface struct{}

// Stat implements DiskInterface.
func (RealDiskInterface) Stat(path string) (time.Time, bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return fi.ModTime(), true, nil
}

// FakeDiskInterface is an in-memory DiskInterface for tests: paths
// exist only once Touch'd, and Remove drops them again.
type FakeDiskInterface struct {
	mu     sync.Mutex
	mtimes map[string]time.Time
}

// NewFakeDiskInterface returns an empty FakeDiskInterface.
func NewFakeDiskInterface() *FakeDiskInterface {
	return &FakeDiskInterface{mtimes: map[string]time.Time{}}
}

// Stat implements DiskInterface.
func (f *FakeDiskInterface) Stat(path string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mt, ok := f.mtimes[path]
	return mt, ok, nil
}

// Touch records path as existing with modification time t.
func (f *FakeDiskInterface) Touch(path string, t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mtimes[path] = t
}

// Remove records path as no longer existing.
func (f *FakeDiskInterface) Remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.mtimes, path)
}
