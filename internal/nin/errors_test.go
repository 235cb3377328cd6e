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
	"strings"
	"testing"
)

func TestEditDistance_Basics(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"cc", "cc", 0},
		{"cc", "cxx", 2},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}
	for _, c := range cases {
		if got := editDistance(c.a, c.b, true, 0); got != c.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSuggestName_PicksClosest(t *testing.T) {
	got := suggestName("cxx", []string{"cc", "link", "phony"})
	if got != "cc" {
		t.Fatalf("got %q, want cc", got)
	}
}

func TestSuggestName_NoneCloseEnough(t *testing.T) {
	got := suggestName("completely_unrelated_name", []string{"cc", "link"})
	if got != "" {
		t.Fatalf("got %q, want empty suggestion", got)
	}
}

func TestUnknownRuleError_IncludesSuggestion(t *testing.T) {
	err := &UnknownRuleError{Name: "cxx", Suggestion: "cc"}
	if got := err.Error(); !strings.Contains(got, `did you mean "cc"?`) {
		t.Fatalf("message %q does not include the suggestion", got)
	}
}

func TestCommandFailedError_Unwrap(t *testing.T) {
	cause := &MissingSourceError{Path: "a.c"}
	err := &CommandFailedError{Outputs: []string{"a.o"}, Cause: cause}
	if err.Unwrap() != cause {
		t.Fatal("Unwrap should return the spawn cause")
	}
}
