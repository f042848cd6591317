// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package corpora runs golden tests over a directory of test cases.
//
// Each case is a file in the corpus directory. Running a case produces one
// string per [Golden] output, which is compared to a file next to the case
// whose name is the case's name plus the golden's extension. Missing golden
// files are treated as empty.
//
// Setting the corpus's refresh environment variable to a glob rewrites the
// golden files of every matching case instead of comparing them.
package corpora

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus is a directory of golden test cases.
type Corpus struct {
	// The test data directory, relative to the file that calls [Corpus.Run].
	Root string

	// The file extension of test cases, without a dot, such as "calc".
	Extension string

	// An environment variable holding a glob of cases whose golden files
	// should be rewritten, such as "OAK_REFRESH=**".
	Refresh string

	// The outputs each case produces.
	Outputs []Golden

	// Test runs one case and returns one string per element of Outputs.
	Test func(t *testing.T, c Case) []string
}

// Case is a single test case.
type Case struct {
	// The case's path, relative to the corpus root, with forward slashes.
	Name string
	// The contents of the case file.
	Text string
}

// Golden is an output of a test case.
type Golden struct {
	// Appended to the case's file name to find the golden file, so that for
	// "x.calc" and "tree" the golden file is "x.calc.tree".
	Extension string
}

// Run runs every case in the corpus as a subtest.
func (c Corpus) Run(t *testing.T) {
	t.Helper()

	root := filepath.Join(callerDir(), filepath.FromSlash(c.Root))
	cases, err := doublestar.Glob(os.DirFS(root), "**/*."+c.Extension)
	if err != nil {
		t.Fatalf("corpora: listing %q: %v", root, err)
	}
	if len(cases) == 0 {
		t.Fatalf("corpora: no *.%s files in %q", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: %s=%q is not a valid glob", c.Refresh, refresh)
		}
	}

	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(root, filepath.FromSlash(name))
			text, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("corpora: %v", err)
			}

			got := c.Test(t, Case{Name: name, Text: string(text)})
			if len(got) != len(c.Outputs) {
				t.Fatalf("corpora: test produced %d outputs, want %d", len(got), len(c.Outputs))
			}

			rewrite := refresh != "" && doublestar.MatchUnvalidated(refresh, name)
			for i, out := range c.Outputs {
				golden := path + "." + out.Extension
				if rewrite {
					if err := write(golden, got[i]); err != nil {
						t.Errorf("corpora: %v", err)
					}
					continue
				}

				want, err := os.ReadFile(golden)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("corpora: %v", err)
					continue
				}
				if diff := Diff(string(want), got[i]); diff != "" {
					t.Errorf("%s does not match (-want +got):\n%s", filepath.Base(golden), diff)
				}
			}
		})
	}

	if refresh != "" {
		t.Logf("corpora: rewrote golden files matching %s=%s", c.Refresh, refresh)
		t.Fail()
	}
}

// Diff returns a unified diff from want to got, or "" if they are equal.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return strings.TrimSuffix(diff, "\n")
}

// write writes a golden file, deleting it instead if it would be empty.
func write(path, text string) error {
	if text == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// callerDir returns the directory of the file that called Run.
func callerDir() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("corpora: cannot locate the calling test file")
	}
	return filepath.Dir(file)
}
