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

package workspace_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/oak/internal/calc"
	"github.com/bufbuild/oak/parser"
	"github.com/bufbuild/oak/source"
	"github.com/bufbuild/oak/workspace"
)

func newWorkspace(opts ...workspace.Option) *workspace.Workspace[calc.Token, calc.Element] {
	return workspace.New(calc.NewLanguage(calc.Options{}).Parser(), opts...)
}

func TestOpenClose(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	w := newWorkspace()
	assert.Equal(t, 1, w.Open("b.calc", "1;"))
	assert.Equal(t, 1, w.Open("a.calc", "2;"))
	assert.Equal(t, []string{"a.calc", "b.calc"}, w.URIs())
	assert.Equal(t, 2, w.Len())

	snap, err := w.Snapshot(ctx, "a.calc")
	require.NoError(t, err)
	assert.Equal(t, "a.calc", snap.URI)
	assert.Equal(t, 1, snap.Version)
	assert.Equal(t, "2;", snap.File.Text())
	assert.Equal(t, 0, snap.Report.Len())

	// Reopening replaces the text.
	assert.Equal(t, 2, w.Open("a.calc", "3 +;"))
	snap, err = w.Snapshot(ctx, "a.calc")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)
	assert.Positive(t, snap.Report.Len())

	assert.True(t, w.Close("a.calc"))
	assert.False(t, w.Close("a.calc"))
	_, err = w.Snapshot(ctx, "a.calc")
	require.ErrorIs(t, err, workspace.ErrNotOpen)
	_, err = w.Edit("a.calc", source.TextEdit{Start: 0, End: 0, Text: "x"})
	require.ErrorIs(t, err, workspace.ErrNotOpen)
}

func TestEdit(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	w := newWorkspace()
	w.Open("doc", "let a = 1;\nlet b = 2;\na + b;\n")
	first, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)

	version, err := w.Edit("doc", source.TextEdit{Start: 19, End: 20, Text: "20"})
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	snap, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "let a = 1;\nlet b = 20;\na + b;\n", snap.File.Text())
	assert.Equal(t, 2, snap.Reused)
	assert.Equal(t, 1, snap.Generation)

	// The old snapshot is untouched.
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "let a = 1;\nlet b = 2;\na + b;\n", first.File.Text())

	// Asking again without edits returns the same snapshot.
	again, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Same(t, snap, again)
}

func TestEditWithoutSnapshot(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	w := newWorkspace()
	w.Open("doc", "1;\n2;\n")
	_, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)

	// Several batches between snapshots are each relative to the text
	// produced by the one before.
	_, err = w.Edit("doc", source.TextEdit{Start: 0, End: 1, Text: "10"})
	require.NoError(t, err)
	_, err = w.Edit("doc", source.TextEdit{Start: 4, End: 5, Text: "20"})
	require.NoError(t, err)
	version, err := w.Edit("doc", source.TextEdit{Start: 8, End: 8, Text: "3;\n"})
	require.NoError(t, err)
	assert.Equal(t, 4, version)

	snap, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "10;\n20;\n3;\n", snap.File.Text())
	assert.Equal(t, 0, snap.Report.Len())

	fresh := newWorkspace()
	fresh.Open("doc", snap.File.Text())
	want, err := fresh.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, want.Root.Equal(snap.Root))
}

func TestEditAfterFailedParse(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	w := workspace.New(calc.NewLanguage(calc.Options{RequireRoot: true}).Parser())
	w.Open("doc", "1;")
	_, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)

	_, err = w.Edit("doc", source.TextEdit{Start: 0, End: 2})
	require.NoError(t, err)
	_, err = w.Snapshot(ctx, "doc")
	require.ErrorIs(t, err, parser.ErrEmptySource)

	// The document can still be edited back into shape.
	version, err := w.Edit("doc", source.TextEdit{Start: 0, End: 0, Text: "2;\n"})
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	snap, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Version)
	assert.Equal(t, "2;\n", snap.File.Text())
	assert.Equal(t, 0, snap.Report.Len())

	// And parses incrementally again afterwards.
	_, err = w.Edit("doc", source.TextEdit{Start: 3, End: 3, Text: "3;"})
	require.NoError(t, err)
	snap, err = w.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "2;\n3;", snap.File.Text())
	assert.Positive(t, snap.Reused)
}

// gatedParser blocks while parsing text until release is closed.
type gatedParser struct {
	parser.Parser[calc.Token, calc.Element]
	text             string
	entered, release chan struct{}
}

func (p *gatedParser) Parse(
	src source.Source,
	edits []source.TextEdit,
	cache *parser.Output[calc.Token, calc.Element],
) (parser.Output[calc.Token, calc.Element], error) {
	if src.Text() == p.text {
		close(p.entered)
		<-p.release
	}
	return p.Parser.Parse(src, edits, cache)
}

func TestReopenWhileParsing(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	gate := &gatedParser{
		Parser:  calc.NewLanguage(calc.Options{}).Parser(),
		text:    "1;",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	release := sync.OnceFunc(func() { close(gate.release) })
	defer release()
	time.AfterFunc(5*time.Second, release)

	w := workspace.New[calc.Token, calc.Element](gate)
	w.Open("doc", "1;")
	stale := make(chan *workspace.Snapshot[calc.Token, calc.Element], 1)
	go func() {
		snap, err := w.Snapshot(ctx, "doc")
		assert.NoError(t, err)
		stale <- snap
	}()
	<-gate.entered

	// Same URI and version as the document still being parsed.
	require.True(t, w.Close("doc"))
	assert.Equal(t, 1, w.Open("doc", "2;"))
	snap, err := w.Snapshot(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "2;", snap.File.Text())
	assert.Equal(t, 1, snap.Version)

	release()
	old := <-stale
	require.NotNil(t, old)
	assert.Equal(t, "1;", old.File.Text())
}

func TestInvalidEdit(t *testing.T) {
	t.Parallel()

	w := newWorkspace()
	w.Open("doc", "1;")

	tests := []struct {
		name  string
		edits []source.TextEdit
	}{
		{"past end", []source.TextEdit{{Start: 1, End: 3}}},
		{"backwards", []source.TextEdit{{Start: 2, End: 1}}},
		{"overlap", []source.TextEdit{{Start: 0, End: 2}, {Start: 1, End: 2}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := w.Edit("doc", test.edits...)
			assert.ErrorIs(t, err, workspace.ErrInvalidEdit)
		})
	}
}

func TestParseAll(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	w := newWorkspace(workspace.WithParallelism(2))
	for i := range 10 {
		w.Open(fmt.Sprintf("doc%02d", i), fmt.Sprintf("%d + %d;", i, i))
	}

	snaps, err := w.ParseAll(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 10)
	for i, snap := range snaps {
		assert.Equal(t, fmt.Sprintf("doc%02d", i), snap.URI)
		assert.Equal(t, 0, snap.Report.Len())
	}

	snaps, err = w.ParseAll(ctx, "doc03", "doc01")
	require.NoError(t, err)
	assert.Equal(t, "doc03", snaps[0].URI)
	assert.Equal(t, "doc01", snaps[1].URI)

	_, err = w.ParseAll(ctx, "doc01", "missing")
	assert.ErrorIs(t, err, workspace.ErrNotOpen)
}

func TestParseAllCanceled(t *testing.T) {
	t.Parallel()

	w := newWorkspace()
	w.Open("doc", "1;")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := w.ParseAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, err = w.Snapshot(ctx, "doc")
	require.ErrorIs(t, err, context.Canceled)
}

func TestConcurrent(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	w := newWorkspace()
	const docs, edits = 4, 20

	var wg sync.WaitGroup
	for d := range docs {
		uri := fmt.Sprintf("doc%d", d)
		w.Open(uri, "")
		wg.Add(1)
		go func() {
			defer wg.Done()
			length := 0
			for i := range edits {
				text := fmt.Sprintf("%d;\n", i)
				_, err := w.Edit(uri, source.TextEdit{Start: length, End: length, Text: text})
				assert.NoError(t, err)
				length += len(text)
				if i%3 == 0 {
					_, err := w.Snapshot(ctx, uri)
					assert.NoError(t, err)
				}
			}
		}()
		// Readers racing with the writer.
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range edits {
				snap, err := w.Snapshot(ctx, uri)
				if assert.NoError(t, err) {
					assert.Equal(t, 0, snap.Report.Len())
				}
			}
		}()
	}
	wg.Wait()

	snaps, err := w.ParseAll(ctx)
	require.NoError(t, err)
	for _, snap := range snaps {
		assert.Equal(t, edits+1, snap.Version)
		fresh := newWorkspace()
		fresh.Open(snap.URI, snap.File.Text())
		want, err := fresh.Snapshot(ctx, snap.URI)
		require.NoError(t, err)
		assert.True(t, want.Root.Equal(snap.Root), "%s", snap.URI)
	}
}
