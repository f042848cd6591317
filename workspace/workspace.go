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

// Package workspace manages the parse trees of many open documents.
//
// Each document has its own lock, so edits and parses of one document are
// serialized while different documents are parsed concurrently. Parsing is
// lazy: edits are recorded, and the tree is brought up to date the next time
// someone asks for a [Snapshot]. Snapshots are immutable and may be shared
// freely between goroutines.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tidwall/btree"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/bufbuild/oak/internal/logging"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/parser"
	"github.com/bufbuild/oak/session"
	"github.com/bufbuild/oak/source"
)

var (
	// ErrNotOpen is returned for operations on a document that is not open.
	ErrNotOpen = errors.New("workspace: document is not open")

	// ErrInvalidEdit is returned for edits that are out of range or overlap.
	ErrInvalidEdit = errors.New("workspace: invalid edit")
)

// Snapshot is the state of a document at some version.
type Snapshot[T language.TokenKind, E language.ElementKind] struct {
	URI string
	// Incremented by every Open or Edit of the document.
	Version int
	File    *source.File

	*parser.Output[T, E]
}

// Workspace is a set of open documents in one language. It is safe for
// concurrent use.
type Workspace[T language.TokenKind, E language.ElementKind] struct {
	parser      parser.Parser[T, E]
	log         *log.Logger
	parallelism int

	mu    sync.RWMutex
	docs  btree.Map[string, *document[T, E]]
	slots uint64

	flights singleflight.Group
}

// Option configures a [Workspace].
type Option func(*options)

type options struct {
	log         *log.Logger
	parallelism int
}

// WithLogger sets the logger for workspace events.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.log = logger }
}

// WithParallelism bounds how many documents [Workspace.ParseAll] parses at
// once. Zero or less means GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// New returns an empty workspace that parses documents with p.
func New[T language.TokenKind, E language.ElementKind](p parser.Parser[T, E], opts ...Option) *Workspace[T, E] {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parallelism <= 0 {
		o.parallelism = runtime.GOMAXPROCS(0)
	}
	return &Workspace[T, E]{parser: p, log: o.log, parallelism: o.parallelism}
}

// document is a workspace's slot for one open document.
type document[T language.TokenKind, E language.ElementKind] struct {
	mu sync.Mutex

	// slot distinguishes this document from others opened under the same
	// URI before it was last closed; versions restart with each slot.
	slot    uint64
	uri     string
	file    *source.File
	version int

	// Edits made since the last parse, relative to the text of that parse.
	// Only meaningful if the document has been parsed and not replaced since.
	pending     []source.TextEdit
	incremental bool

	session *session.Session[T, E]
	latest  *Snapshot[T, E]
}

// Open opens a document with the given text, replacing its contents if it is
// already open. Returns the new version.
func (w *Workspace[T, E]) Open(uri, text string) int {
	w.mu.Lock()
	doc, ok := w.docs.Get(uri)
	if !ok {
		w.slots++
		doc = &document[T, E]{
			slot:    w.slots,
			uri:     uri,
			session: session.New(w.parser, session.WithName(uri), session.WithLogger(w.log)),
		}
		w.docs.Set(uri, doc)
	}
	w.mu.Unlock()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	doc.file = source.NewFile(uri, text)
	doc.version++
	doc.pending = nil
	doc.incremental = false

	w.log.Debug("opened", logging.FieldURI, uri, "version", doc.version, "reopened", ok)
	return doc.version
}

// Edit applies a batch of edits to an open document. Offsets in edits refer
// to the text before any of them is applied. Returns the new version.
func (w *Workspace[T, E]) Edit(uri string, edits ...source.TextEdit) (int, error) {
	doc, err := w.document(uri)
	if err != nil {
		return 0, err
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	if err := validate(edits, doc.file.Len()); err != nil {
		return doc.version, err
	}

	// Only one batch of edits can be pending, because the next batch is
	// relative to the text after the first. Parse to catch up; if that
	// fails, the next parse starts over from the full text.
	if doc.incremental && len(doc.pending) > 0 {
		if _, err := doc.parse(); err != nil {
			w.log.Debug("dropping pending edits", logging.FieldURI, uri, "version", doc.version, logging.FieldError, err)
			doc.incremental = false
			doc.pending = nil
		}
	}

	doc.file = doc.file.Apply(edits...)
	doc.version++
	if doc.incremental {
		doc.pending = edits
	}

	w.log.Debug("edited", logging.FieldURI, uri, "version", doc.version, logging.FieldEdits, len(edits))
	return doc.version, nil
}

// Close closes a document. Returns false if it was not open.
func (w *Workspace[T, E]) Close(uri string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.docs.Delete(uri)
	if ok {
		w.log.Debug("closed", logging.FieldURI, uri)
	}
	return ok
}

// URIs returns the URIs of all open documents, in sorted order.
func (w *Workspace[T, E]) URIs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	uris := make([]string, 0, w.docs.Len())
	w.docs.Scan(func(uri string, _ *document[T, E]) bool {
		uris = append(uris, uri)
		return true
	})
	return uris
}

// Len returns the number of open documents.
func (w *Workspace[T, E]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs.Len()
}

// Snapshot returns the current state of a document, parsing it if it has
// changed since it was last parsed.
//
// Concurrent requests for the same version of a document share one parse.
func (w *Workspace[T, E]) Snapshot(ctx context.Context, uri string) (*Snapshot[T, E], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := w.document(uri)
	if err != nil {
		return nil, err
	}

	doc.mu.Lock()
	key := uri + "#" + strconv.FormatUint(doc.slot, 10) + "@" + strconv.Itoa(doc.version)
	doc.mu.Unlock()

	v, err, _ := w.flights.Do(key, func() (any, error) {
		doc.mu.Lock()
		defer doc.mu.Unlock()
		return doc.parse()
	})
	if err != nil {
		return nil, fmt.Errorf("workspace: parsing %s: %w", uri, err)
	}
	return v.(*Snapshot[T, E]), nil
}

// ParseAll brings the given documents up to date, parsing up to the
// configured parallelism at once, and returns their snapshots in the same
// order. If uris is empty, every open document is parsed.
//
// Cancelling ctx stops documents that have not started yet from being
// parsed; a parse that has started runs to completion.
func (w *Workspace[T, E]) ParseAll(ctx context.Context, uris ...string) ([]*Snapshot[T, E], error) {
	if len(uris) == 0 {
		uris = w.URIs()
	}

	snapshots := make([]*Snapshot[T, E], len(uris))
	sem := semaphore.NewWeighted(int64(w.parallelism))
	group, gctx := errgroup.WithContext(ctx)
	for i, uri := range uris {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		group.Go(func() error {
			defer sem.Release(1)
			snap, err := w.Snapshot(gctx, uri)
			snapshots[i] = snap
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return snapshots, err
	}
	// The group's context is done once Wait returns; only the caller's
	// cancellation matters here.
	if err := ctx.Err(); err != nil {
		return snapshots, err
	}

	w.log.Debug("parsed all", logging.FieldDocuments, len(uris), logging.FieldParallel, w.parallelism)
	return snapshots, nil
}

func (w *Workspace[T, E]) document(uri string) (*document[T, E], error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, uri)
	}
	return doc, nil
}

// parse brings the document's snapshot up to date. doc.mu must be held.
func (doc *document[T, E]) parse() (*Snapshot[T, E], error) {
	if doc.latest != nil && doc.latest.Version == doc.version {
		return doc.latest, nil
	}

	var edits []source.TextEdit
	if doc.incremental {
		edits = doc.pending
	}
	out, err := doc.session.Parse(doc.file, edits)
	if err != nil {
		return nil, err
	}

	doc.pending = nil
	doc.incremental = true
	doc.latest = &Snapshot[T, E]{
		URI:     doc.uri,
		Version: doc.version,
		File:    doc.file,
		Output:  out,
	}
	return doc.latest, nil
}

// validate checks that edits are in range and do not overlap.
func validate(edits []source.TextEdit, length int) error {
	sorted := source.SortEdits(edits)
	prev := 0
	for _, e := range sorted {
		if e.Start < prev || e.End < e.Start || e.End > length {
			return fmt.Errorf("%w: %v in a document of length %d", ErrInvalidEdit, e, length)
		}
		prev = e.End
	}
	return nil
}
