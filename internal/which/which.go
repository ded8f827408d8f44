// SPDX-License-Identifier: MPL-2.0

package which

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/hostprobe/hostprobe/internal/hostenv"
	"github.com/hostprobe/hostprobe/internal/transport"
)

type (
	// Filter accepts or rejects a candidate path that otherwise qualifies as an
	// executable. With concurrency above one it may be called from several
	// goroutines at once.
	Filter func(path string) bool

	// Option configures a Resolver.
	Option func(*Resolver)

	// SearchOption configures a single Where or Which call.
	SearchOption func(*search)

	// Resolver finds executables on one target.
	Resolver struct {
		backend     transport.Backend
		env         hostenv.Environment
		logger      *log.Logger
		concurrency int
		extraPath   any
	}

	search struct {
		extraPath any
		hasExtra  bool
		filter    Filter
	}
)

// WithLogger sets the logger for rejected candidates. The default discards.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConcurrency sets how many candidates are checked at once. Values below
// one are treated as one. Results are ordered the same way regardless.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		r.concurrency = max(n, 1)
	}
}

// WithDefaultExtraPath sets the extra path used by calls that do not pass
// WithExtraPath. See NormalizeExtraPath for the accepted forms.
func WithDefaultExtraPath(extra any) Option {
	return func(r *Resolver) {
		r.extraPath = extra
	}
}

// WithExtraPath appends directories to the search path for one call,
// replacing the resolver default. A nil extra path keeps the default. See
// NormalizeExtraPath for the accepted forms.
func WithExtraPath(extra any) SearchOption {
	return func(s *search) {
		if extra == nil {
			return
		}
		s.extraPath = extra
		s.hasExtra = true
	}
}

// WithFilter restricts matches to paths accepted by f.
func WithFilter(f Filter) SearchOption {
	return func(s *search) {
		s.filter = f
	}
}

// New creates a Resolver for the target reached through backend whose PATH is
// read from env. A nil env reads the process environment.
func New(backend transport.Backend, env hostenv.Environment, opts ...Option) *Resolver {
	if env == nil {
		env = hostenv.Process{}
	}
	r := &Resolver{
		backend:     backend,
		env:         env,
		logger:      log.New(io.Discard),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchPaths returns the directories a call with opts would search, in
// order: the target PATH followed by the extra path, keeping the first
// occurrence of each directory.
func (r *Resolver) SearchPaths(opts ...SearchOption) []string {
	return r.searchPaths(r.newSearch(opts))
}

// Where returns every match for every command. Commands are searched in the
// given order and, within a command, directories in search path order.
// Repeated commands are searched again and duplicate matches are kept.
func (r *Resolver) Where(ctx context.Context, cmds []string, opts ...SearchOption) []string {
	s := r.newSearch(opts)
	dirs := r.searchPaths(s)

	candidates := make([]string, 0, len(cmds)*len(dirs))
	for _, cmd := range cmds {
		for _, dir := range dirs {
			candidates = append(candidates, transport.Join(r.backend, dir, cmd))
		}
	}

	ok := r.check(ctx, candidates, s.filter)

	matches := []string{}
	for i, path := range candidates {
		if ok[i] {
			matches = append(matches, path)
		}
	}
	return matches
}

// Which returns the first match of Where, or false when nothing matches.
func (r *Resolver) Which(ctx context.Context, cmds []string, opts ...SearchOption) (string, bool) {
	if r.concurrency > 1 {
		matches := r.Where(ctx, cmds, opts...)
		if len(matches) == 0 {
			return "", false
		}
		return matches[0], true
	}

	// Serially there is no need to test candidates past the first match.
	s := r.newSearch(opts)
	dirs := r.searchPaths(s)
	for _, cmd := range cmds {
		for _, dir := range dirs {
			path := transport.Join(r.backend, dir, cmd)
			if r.matches(ctx, path, s.filter) {
				return path, true
			}
		}
	}
	return "", false
}

func (r *Resolver) newSearch(opts []SearchOption) *search {
	s := &search{}
	for _, opt := range opts {
		opt(s)
	}
	if !s.hasExtra {
		s.extraPath = r.extraPath
	}
	return s
}

func (r *Resolver) searchPaths(s *search) []string {
	sep := r.backend.PathListSeparator()
	paths := hostenv.SearchPath(r.env, sep)
	paths = append(paths, NormalizeExtraPath(s.extraPath)...)
	return dedupe(paths)
}

// check tests every candidate, writing each verdict into its own slot.
func (r *Resolver) check(ctx context.Context, candidates []string, filter Filter) []bool {
	ok := make([]bool, len(candidates))
	if r.concurrency <= 1 {
		for i, path := range candidates {
			ok[i] = r.matches(ctx, path, filter)
		}
		return ok
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, path := range candidates {
		g.Go(func() error {
			ok[i] = r.matches(ctx, path, filter)
			return nil
		})
	}
	_ = g.Wait()
	return ok
}

func (r *Resolver) matches(ctx context.Context, path string, filter Filter) bool {
	fi, err := r.backend.Stat(ctx, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("skipping candidate", "path", path, "backend", r.backend.Name(), "error", err)
		}
		return false
	}
	if fi.IsDir() || !fi.OwnerExecutable() {
		return false
	}
	return filter == nil || filter(path)
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
