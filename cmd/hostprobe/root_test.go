// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "exit error", err: &ExitError{Code: 2}, want: 2},
		{name: "wrapped exit error", err: errors.Join(errors.New("ctx"), &ExitError{Code: 1}), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Parallel()

	t.Run("negative answer is silent", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderError(&buf, &ExitError{Code: 1}, false, "auto")
		assert.Empty(t, buf.String())
	})

	t.Run("actionable error with guide", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := issue.NewErrorContext().
			WithOperation("open root filesystem").
			WithResource("/srv/image").
			WithIssue(issue.RootFSNotFoundId).
			WithSuggestion("Pass --root <dir>").
			Wrap(errors.New("no such directory")).
			BuildError()
		renderError(&buf, &ExitError{Code: 2, Err: err}, false, "light")

		out := buf.String()
		assert.Contains(t, out, "failed to open root filesystem: /srv/image")
		assert.Contains(t, out, "Pass --root <dir>")
		guide, guideErr := issue.Get(issue.RootFSNotFoundId).Render("light")
		if assert.NoError(t, guideErr) {
			assert.Contains(t, out, guide)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderError(&buf, errors.New("boom"), true, "auto")
		assert.Contains(t, buf.String(), "boom")
	})
}

func TestGuideStyle_FollowsConfig(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(nil)
	assert.Equal(t, "auto", app.guideStyle(), "before any config is loaded")

	cfg := config.DefaultConfig()
	cfg.UI.ColorScheme = config.ColorSchemeLight
	app, _, _ = newTestApp(cfg)
	_, _, err := app.loadConfig(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "light", app.guideStyle())
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	withCause := &ExitError{Code: 2, Err: cause}
	assert.Equal(t, "cause", withCause.Error())
	assert.ErrorIs(t, withCause, cause)

	bare := &ExitError{Code: 1}
	assert.Equal(t, "exit status 1", bare.Error())
	assert.NoError(t, bare.Unwrap())
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{}))
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"which", "where", "classify", "is", "introspect", "service-script", "config"})
}
