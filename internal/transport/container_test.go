// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostprobe/hostprobe/internal/container"
	"github.com/hostprobe/hostprobe/pkg/types"
)

// fakeEngine replays queued results for Exec and records every command.
type fakeEngine struct {
	mu      sync.Mutex
	running bool
	results []*container.ExecResult
	errs    []error
	calls   [][]string
}

func (e *fakeEngine) Name() string { return "fake" }
func (e *fakeEngine) Available() bool { return true }
func (e *fakeEngine) Version(context.Context) (string, error) { return "1.0", nil }

func (e *fakeEngine) Running(context.Context, container.ContainerID) (bool, error) {
	return e.running, nil
}

func (e *fakeEngine) Exec(_ context.Context, id container.ContainerID, command []string, _ container.ExecOptions) (*container.ExecResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, command)
	i := len(e.calls) - 1
	var err error
	if i < len(e.errs) {
		err = e.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(e.results) {
		r := *e.results[i]
		r.ContainerID = id
		return &r, nil
	}
	return &container.ExecResult{ContainerID: id}, nil
}

func TestNewContainer(t *testing.T) {
	t.Parallel()

	_, err := NewContainer(t.Context(), &fakeEngine{running: false}, "web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")

	_, err = NewContainer(t.Context(), &fakeEngine{running: true}, "")
	require.ErrorIs(t, err, container.ErrInvalidContainerID)

	c, err := NewContainer(t.Context(), &fakeEngine{running: true}, "web")
	require.NoError(t, err)
	assert.Equal(t, "fake://web", c.Name())
	assert.Equal(t, byte('/'), c.PathSeparator())
	assert.Equal(t, byte(':'), c.PathListSeparator())
}

func TestContainer_Stat(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		running: true,
		results: []*container.ExecResult{
			{Stdout: []byte("81ed\n")},
			{ExitCode: 1, Stderr: []byte("stat: cannot statx '/nope': No such file or directory")},
		},
	}
	c, err := NewContainer(t.Context(), engine, "web")
	require.NoError(t, err)

	fi, err := c.Stat(t.Context(), "/usr/bin/ls")
	require.NoError(t, err)
	assert.True(t, fi.OwnerExecutable())

	_, err = c.Stat(t.Context(), "/nope")
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.Len(t, engine.calls, 2)
	assert.Equal(t, []string{"stat", "-L", "-c", "%f", "/usr/bin/ls"}, engine.calls[0])
}

func TestContainer_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		running: true,
		results: []*container.ExecResult{
			{ExitCode: types.ExitCode(126), Stderr: []byte("OCI runtime exec failed")},
			nil,
			{Stdout: []byte("PATH=/usr/local/bin:/usr/bin\n")},
		},
		errs: []error{nil, errors.New("Cannot connect to the Docker daemon"), nil},
	}
	c, err := NewContainer(t.Context(), engine, "web")
	require.NoError(t, err)

	env, err := c.Environ(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin:/usr/bin", env["PATH"])
	assert.Len(t, engine.calls, 3)
}

func TestContainer_PermanentFailureIsNotRetried(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		running: true,
		errs:    []error{errors.New("no such container: web")},
	}
	c, err := NewContainer(t.Context(), engine, "web")
	require.NoError(t, err)

	_, err = c.ReadFile(t.Context(), "/etc/hostname")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no such container"))
	assert.Len(t, engine.calls, 1)
}
