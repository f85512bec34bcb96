// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/vgate/pkg/errs"
	"github.com/stacklok/vgate/pkg/notify"
)

const pingTool = `
tools:
  - name: %s
    description: ping tool
    routing:
      type: http
      config:
        method: GET
        url: "https://example.com/ping"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DuplicateToolNameNamesBothFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", fmtPing("ping"))
	writeFile(t, dir, "b.yaml", fmtPing("ping"))

	reg := New([]string{dir}, nil)
	err := reg.Load()
	require.Error(t, err)

	var e *errs.Error
	require.True(t, errs.As(err, &e))
	assert.Equal(t, errs.ErrDuplicateToolName, e.Type)
	assert.Contains(t, e.Message, "a.yaml")
	assert.Contains(t, e.Message, "b.yaml")
}

func TestLoad_DistinctNamesSucceed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", fmtPing("ping"))
	writeFile(t, dir, "b.yaml", fmtPing("pong"))

	reg := New([]string{dir}, nil)
	require.NoError(t, reg.Load())

	tools := reg.List(Filter{})
	require.Len(t, tools, 2)
	assert.Equal(t, "ping", tools[0].Name)
	assert.Equal(t, "pong", tools[1].Name)
}

func TestGet_UnknownToolNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", fmtPing("ping"))

	reg := New([]string{dir}, nil)
	require.NoError(t, reg.Load())

	_, ok := reg.Get("does-not-exist")
	assert.False(t, ok)
}

func TestReload_RenamePublishesAddedAndRemoved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.yaml", fmtPing("ping"))

	bus := notify.NewBus()
	reg := New([]string{dir}, bus)
	require.NoError(t, reg.Load())

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	require.NoError(t, os.WriteFile(path, []byte(fmtPing("ping2")), 0o644))
	require.NoError(t, reg.Reload())

	_, stillThere := reg.Get("ping")
	assert.False(t, stillThere)
	_, nowThere := reg.Get("ping2")
	assert.True(t, nowThere)

	var kinds []ChangeKind
	for i := 0; i < 2; i++ {
		select {
		case ev := <-sub.Events():
			ce, ok := ev.Payload.(ChangeEvent)
			require.True(t, ok)
			kinds = append(kinds, ce.Kind)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for change event")
		}
	}
	assert.Contains(t, kinds, ToolAdded)
	assert.Contains(t, kinds, ToolRemoved)
}

func TestReload_FailureKeepsOldCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.yaml", fmtPing("ping"))

	reg := New([]string{dir}, nil)
	require.NoError(t, reg.Load())

	require.NoError(t, os.WriteFile(path, []byte("tools: [this is not: valid: yaml"), 0o644))
	err := reg.Reload()
	require.Error(t, err)

	_, ok := reg.Get("ping")
	assert.True(t, ok, "old catalog must survive a failed reload")
}

func TestWatch_DebouncesAndReloads(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.yaml", fmtPing("ping"))

	reg := New([]string{dir}, nil)
	require.NoError(t, reg.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = reg.Watch(ctx) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(fmtPing("pong")), 0o644))

	require.Eventually(t, func() bool {
		_, ok := reg.Get("pong")
		return ok
	}, 3*time.Second, 50*time.Millisecond)
}

func fmtPing(name string) string {
	return fmt.Sprintf(pingTool, name)
}
