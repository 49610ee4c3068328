package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veikk/veikkd-go/memorywriter"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veikkd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[activation]\nretries = 0\n"), 0o644))

	log, err := memorywriter.New(100, 10, false, nil)
	require.NoError(t, err)

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, log, func(cfg *Config) { reloaded <- cfg })
	}()

	// let the watcher arm before touching the file
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[activation]\nretries = 5\n"), 0o644))

	// the first delivery must already be the final content; a reload
	// from the truncated half-written file would carry retries = 0
	select {
	case cfg := <-reloaded:
		require.Equal(t, 5, cfg.Activation.Retries)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchCoalescesPartialWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veikkd.toml")
	require.NoError(t, os.WriteFile(path, []byte("[activation]\nretries = 0\n"), 0o644))

	log, err := memorywriter.New(100, 10, false, nil)
	require.NoError(t, err)

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Watch(ctx, path, log, func(cfg *Config) { reloaded <- cfg })
	}()
	time.Sleep(100 * time.Millisecond)

	// rewrite the file the way os.WriteFile does, but slowly: truncate
	// first, content split across separate writes
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = f.WriteString("[activation]\nretr")
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)
	_, err = f.WriteString("ies = 7\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// only the settled file may be delivered, never the truncated or
	// half-written intermediate states
	select {
	case cfg := <-reloaded:
		require.Equal(t, 7, cfg.Activation.Retries)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "veikkd.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	log, err := memorywriter.New(100, 10, false, nil)
	require.NoError(t, err)

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Watch(ctx, path, log, func(cfg *Config) { reloaded <- cfg })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
