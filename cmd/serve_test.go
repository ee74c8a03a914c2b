//go:build !integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
)

const reloadedCases = `[[{"section": "Case Information", "Case Number": "CC1"}], [{"section": "Case Information", "Case Number": "CC2"}]]`

func TestReloadCases(t *testing.T) {
	repo, err := casefile.Fixture()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cases.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	hup := make(chan os.Signal)
	done := make(chan struct{})
	go func() {
		reloadCases(ctx, repo, path, hup)
		close(done)
	}()

	// the unbuffered send returns once the reloader has taken the signal; the
	// next send cannot complete until that reload has finished
	hup <- syscall.SIGHUP
	require.NoError(t, os.WriteFile(path, []byte(reloadedCases), 0o644))
	hup <- syscall.SIGHUP
	hup <- syscall.SIGHUP
	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, path, repo.Source())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reloader did not stop")
	}
}
