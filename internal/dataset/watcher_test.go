package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 30 * time.Millisecond

func startWatcher(t *testing.T, path string) (*Watcher, chan *Source) {
	t.Helper()
	opts := Options{Columns: defaultColumns()}
	src, err := Load(path, opts)
	require.NoError(t, err)

	reloads := make(chan *Source, 8)
	w, err := Watch(path, src, testDebounce, opts, func(s *Source) {
		reloads <- s
	})
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	return w, reloads
}

func waitReload(t *testing.T, reloads chan *Source) *Source {
	t.Helper()
	select {
	case src := <-reloads:
		return src
	case <-time.After(5 * time.Second):
		t.Fatal("no reload arrived")
		return nil
	}
}

func TestWatch_ReloadsOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")
	_, reloads := startWatcher(t, path)

	writeFile(t, dir, "names.csv", "name\nGita\nMeera\n")

	src := waitReload(t, reloads)
	assert.Equal(t, []string{"Gita", "Meera"}, src.Names)
}

func TestWatch_SkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")
	_, reloads := startWatcher(t, path)

	// Rewriting identical bytes fires filesystem events but must not
	// reach the callback; only the later real change does.
	writeFile(t, dir, "names.csv", "name\nGita\n")
	time.Sleep(10 * testDebounce)
	writeFile(t, dir, "names.csv", "name\nGita\nMeera\n")

	src := waitReload(t, reloads)
	assert.Equal(t, []string{"Gita", "Meera"}, src.Names)
	select {
	case extra := <-reloads:
		t.Fatalf("unexpected extra reload with %d names", len(extra.Names))
	default:
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")
	_, reloads := startWatcher(t, path)

	// A burst of writes inside the quiet window collapses into one
	// reload carrying the final content.
	writeFile(t, dir, "names.csv", "name\nGita\nMeera\n")
	writeFile(t, dir, "names.csv", "name\nGita\nMeera\nKrishna\n")

	src := waitReload(t, reloads)
	assert.Equal(t, []string{"Gita", "Meera", "Krishna"}, src.Names)
}

func TestWatch_SurvivesReloadFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")
	_, reloads := startWatcher(t, path)

	// Deleting the file makes the next reload fail; the watcher keeps
	// running and picks up the recreated file.
	require.NoError(t, os.Remove(path))
	time.Sleep(5 * testDebounce)
	writeFile(t, dir, "names.csv", "name\nKrishna\n")

	src := waitReload(t, reloads)
	assert.Equal(t, []string{"Krishna"}, src.Names)
}

func TestWatch_StopTwiceTolerated(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")

	opts := Options{Columns: defaultColumns()}
	src, err := Load(path, opts)
	require.NoError(t, err)

	w, err := Watch(path, src, testDebounce, opts, func(*Source) {})
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}

func TestWatch_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")
	_, reloads := startWatcher(t, path)

	writeFile(t, dir, "other.txt", "not a dataset")
	writeFile(t, dir, "names.csv", "name\nGita\nMeera\n")

	src := waitReload(t, reloads)
	assert.Len(t, src.Names, 2, "only the dataset change causes the reload")
}

func TestWatch_GlobPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "name\nGita\n")
	pattern := filepath.Join(dir, "*.csv")

	opts := Options{Columns: defaultColumns()}
	src, err := Load(pattern, opts)
	require.NoError(t, err)

	reloads := make(chan *Source, 8)
	w, err := Watch(pattern, src, testDebounce, opts, func(s *Source) {
		reloads <- s
	})
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	writeFile(t, dir, "b.csv", "name\nMeera\n")

	src = waitReload(t, reloads)
	assert.Equal(t, []string{"Gita", "Meera"}, src.Names)
}
