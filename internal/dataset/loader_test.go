package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultColumns() []string {
	return []string{"name", "full_name", "student_name", "candidate_name"}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DetectsNameColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "students.csv",
		"id,full_name,age\n1,Gita,30\n2,Geetha B.S,31\n")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)

	assert.Equal(t, []string{"Gita", "Geetha B.S"}, src.Names)
	assert.Equal(t, []string{path}, src.Paths)
	assert.NotZero(t, src.Fingerprint)
}

func TestLoad_HeaderMatchIsCaseInsensitive(t *testing.T) {
	path := writeFile(t, t.TempDir(), "students.csv",
		"ID,Name\n1,Gita\n")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gita"}, src.Names)
}

func TestLoad_ExplicitColumnByHeader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv",
		"name,alias\nGita,G\nKrishna,K\n")

	src, err := Load(path, Options{Column: "Alias"})
	require.NoError(t, err)
	assert.Equal(t, []string{"G", "K"}, src.Names)
}

func TestLoad_ExplicitColumnByPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "people.csv",
		"a,b,c\nx,Gita,y\nx,Meera,y\n")

	src, err := Load(path, Options{Column: "#2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gita", "Meera"}, src.Names)
}

func TestLoad_BadExplicitColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", "a,b\n1,2\n")

	for _, col := range []string{"#0", "#3", "#x", "missing"} {
		_, err := Load(path, Options{Column: col})
		require.Error(t, err, "column %q", col)

		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, "column", loadErr.Op)
		assert.Equal(t, path, loadErr.Path)
	}
}

func TestLoad_FallsBackToFirstColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "export.csv",
		"person,dept\nGita,Math\n")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gita"}, src.Names,
		"no candidate header matches, so the first column serves")
}

func TestLoad_TabDelimited(t *testing.T) {
	path := writeFile(t, t.TempDir(), "students.tsv",
		"id\tname\n1\tGeetha B S\n2\tVignesh Kumar R\n")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Geetha B S", "Vignesh Kumar R"}, src.Names)
}

func TestLoad_StripsByteOrderMark(t *testing.T) {
	path := writeFile(t, t.TempDir(), "excel.csv",
		"\ufeffname,age\nGita,30\n")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gita"}, src.Names)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), Options{})
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "resolve", loadErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_GlobReadsFilesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "name\nMeera\n")
	writeFile(t, dir, "a.csv", "name\nGita\nKrishna\n")

	src, err := Load(filepath.Join(dir, "*.csv"), Options{Columns: defaultColumns()})
	require.NoError(t, err)

	assert.Equal(t, []string{"Gita", "Krishna", "Meera"}, src.Names,
		"rows from a.csv come before rows from b.csv")
	assert.Len(t, src.Paths, 2)
}

func TestLoad_FingerprintTracksContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "names.csv", "name\nGita\n")

	first, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	second, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint,
		"identical content must fingerprint identically")

	writeFile(t, dir, "names.csv", "name\nGita\nMeera\n")
	third, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
}

func TestLoad_ShortRowsKeepRowNumbering(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ragged.csv",
		"id,name\n1,Gita\n2\n3,Meera\n")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gita", "", "Meera"}, src.Names,
		"a short row stays as an empty name so later rows keep their positions")
}

func TestLoad_EmptyFileContributesNothing(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")

	src, err := Load(path, Options{Columns: defaultColumns()})
	require.NoError(t, err)
	assert.Empty(t, src.Names)
}

func TestResolveColumn_PositionSyntax(t *testing.T) {
	header := []string{"a", "b", "c"}

	col, err := resolveColumn(header, Options{Column: "#1"})
	require.NoError(t, err)
	assert.Equal(t, 0, col)

	col, err = resolveColumn(header, Options{Column: "#3"})
	require.NoError(t, err)
	assert.Equal(t, 2, col)
}
