// Package dataset loads candidate names from delimited files and keeps
// them fresh when the files change on disk.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Options control column selection and logging for a load.
type Options struct {
	// Column picks the name column explicitly: a header name matched
	// case-insensitively, or "#N" for a 1-based position.
	Column string
	// Columns are the auto-detection candidates tried in order when
	// Column is empty.
	Columns []string
	Logger  *zap.Logger
}

// Source is one loaded dataset: the raw name of every data row across
// all matched files, in file-then-row order, plus a content fingerprint
// for change detection. Unusable rows stay in Names as empty strings so
// row numbers keep pointing at the underlying files.
type Source struct {
	Paths       []string
	Names       []string
	Fingerprint uint64
}

// LoadError carries the failing path and operation for dataset problems.
type LoadError struct {
	Path string
	Op   string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads every file matching pattern, a literal path or doublestar
// glob, in lexical path order. The first row of each file is a header;
// the name column resolves per Options, falling back to the first
// column. Files ending in .tsv or .tab split on tabs, everything else
// on commas.
func Load(pattern string, opts Options) (*Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, &LoadError{Path: pattern, Op: "glob", Err: err}
	}
	if len(paths) == 0 {
		return nil, &LoadError{Path: pattern, Op: "resolve", Err: os.ErrNotExist}
	}
	sort.Strings(paths)

	src := &Source{Paths: paths}
	digest := xxhash.New()
	for _, path := range paths {
		if err := loadFile(path, opts, digest, src); err != nil {
			return nil, err
		}
	}
	src.Fingerprint = digest.Sum64()

	logger.Info("dataset loaded",
		zap.Int("files", len(paths)),
		zap.Int("rows", len(src.Names)),
		zap.String("fingerprint", fmt.Sprintf("%016x", src.Fingerprint)))
	return src, nil
}

// loadFile appends one file's rows to src while feeding every byte read
// through the shared digest, so the fingerprint covers all files in
// load order.
func loadFile(path string, opts Options, digest *xxhash.Digest, src *Source) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(io.TeeReader(f, digest))
	r.Comma = delimiterFor(path)
	r.FieldsPerRecord = -1 // ragged rows are tolerated, short rows yield empty names

	header, err := r.Read()
	if err == io.EOF {
		return nil // a headerless empty file contributes nothing
	}
	if err != nil {
		return &LoadError{Path: path, Op: "read", Err: err}
	}
	col, err := resolveColumn(header, opts)
	if err != nil {
		return &LoadError{Path: path, Op: "column", Err: err}
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &LoadError{Path: path, Op: "read", Err: err}
		}
		name := ""
		if col < len(rec) {
			name = strings.TrimSpace(rec[col])
		}
		src.Names = append(src.Names, name)
	}
	return nil
}

func delimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

// resolveColumn picks the name column: the explicit option first, then
// the candidate headers in order, then column zero.
func resolveColumn(header []string, opts Options) (int, error) {
	if opts.Column != "" {
		if pos, ok := strings.CutPrefix(opts.Column, "#"); ok {
			idx, err := strconv.Atoi(pos)
			if err != nil || idx < 1 || idx > len(header) {
				return 0, fmt.Errorf("column %q is not a valid 1-based position (header has %d columns)",
					opts.Column, len(header))
			}
			return idx - 1, nil
		}
		for i, h := range header {
			if strings.EqualFold(cleanCell(h), opts.Column) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("column %q not found in header %v", opts.Column, header)
	}

	for _, cand := range opts.Columns {
		for i, h := range header {
			if strings.EqualFold(cleanCell(h), cand) {
				return i, nil
			}
		}
	}
	return 0, nil
}

// cleanCell trims whitespace and a UTF-8 BOM, which Excel likes to put
// in front of the first header cell.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}
