package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/knowhub/pkg/core"
	"github.com/aretw0/knowhub/pkg/git"
	"github.com/aretw0/knowhub/pkg/typed"
)

var (
	// ErrNoValidData means no provided file contributed a single valid record.
	ErrNoValidData = errors.New("no valid data found in the provided files")
	// ErrInvalidFile means a file is not a JSON array.
	ErrInvalidFile = errors.New("invalid import file")
)

// File is one import input.
type File struct {
	Name string
	Data []byte
}

// ReadFile loads an import input from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Name: filepath.Base(path), Data: data}, nil
}

// ReadFrom loads an import input from r.
func ReadFrom(name string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, Data: data}, nil
}

// Sources holds the optional per-collection inputs of an import.
type Sources struct {
	Categories     *File
	KnowledgeItems *File
	Notices        *File
}

func (s Sources) file(kind core.Kind) *File {
	switch kind {
	case core.KindCategories:
		return s.Categories
	case core.KindKnowledgeItems:
		return s.KnowledgeItems
	case core.KindNotices:
		return s.Notices
	}
	return nil
}

// SplitExport turns an export document into import sources, one per
// collection present in it.
func SplitExport(name string, data []byte) (Sources, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Sources{}, fmt.Errorf("%w: %s: %v", ErrInvalidFile, name, err)
	}
	var src Sources
	for _, kind := range core.Kinds() {
		raw, ok := doc[string(kind)]
		if !ok {
			continue
		}
		f := &File{Name: name + "#" + string(kind), Data: raw}
		switch kind {
		case core.KindCategories:
			src.Categories = f
		case core.KindKnowledgeItems:
			src.KnowledgeItems = f
		case core.KindNotices:
			src.Notices = f
		}
	}
	return src, nil
}

// Result reports the outcome of an import.
type Result struct {
	// Imported counts the records written per collection.
	Imported map[core.Kind]int
	// Dropped counts the elements that failed validation per collection.
	Dropped map[core.Kind]int
	// Errors holds the files that could not be parsed at all.
	Errors map[core.Kind]error
}

// Total returns the number of records written.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Imported {
		n += c
	}
	return n
}

// Summary describes the result in one line.
func (r Result) Summary() string {
	var parts []string
	for _, kind := range core.Kinds() {
		if n, ok := r.Imported[kind]; ok {
			part := fmt.Sprintf("%d %s", n, kind)
			if d := r.Dropped[kind]; d > 0 {
				part += fmt.Sprintf(" (%d skipped)", d)
			}
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "nothing imported"
	}
	return "imported " + strings.Join(parts, ", ")
}

type staged struct {
	categories     []core.Category
	knowledgeItems []core.KnowledgeItem
	notices        []core.Notice
}

// Import replaces collections of repo with the valid records of the given
// files. Every file is parsed and validated before anything is written.
// Elements that fail validation are dropped; a file that is not a JSON
// array is reported in Result.Errors without stopping the others. When
// no file yields a valid record, Import returns ErrNoValidData and leaves
// repo untouched. Only collections that received valid records are
// replaced, in a single transaction when repo supports one.
func Import(ctx context.Context, repo core.Repository, src Sources) (Result, error) {
	res := Result{
		Imported: make(map[core.Kind]int),
		Dropped:  make(map[core.Kind]int),
		Errors:   make(map[core.Kind]error),
	}

	var st staged
	for _, kind := range core.Kinds() {
		f := src.file(kind)
		if f == nil {
			continue
		}
		elems, err := parseArray(f)
		if err != nil {
			res.Errors[kind] = err
			continue
		}
		var kept int
		switch kind {
		case core.KindCategories:
			st.categories = validateAll(elems, validCategory)
			kept = len(st.categories)
		case core.KindKnowledgeItems:
			st.knowledgeItems = validateAll(elems, validKnowledgeItem)
			kept = len(st.knowledgeItems)
		case core.KindNotices:
			st.notices = validateAll(elems, validNotice)
			kept = len(st.notices)
		}
		res.Dropped[kind] = len(elems) - kept
	}

	total := len(st.categories) + len(st.knowledgeItems) + len(st.notices)
	if total == 0 {
		errs := []error{ErrNoValidData}
		for _, kind := range core.Kinds() {
			if err, ok := res.Errors[kind]; ok {
				errs = append(errs, err)
			}
		}
		return res, errors.Join(errs...)
	}

	reason := git.FormatChangeReason(git.ChangeImport, "", fmt.Sprintf("import %d records", total), "")
	if err := write(ctx, repo, st, reason); err != nil {
		return res, err
	}

	if len(st.categories) > 0 {
		res.Imported[core.KindCategories] = len(st.categories)
	}
	if len(st.knowledgeItems) > 0 {
		res.Imported[core.KindKnowledgeItems] = len(st.knowledgeItems)
	}
	if len(st.notices) > 0 {
		res.Imported[core.KindNotices] = len(st.notices)
	}
	return res, nil
}

func write(ctx context.Context, repo core.Repository, st staged, reason string) error {
	if _, ok := repo.(core.Transactional); ok {
		return core.WithTransaction(ctx, repo, reason, func(tx core.Transaction) error {
			if err := replaceIn[core.Category](ctx, tx, st.categories); err != nil {
				return err
			}
			if err := replaceIn[core.KnowledgeItem](ctx, tx, st.knowledgeItems); err != nil {
				return err
			}
			return replaceIn[core.Notice](ctx, tx, st.notices)
		})
	}

	// Without transactions each collection is replaced on its own; a failure
	// between the clear and the write of one collection leaves it empty.
	ctx = context.WithValue(ctx, core.ChangeReasonKey, reason)
	if err := replace[core.Category](ctx, repo, st.categories); err != nil {
		return err
	}
	if err := replace[core.KnowledgeItem](ctx, repo, st.knowledgeItems); err != nil {
		return err
	}
	return replace[core.Notice](ctx, repo, st.notices)
}

func replaceIn[T core.Record](ctx context.Context, tx core.Transaction, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	return typed.InTransaction[T](tx).Replace(ctx, recs)
}

func replace[T core.Record](ctx context.Context, repo core.Repository, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	c := typed.NewCollection[T](repo)
	if err := c.Clear(ctx); err != nil {
		return fmt.Errorf("clear %s: %w", c.Kind(), err)
	}
	if err := c.BulkPut(ctx, recs); err != nil {
		return fmt.Errorf("write %s: %w", c.Kind(), err)
	}
	return nil
}

func parseArray(f *File) ([]json.RawMessage, error) {
	if !json.Valid(f.Data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidFile, f.Name)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(f.Data, &elems); err != nil || elems == nil {
		return nil, fmt.Errorf("%w: %s must contain a JSON array", ErrInvalidFile, f.Name)
	}
	return elems, nil
}
