// Package store persists exported trees under a name.
//
// A tree is stored as its element records (see package treeio), one row or
// document per record, with a sequence number preserving export order so a
// loaded tree re-imports with the same child order.
//
// Backends live in subpackages: [github.com/matzehuels/pairtree/pkg/store/mongo]
// and [github.com/matzehuels/pairtree/pkg/store/postgres]. [Memory] is an
// in-process backend for tests and single-process servers.
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/matzehuels/pairtree/pkg/optional"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

// ErrNotFound is returned by Load and Delete when no tree has the name.
var ErrNotFound = errors.New("tree not found")

// Record is one stored element record.
type Record struct {
	Element  string  `json:"element" bson:"element" db:"element"`
	ParentID *string `json:"parentId" bson:"parent_id,omitempty" db:"parent_id"`
	Seq      int     `json:"seq" bson:"seq" db:"seq"`
	// IDs names the id function the parent ids were produced with.
	IDs      string  `json:"ids,omitempty" bson:"ids,omitempty" db:"ids"`
}

// Store saves and loads trees by name.
type Store interface {
	// Save replaces any tree stored under name with records.
	Save(ctx context.Context, name string, records []Record) error
	// Load returns the records of name ordered by Seq, or ErrNotFound.
	Load(ctx context.Context, name string) ([]Record, error)
	// Delete removes name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
	// List returns the stored tree names in ascending order.
	List(ctx context.Context) ([]string, error)
	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// FromElements converts exported element records to store records,
// numbering them in order and tagging each with the id function name.
func FromElements(elements []treeio.Element[string, string], ids string) []Record {
	out := make([]Record, len(elements))
	for i, e := range elements {
		out[i] = Record{Element: e.Element, Seq: i, IDs: ids}
		if pid, ok := e.ParentID.Get(); ok {
			out[i].ParentID = &pid
		}
	}
	return out
}

// ToElements converts store records back to element records in Seq order.
func ToElements(records []Record) []treeio.Element[string, string] {
	sorted := slices.SortedStableFunc(slices.Values(records), func(a, b Record) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	out := make([]treeio.Element[string, string], len(sorted))
	for i, r := range sorted {
		out[i] = treeio.Element[string, string]{Element: r.Element}
		if r.ParentID != nil {
			out[i].ParentID = optional.Some(*r.ParentID)
		}
	}
	return out
}

// IDs returns the id function name the records were saved with, or "" for
// records saved without one.
func IDs(records []Record) string {
	for _, r := range records {
		if r.IDs != "" {
			return r.IDs
		}
	}
	return ""
}
