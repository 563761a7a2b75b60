package treeio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/pairtree/pkg/errors"
)

// WriteJSON encodes elements as an indented JSON array and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON[ID comparable, T any](elements []Element[ID, T], w io.Writer) error {
	if elements == nil {
		elements = []Element[ID, T]{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(elements); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes elements to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON[ID comparable, T any](elements []Element[ID, T], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(elements, f)
}

// ReadJSON decodes a JSON array of element records from r. It only checks
// the encoding; structural checks happen in [Import]. ReadJSON does not
// close r.
func ReadJSON[ID comparable, T any](r io.Reader) ([]Element[ID, T], error) {
	var out []Element[ID, T]
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode elements")
	}
	return out, nil
}

// ImportJSON reads element records from the JSON file at path.
func ImportJSON[ID comparable, T any](path string) ([]Element[ID, T], error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "elements file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil && info.IsDir() {
		return nil, errs.New(errs.ErrCodeInvalidPath, "elements file %s is a directory", path)
	}
	return ReadJSON[ID, T](f)
}
