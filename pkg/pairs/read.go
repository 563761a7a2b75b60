package pairs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/pairtree/pkg/errors"
)

// Format identifies a pair file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatText Format = "text"
)

// DetectFormat picks a format from the file extension. Anything that is not
// .json or .toml is read as text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	}
	return FormatText
}

type wirePair struct {
	Parent string `json:"parent" toml:"parent"`
	Child  string `json:"child" toml:"child"`
}

type tomlDoc struct {
	Pair []wirePair `toml:"pair"`
}

// Decode reads pairs from r in the given format.
func Decode(r io.Reader, format Format) ([]Pair[string], error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatText:
		return ReadText(r)
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unsupported pair format %q", format)
}

// ReadJSON decodes a JSON array of {"parent": ..., "child": ...} objects.
func ReadJSON(r io.Reader) ([]Pair[string], error) {
	var raw []wirePair
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode pairs")
	}
	return convert(raw, "record")
}

// ReadTOML decodes [[pair]] tables with parent and child keys:
//
//	[[pair]]
//	parent = "A"
//	child  = "B"
func ReadTOML(r io.Reader) ([]Pair[string], error) {
	var doc tomlDoc
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode pairs")
	}
	return convert(doc.Pair, "pair")
}

// ReadText reads one pair per line, written either as "parent -> child" or
// as two whitespace-separated fields. Blank lines and lines starting with #
// are skipped.
func ReadText(r io.Reader) ([]Pair[string], error) {
	var out []Pair[string]
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parseLine(line)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "line %d", lineNo)
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read pairs")
	}
	return out, nil
}

// Load reads pairs from the file at path, choosing the decoder with
// [DetectFormat].
func Load(path string) ([]Pair[string], error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "pair file %s", path)
		}
		return nil, err
	}
	defer f.Close()
	if info, err := f.Stat(); err == nil && info.IsDir() {
		return nil, errs.New(errs.ErrCodeInvalidPath, "pair file %s is a directory", path)
	}
	return Decode(f, DetectFormat(path))
}

func parseLine(line string) (Pair[string], error) {
	var fields []string
	if parent, child, ok := strings.Cut(line, "->"); ok {
		fields = []string{strings.TrimSpace(parent), strings.TrimSpace(child)}
	} else {
		fields = strings.Fields(line)
	}
	if len(fields) != 2 {
		return Pair[string]{}, fmt.Errorf("expected \"parent -> child\" or \"parent child\", got %q", line)
	}
	for _, v := range fields {
		if err := errs.ValidateValue(v); err != nil {
			return Pair[string]{}, err
		}
	}
	return Of(fields[0], fields[1]), nil
}

func convert(raw []wirePair, kind string) ([]Pair[string], error) {
	out := make([]Pair[string], 0, len(raw))
	for i, w := range raw {
		for _, v := range []string{w.Parent, w.Child} {
			if err := errs.ValidateValue(v); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "%s %d", kind, i+1)
			}
		}
		out = append(out, Of(w.Parent, w.Child))
	}
	return out, nil
}

// Encode writes pairs to w in the given format, readable by [Decode].
func Encode(w io.Writer, pairs []Pair[string], format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, pairs)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(tomlDoc{Pair: wirePairs(pairs)})
	case FormatText:
		return WriteText(w, pairs)
	}
	return errs.New(errs.ErrCodeUnsupported, "unsupported pair format %q", format)
}

// WriteText writes one "parent -> child" line per pair. Values that contain
// "->" or surrounding spaces do not read back unchanged; use JSON for those.
func WriteText(w io.Writer, pairs []Pair[string]) error {
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%s -> %s\n", p.Parent, p.Child); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func wirePairs(pairs []Pair[string]) []wirePair {
	raw := make([]wirePair, len(pairs))
	for i, p := range pairs {
		raw[i] = wirePair{Parent: p.Parent, Child: p.Child}
	}
	return raw
}

// WriteJSON encodes pairs in the format read by [ReadJSON].
func WriteJSON(w io.Writer, pairs []Pair[string]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wirePairs(pairs))
}
