package pairs

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/pairtree/pkg/errors"
)

func TestReadJSON(t *testing.T) {
	in := `[{"parent": "A", "child": "B"}, {"parent": "A", "child": "C"}]`
	got, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	want := []Pair[string]{Of("A", "B"), Of("A", "C")}
	if !slices.Equal(got, want) {
		t.Errorf("ReadJSON() = %v, want %v", got, want)
	}
}

func TestReadTOML(t *testing.T) {
	in := `
[[pair]]
parent = "A"
child = "B"

[[pair]]
parent = "B"
child = "C"
`
	got, err := ReadTOML(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	want := []Pair[string]{Of("A", "B"), Of("B", "C")}
	if !slices.Equal(got, want) {
		t.Errorf("ReadTOML() = %v, want %v", got, want)
	}
}

func TestReadText(t *testing.T) {
	in := `# reference tree
A -> B
A->C

C D
  C	E
`
	got, err := ReadText(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	want := []Pair[string]{Of("A", "B"), Of("A", "C"), Of("C", "D"), Of("C", "E")}
	if !slices.Equal(got, want) {
		t.Errorf("ReadText() = %v, want %v", got, want)
	}
}

func TestReadTextArrowKeepsSpaces(t *testing.T) {
	got, err := ReadText(strings.NewReader("web app -> auth service\n"))
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if len(got) != 1 || got[0] != Of("web app", "auth service") {
		t.Errorf("ReadText() = %v", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		in     string
		msg    string
	}{
		{"json syntax", FormatJSON, `[{"parent": "A"`, ""},
		{"json empty child", FormatJSON, `[{"parent": "A", "child": ""}]`, "record 1"},
		{"toml syntax", FormatTOML, `[[pair]`, ""},
		{"toml missing parent", FormatTOML, "[[pair]]\nchild = \"B\"\n", "pair 1"},
		{"text one field", FormatText, "A -> B\nC\n", "line 2"},
		{"text three fields", FormatText, "A B C\n", "line 1"},
		{"text empty side", FormatText, "A ->\n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in), tt.format)
			if !errs.Is(err, errs.ErrCodeInvalidFormat) {
				t.Fatalf("err = %v, want INVALID_FORMAT", err)
			}
			if tt.msg != "" && errs.UserMessage(err) != tt.msg {
				t.Errorf("message = %q, want %q", errs.UserMessage(err), tt.msg)
			}
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, err := Decode(strings.NewReader(""), Format("yaml")); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"pairs.json":     FormatJSON,
		"PAIRS.JSON":     FormatJSON,
		"dir/pairs.toml": FormatTOML,
		"pairs.txt":      FormatText,
		"pairs":          FormatText,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.toml")
	if err := os.WriteFile(path, []byte("[[pair]]\nparent = \"A\"\nchild = \"B\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(got, []Pair[string]{Of("A", "B")}) {
		t.Errorf("Load() = %v", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) err = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(dir); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("Load(dir) err = %v, want INVALID_PATH", err)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, referenceEdges()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !slices.Equal(got, referenceEdges()) {
		t.Errorf("round trip = %v", got)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatTOML, FormatText} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, referenceEdges(), format); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, buf.String())
			}
			if !slices.Equal(got, referenceEdges()) {
				t.Errorf("round trip = %v", got)
			}
		})
	}

	if err := Encode(&bytes.Buffer{}, referenceEdges(), Format("yaml")); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Encode(yaml) err = %v, want UNSUPPORTED", err)
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, []Pair[string]{Of("A", "B"), Of("web app", "auth")}); err != nil {
		t.Fatal(err)
	}
	if want := "A -> B\nweb app -> auth\n"; buf.String() != want {
		t.Errorf("WriteText() = %q, want %q", buf.String(), want)
	}
}
