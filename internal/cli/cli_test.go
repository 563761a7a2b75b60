package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/pairtree/pkg/errors"
	"github.com/matzehuels/pairtree/pkg/store"
	"github.com/matzehuels/pairtree/pkg/treeio"
)

const referencePairsText = `# reference tree
A -> B
A -> C
C -> D
C -> E
D -> F
D -> G
`

func writeTestFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	return writeTestFile(t, "config.toml", body)
}

// runCLI executes the root command with args in an isolated environment and
// returns what the command wrote to its output stream.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, k := range []string{"PAIRTREE_REDIS_ADDR", "PAIRTREE_CACHE", "PAIRTREE_STORE"} {
		t.Setenv(k, "")
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// buildReference builds the reference tree into an element records file.
func buildReference(t *testing.T) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "tree.json")
	pairsPath := writeTestFile(t, "pairs.txt", referencePairsText)
	if _, err := runCLI(t, "build", pairsPath, "--strategy", "direct", "-o", out); err != nil {
		t.Fatalf("build: %v", err)
	}
	return out
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"build", "show", "leaves", "pairs", "render", "browse", "serve", "store", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
}

func TestBuildToStdout(t *testing.T) {
	pairsPath := writeTestFile(t, "pairs.txt", referencePairsText)
	for _, strategy := range []string{"closure", "direct"} {
		t.Run(strategy, func(t *testing.T) {
			out, err := runCLI(t, "build", pairsPath, "--strategy", strategy, "--no-cache")
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			elements, err := treeio.ReadJSON[string, string](strings.NewReader(out))
			if err != nil {
				t.Fatalf("output is not element records: %v\n%s", err, out)
			}
			var got []string
			for _, e := range elements {
				got = append(got, e.Element)
			}
			if want := []string{"A", "B", "C", "D", "F", "G", "E"}; !slices.Equal(got, want) {
				t.Errorf("elements = %v, want %v", got, want)
			}
		})
	}
}

func TestBuildJSONPairs(t *testing.T) {
	pairsPath := writeTestFile(t, "pairs.json", `[{"parent": "A", "child": "B"}, {"parent": "A", "child": "C"}]`)
	out, err := runCLI(t, "build", pairsPath, "--ids", "uuid")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	elements, err := treeio.ReadJSON[string, string](strings.NewReader(out))
	if err != nil || len(elements) != 3 {
		t.Fatalf("elements = %v, err = %v", elements, err)
	}
	if pid, ok := elements[1].ParentID.Get(); !ok || len(pid) != 36 {
		t.Errorf("parent id = %q, want a UUID", pid)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		args []string
		code errs.Code
	}{
		{"cycle", "A -> B\nB -> A\n", []string{"--strategy", "direct"}, errs.ErrCodeCycle},
		{"two roots", "A -> B\nC -> D\n", []string{"--strategy", "direct"}, errs.ErrCodeDisconnected},
		{"not a closure", "C -> E\nA -> B\n", nil, errs.ErrCodeParentNotFound},
		{"malformed line", "A B C\n", nil, errs.ErrCodeInvalidFormat},
		{"bad strategy", "A -> B\n", []string{"--strategy", "fixpoint"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, "pairs.txt", tt.body)
			args := append([]string{"build", path, "--no-cache"}, tt.args...)
			_, err := runCLI(t, args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := runCLI(t, "build", filepath.Join(t.TempDir(), "missing.txt"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestShowPlain(t *testing.T) {
	path := buildReference(t)
	out, err := runCLI(t, "show", path, "--plain")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	want := `TreeNode[A -> {B,C}]
TreeNode[B -> {}]
TreeNode[C -> {D,E}]
TreeNode[D -> {F,G}]
TreeNode[F -> {}]
TreeNode[G -> {}]
TreeNode[E -> {}]
`
	if out != want {
		t.Errorf("show --plain =\n%s\nwant\n%s", out, want)
	}
}

func TestShowUUIDRecords(t *testing.T) {
	pairsPath := writeTestFile(t, "pairs.txt", "A -> B\nB -> C\n")
	out := filepath.Join(t.TempDir(), "tree.json")
	if _, err := runCLI(t, "build", pairsPath, "--ids", "uuid", "--no-cache", "-o", out); err != nil {
		t.Fatalf("build: %v", err)
	}

	got, err := runCLI(t, "show", out, "--plain", "--ids", "uuid")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if want := "TreeNode[A -> {B}]\nTreeNode[B -> {C}]\nTreeNode[C -> {}]\n"; got != want {
		t.Errorf("show --ids uuid =\n%s\nwant\n%s", got, want)
	}

	_, err = runCLI(t, "show", out, "--plain")
	if !errs.Is(err, errs.ErrCodeOrphanElement) {
		t.Errorf("show with value ids err = %v, want ORPHAN_ELEMENT", err)
	}
}

func TestShowStyled(t *testing.T) {
	path := buildReference(t)
	out, err := runCLI(t, "show", path)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, v := range []string{"A", "B", "G", "╰──"} {
		if !strings.Contains(out, v) {
			t.Errorf("styled tree missing %q:\n%s", v, out)
		}
	}
}

func TestLeaves(t *testing.T) {
	path := buildReference(t)

	out, err := runCLI(t, "leaves", path)
	if err != nil || out != "B\nF\nG\nE\n" {
		t.Errorf("leaves = %q, err = %v", out, err)
	}

	out, err = runCLI(t, "leaves", path, "C")
	if err != nil || out != "F\nG\nE\n" {
		t.Errorf("leaves C = %q, err = %v", out, err)
	}

	out, err = runCLI(t, "leaves", path, "F")
	if err != nil || out != "F\n" {
		t.Errorf("leaves F = %q, err = %v", out, err)
	}

	out, err = runCLI(t, "leaves", path, "D", "B")
	if err != nil || out != "F\nG\nB\n" {
		t.Errorf("leaves D B = %q, err = %v", out, err)
	}

	_, err = runCLI(t, "leaves", path, "Z")
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("leaves Z err = %v", err)
	}

	out, err = runCLI(t, "leaves", path, "C", "Z")
	if !errs.Is(err, errs.ErrCodeNotFound) || out != "" {
		t.Errorf("leaves C Z = %q, err = %v; want nothing printed", out, err)
	}
}

func TestPairsEdges(t *testing.T) {
	path := buildReference(t)
	out, err := runCLI(t, "pairs", path)
	if err != nil {
		t.Fatalf("pairs: %v", err)
	}
	want := "A -> B\nA -> C\nC -> D\nC -> E\nD -> F\nD -> G\n"
	if out != want {
		t.Errorf("pairs =\n%s\nwant\n%s", out, want)
	}
}

func TestPairsClosureRebuilds(t *testing.T) {
	path := buildReference(t)
	pairsPath := filepath.Join(t.TempDir(), "closure.toml")
	if _, err := runCLI(t, "pairs", path, "--closure", "-o", pairsPath); err != nil {
		t.Fatalf("pairs --closure: %v", err)
	}

	out, err := runCLI(t, "build", pairsPath, "--no-cache")
	if err != nil {
		t.Fatalf("build from closure: %v", err)
	}
	elements, err := treeio.ReadJSON[string, string](strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	root, err := treeio.Import(elements, treeio.Identity[string]())
	if err != nil {
		t.Fatal(err)
	}
	if got := root.AllBottomLevelSuccessors(); !slices.Equal(got, []string{"B", "F", "G", "E"}) {
		t.Errorf("rebuilt leaves = %v", got)
	}
}

func TestShowRejectsBrokenRecords(t *testing.T) {
	path := writeTestFile(t, "tree.json", `[{"element": "B", "parentId": "A"}]`)
	_, err := runCLI(t, "show", path)
	if !errs.Is(err, errs.ErrCodeRootNotFound) {
		t.Errorf("err = %v, want ROOT_NOT_FOUND", err)
	}
}

func TestRenderDOT(t *testing.T) {
	path := buildReference(t)
	out := filepath.Join(t.TempDir(), "tree.dot")
	if _, err := runCLI(t, "render", path, "--dot", "--detailed", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph G {")) || !bytes.Contains(data, []byte("depth: 2")) {
		t.Errorf("unexpected DOT:\n%s", data)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct{ in, format, want string }{
		{"tree.json", "svg", "tree.svg"},
		{"dir/tree.json", "dot", "dir/tree.dot"},
		{"tree", "svg", "tree.svg"},
		{"-", "svg", "tree.svg"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.in, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.in, tt.format, got, tt.want)
		}
	}
}

func TestStoreMemoryBackend(t *testing.T) {
	path := buildReference(t)

	if _, err := runCLI(t, "store", "push", path, "--backend", "memory", "--name", "reference"); err != nil {
		t.Fatalf("push: %v", err)
	}

	// Each invocation gets a fresh in-memory store.
	_, err := runCLI(t, "store", "pull", "--backend", "memory", "--name", "reference")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("pull err = %v, want ErrNotFound", err)
	}

	_, err = runCLI(t, "store", "push", path, "--backend", "memory", "--name", "-bad")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("bad name err = %v", err)
	}

	_, err = runCLI(t, "store", "list", "--backend", "sqlite")
	if err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestInvalidConfigFails(t *testing.T) {
	cfg := writeTestConfig(t, "[cache]\nbackend = \"memcached\"\n")
	pairsPath := writeTestFile(t, "pairs.txt", referencePairsText)
	_, err := runCLI(t, "--config", cfg, "build", pairsPath)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestCompletionSkipsConfig(t *testing.T) {
	cfg := writeTestConfig(t, "[cache]\nbackend = \"memcached\"\n")
	out, err := runCLI(t, "--config", cfg, "completion", "bash")
	if err != nil || !strings.Contains(out, "pairtree") {
		t.Errorf("completion err = %v", err)
	}
}
