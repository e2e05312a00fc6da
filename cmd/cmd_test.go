package cmd

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func copyInput(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	var paths []string
	for _, name := range names {
		contents, err := os.ReadFile(path.Join("..", "test", "input", name))
		require.NoError(t, err)

		dst := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(dst, contents, 0644))
		paths = append(paths, dst)
	}
	return paths
}

func TestCurateCmd(t *testing.T) {
	dir := t.TempDir()
	in := copyInput(t, dir, "two_scaffolds.fa", "two_scaffolds.tpf")
	out := filepath.Join(dir, "curated.fa")

	RootCmd.SetArgs([]string{"curate", "-f", in[0], "-t", in[1], "-o", out, "-n", "5"})
	require.NoError(t, RootCmd.Execute())

	for _, g := range []struct{ got, want string }{
		{out, "two_scaffolds.fa"},
		{filepath.Join(dir, "debug.txt"), "two_scaffolds.debug.txt"},
	} {
		got, err := os.ReadFile(g.got)
		require.NoError(t, err)
		want, err := os.ReadFile(path.Join("..", "test", "output", g.want))
		require.NoError(t, err)
		if string(got) != string(want) {
			t.Errorf("curate %s = %q, want %q", g.got, got, want)
		}
	}
}

func TestIndexCmd(t *testing.T) {
	in := copyInput(t, t.TempDir(), "two_scaffolds.fa")

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	defer RootCmd.SetOut(nil)

	RootCmd.SetArgs([]string{"index", in[0]})
	require.NoError(t, RootCmd.Execute())

	if !strings.Contains(buf.String(), "2 scaffolds") {
		t.Errorf("index output = %q", buf.String())
	}
	idx, err := os.ReadFile(in[0] + ".fai")
	require.NoError(t, err)
	if !strings.Contains(string(idx), "scaffold_1\t59\t") || !strings.Contains(string(idx), "scaffold_2\t72\t") {
		t.Errorf("index = %q", idx)
	}
}

func TestDocsCmd(t *testing.T) {
	dir := t.TempDir()

	RootCmd.SetArgs([]string{"docs", dir})
	require.NoError(t, RootCmd.Execute())

	page, err := os.ReadFile(filepath.Join(dir, "tpfasta_curate.md"))
	require.NoError(t, err)
	if !strings.HasPrefix(string(page), "---\nlayout: default\ntitle: curate\nparent: tpfasta\n") {
		t.Errorf("curate docs page starts with %q", strings.SplitN(string(page), "\n", 6))
	}
}

func Test_filePrepender(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"root", "docs/tpfasta.md", "---\nlayout: default\ntitle: tpfasta\nnav_order: 0\nhas_children: true\npermalink: /\n---\n"},
		{"child", "docs/tpfasta_index.md", "---\nlayout: default\ntitle: index\nparent: tpfasta\nnav_order: 1\n---\n"},
		{"unknown", "docs/tpfasta_completion.md", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filePrepender(tt.filename); got != tt.want {
				t.Errorf("filePrepender() = %q, want %q", got, tt.want)
			}
		})
	}

	if linkHandler("tpfasta.md") != "/" || linkHandler("tpfasta_curate.md") != "tpfasta_curate" {
		t.Error("linkHandler() mismatch")
	}
}
