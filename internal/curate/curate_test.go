package curate

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jjtimmons/tpfasta/internal/seqstore"
	"github.com/jjtimmons/tpfasta/internal/tpf"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// copyInput copies test/input files into dir and returns their new paths.
func copyInput(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	var paths []string
	for _, name := range names {
		contents, err := os.ReadFile(path.Join("..", "..", "test", "input", name))
		require.NoError(t, err)

		dst := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(dst, contents, 0644))
		paths = append(paths, dst)
	}
	return paths
}

func testOptions(t *testing.T) Options {
	dir := t.TempDir()
	in := copyInput(t, dir, "two_scaffolds.fa", "two_scaffolds.tpf")

	gap := 5
	return Options{
		Fasta:       in[0],
		TPF:         in[1],
		Output:      filepath.Join(dir, "new.fasta"),
		Report:      filepath.Join(dir, "debug.txt"),
		GapLength:   &gap,
		LineWidth:   60,
		Rename:      &tpf.Rename{From: "RL_", To: "SUPER_"},
		Orientation: tpf.DefaultPlus,
		WriteIndex:  true,
		Logger:      zap.NewNop(),
	}
}

func TestCurate_e2e(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, Curate(opts))

	golden := []struct {
		got, want string
	}{
		{opts.Output, "two_scaffolds.fa"},
		{opts.Report, "two_scaffolds.debug.txt"},
	}
	for _, g := range golden {
		got, err := os.ReadFile(g.got)
		require.NoError(t, err)
		want, err := os.ReadFile(path.Join("..", "..", "test", "output", g.want))
		require.NoError(t, err)

		if diff := cmp.Diff(string(want), string(got)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", g.want, diff)
		}
	}

	if _, err := os.Stat(opts.Fasta + seqstore.IndexSuffix); err != nil {
		t.Errorf("Curate() didn't save the FASTA index: %v", err)
	}

	// a second run reads the saved index and gives the same output
	first, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	opts.Sort = true
	require.NoError(t, Curate(opts))
	second, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	if string(first) != string(second) {
		t.Error("Curate() output changed between runs")
	}
}

// wrap splits seq into FASTA lines of width bases.
func wrap(seq string, width int) string {
	var b strings.Builder
	for len(seq) > width {
		b.WriteString(seq[:width] + "\n")
		seq = seq[width:]
	}
	b.WriteString(seq + "\n")
	return b.String()
}

func TestCurate_defaults(t *testing.T) {
	noGap, noRename := 0, tpf.Rename{}

	tests := []struct {
		name      string
		gapLength *int
		rename    *tpf.Rename
		want      string
	}{
		{
			"unset",
			nil,
			nil,
			">SUPER_1\n" + wrap("ACGT"+strings.Repeat("N", DefaultGapLength)+"GGTT", DefaultLineWidth),
		},
		{
			"no gap and no rename",
			&noGap,
			&noRename,
			">RL_1\nACGTGGTT\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			fa := filepath.Join(dir, "s1.fa")
			tiling := filepath.Join(dir, "s1.tpf")
			require.NoError(t, os.WriteFile(fa, []byte(">s1\nACGTAACC\n"), 0644))
			require.NoError(t, os.WriteFile(tiling, []byte("?\ts1:1-4\tRL_1\tPLUS\n?\ts1:5-8\tRL_1\tMINUS\n"), 0644))

			out := filepath.Join(dir, "out", "curated.fa")
			require.NoError(t, os.Mkdir(filepath.Dir(out), 0755))

			require.NoError(t, Curate(Options{
				Fasta:     fa,
				TPF:       tiling,
				Output:    out,
				GapLength: tt.gapLength,
				Rename:    tt.rename,
			}))

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, string(got)); diff != "" {
				t.Errorf("Curate() mismatch (-want +got):\n%s", diff)
			}

			// the report defaults to debug.txt beside the output
			report, err := os.ReadFile(filepath.Join(dir, "out", DefaultReportName))
			require.NoError(t, err)
			if !strings.Contains(string(report), "\ts1 -- 5 -- 8\n") {
				t.Errorf("Curate() report = %q", report)
			}
		})
	}
}

func TestCurate_badOutputSettings(t *testing.T) {
	opts := testOptions(t)
	opts.LineWidth = -1

	if err := Curate(opts); err == nil {
		t.Error("Curate() with a negative line width should fail")
	}
	if _, err := os.Stat(opts.Output); !os.IsNotExist(err) {
		t.Error("Curate() wrote output with bad settings")
	}
}

func TestCurate_errors(t *testing.T) {
	tests := []struct {
		name    string
		tiling  string
		wantErr error
	}{
		{
			"scaffold not in the FASTA",
			"?\tscaffold_1:1-10\tRL_1\tPLUS\n?\tscaffold_7:1-10\tRL_1\tPLUS\n",
			seqstore.ErrNotFound,
		},
		{
			"end past the scaffold",
			"?\tscaffold_1:1-60\tRL_1\tPLUS\n",
			ErrOutOfBounds,
		},
		{
			"malformed line",
			"?\tscaffold_1:1-ten\tRL_1\tPLUS\n",
			tpf.ErrMalformed,
		},
		{
			"empty FASTA",
			"?\tscaffold_1:1-10\tRL_1\tPLUS\n",
			seqstore.ErrEmpty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			require.NoError(t, os.WriteFile(opts.TPF, []byte(tt.tiling), 0644))
			if tt.wantErr == seqstore.ErrEmpty {
				require.NoError(t, os.WriteFile(opts.Fasta, nil, 0644))
			}

			err := Curate(opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Curate() error = %v, want %v", err, tt.wantErr)
			}

			// nothing's written when a run fails
			for _, p := range []string{opts.Output, opts.Report} {
				if _, err := os.Stat(p); !os.IsNotExist(err) {
					t.Errorf("Curate() wrote %s on failure", p)
				}
			}
		})
	}
}

func TestCurate_staleIndex(t *testing.T) {
	opts := testOptions(t)
	stale := "scaffold_1\t10\t12\t10\t11\nscaffold_2\t72\t85\t10\t11\n"
	require.NoError(t, os.WriteFile(opts.Fasta+seqstore.IndexSuffix, []byte(stale), 0644))

	if err := Curate(opts); err == nil {
		t.Error("Curate() with an index that doesn't match the FASTA should fail")
	}
}

func TestCurate_strictOrientation(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, os.WriteFile(opts.TPF, []byte("?\tscaffold_1:1-4\tRL_1\tFORWARD\n"), 0644))

	opts.Orientation = tpf.Strict
	if err := Curate(opts); !errors.Is(err, tpf.ErrMalformed) {
		t.Errorf("Curate() strict error = %v, want ErrMalformed", err)
	}

	opts.Orientation = tpf.DefaultPlus
	require.NoError(t, Curate(opts))
	got, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	if string(got) != ">SUPER_1\nAATG\n" {
		t.Errorf("Curate() with an unknown orientation = %q, want it cut as PLUS", got)
	}
}

// memStore is a Store without a file order.
type memStore map[string]string

func (m memStore) Lengths() map[string]int {
	lengths := make(map[string]int)
	for name, seq := range m {
		lengths[name] = len(seq)
	}
	return lengths
}

func (m memStore) Fetch(name string) ([]byte, error) {
	seq, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", seqstore.ErrNotFound, name)
	}
	return []byte(seq), nil
}

func TestCut(t *testing.T) {
	store := memStore{
		"scaffold1": parseSeq,
		"scaffold2": "ACGTACGTAC",
		"unused":    "TTTT",
	}
	records := []tpf.Record{
		{Source: "scaffold1", Start: 3, End: 5, Destination: "newScaffold1", Orientation: tpf.Plus, Line: 1},
		{Source: "scaffold2", Start: 1, End: 4, Destination: "newScaffold2", Orientation: tpf.Minus, Line: 2},
		{Source: "scaffold1", Start: 10, End: 20, Destination: "newScaffold1", Orientation: tpf.Minus, Line: 3},
		{Source: "scaffold1", Start: 1, End: 58, Destination: "newScaffold1", Orientation: tpf.Plus, Line: 4},
	}

	fragments, err := Cut(store, records)
	require.NoError(t, err)

	want := map[*tpf.Record]string{
		&records[0]: "TGG",
		&records[1]: "ACGT",
		&records[2]: "GGTTTAACGCG",
		&records[3]: parseSeq[:58],
	}
	if len(fragments) != len(want) {
		t.Fatalf("Cut() returned %d fragments, want %d", len(fragments), len(want))
	}
	for _, f := range fragments {
		if string(f.Seq) != want[f.Record] {
			t.Errorf("Cut() line %d = %s, want %s", f.Record.Line, f.Seq, want[f.Record])
		}
	}

	scaffolds, err := Assemble(records, fragments)
	require.NoError(t, err)
	if len(scaffolds) != 2 || scaffolds[0].Name != "newScaffold1" || len(scaffolds[0].Fragments) != 3 {
		t.Errorf("Assemble() of Cut() = %+v", scaffolds)
	}
}

// rangeStore is a memStore that reads ranges and counts its reads.
type rangeStore struct {
	memStore
	ranges int
}

func (r *rangeStore) Fetch(name string) ([]byte, error) {
	return nil, errors.New("whole scaffold fetched")
}

func (r *rangeStore) FetchRange(name string, start, end int) ([]byte, error) {
	r.ranges++
	return []byte(r.memStore[name][start-1 : end]), nil
}

func TestCut_ranges(t *testing.T) {
	store := &rangeStore{memStore: memStore{"scaffold1": parseSeq}}
	records := []tpf.Record{
		{Source: "scaffold1", Start: 3, End: 5, Destination: "newScaffold1", Orientation: tpf.Plus, Line: 1},
		{Source: "scaffold1", Start: 10, End: 20, Destination: "newScaffold1", Orientation: tpf.Minus, Line: 2},
	}

	fragments, err := Cut(store, records)
	require.NoError(t, err)
	if store.ranges != 2 {
		t.Errorf("Cut() read %d ranges, want 2", store.ranges)
	}

	want := []string{"TGG", "GGTTTAACGCG"}
	for i, f := range fragments {
		if f.Record != &records[i] || string(f.Seq) != want[i] {
			t.Errorf("Cut() fragment %d = line %d %s, want line %d %s", i, f.Record.Line, f.Seq, records[i].Line, want[i])
		}
	}

	// ranges past the scaffold fail before anything's read
	store.ranges = 0
	records = append(records, tpf.Record{Source: "scaffold1", Start: 50, End: 60, Line: 3})
	if _, err := Cut(store, records); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Cut() error = %v, want ErrOutOfBounds", err)
	}
	if store.ranges != 0 {
		t.Errorf("Cut() read %d ranges before failing", store.ranges)
	}
}
