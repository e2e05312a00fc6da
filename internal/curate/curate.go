// Package curate re-assembles a genome's FASTA from a tiling path:
// scaffolds are cut, flipped to their new strand and joined, with N gaps,
// into the new scaffolds named by the tiling path.
package curate

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/jjtimmons/tpfasta/internal/seqstore"
	"github.com/jjtimmons/tpfasta/internal/tpf"
	"go.uber.org/zap"
)

// Options are the inputs and settings of a curation run. Zero values are
// replaced with their defaults.
type Options struct {
	// Fasta is the path to the assembly to re-organize
	Fasta string

	// TPF is the path to the tiling path
	TPF string

	// Output is the path of the new FASTA. Default is DefaultOutput
	Output string

	// Report is the path of the provenance report. Default is
	// DefaultReportName in Output's directory
	Report string

	// GapLength is the number of N's between joined fragments. Nil means
	// DefaultGapLength
	GapLength *int

	// LineWidth is the number of bases per line in Output. Zero means
	// DefaultLineWidth
	LineWidth int

	// Rename is the destination scaffold prefix rewrite. Nil means
	// tpf.DefaultRename, and the zero Rename turns renaming off
	Rename *tpf.Rename

	// Orientation is what to do with orientations that aren't PLUS or MINUS
	Orientation tpf.OrientationPolicy

	// WriteIndex saves a built .fai next to Fasta
	WriteIndex bool

	// Sort is accepted for compatibility. Scaffolds are always written in
	// tiling path order
	Sort bool

	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// withDefaults fills in every unset option.
func (o Options) withDefaults() Options {
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Report == "" {
		o.Report = filepath.Join(filepath.Dir(o.Output), DefaultReportName)
	}
	if o.GapLength == nil {
		gap := DefaultGapLength
		o.GapLength = &gap
	}
	if o.LineWidth == 0 {
		o.LineWidth = DefaultLineWidth
	}
	if o.Rename == nil {
		rename := tpf.DefaultRename
		o.Rename = &rename
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Curate validates the FASTA, parses the tiling path, cuts every record
// from its source scaffold, assembles the new scaffolds and writes them
// with their provenance report. Neither output file is written unless
// every step before writing succeeds.
func Curate(opts Options) error {
	start := time.Now()
	opts = opts.withDefaults()
	logger := opts.Logger

	out := Output{
		FASTA:     opts.Output,
		Report:    opts.Report,
		GapLength: *opts.GapLength,
		LineWidth: opts.LineWidth,
	}
	if err := out.check(); err != nil {
		return err
	}

	entries, err := seqstore.Validate(opts.Fasta)
	if err != nil {
		return err
	}

	records, err := tpf.ReadFile(
		opts.TPF,
		tpf.WithRename(*opts.Rename),
		tpf.WithOrientationPolicy(opts.Orientation),
		tpf.OnUnknownOrientation(func(line int, o string) {
			logger.Warn("unknown orientation, using PLUS", zap.Int("line", line), zap.String("orientation", o))
		}),
	)
	if err != nil {
		return err
	}
	logger.Debug("parsed tiling path", zap.String("tpf", opts.TPF), zap.Int("records", len(records)))

	store, err := seqstore.Open(opts.Fasta, seqstore.WithWriteIndex(opts.WriteIndex), seqstore.WithLogger(logger))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := checkIndex(entries, store.Lengths()); err != nil {
		return err
	}

	fragments, err := Cut(store, records)
	if err != nil {
		return err
	}

	scaffolds, err := Assemble(records, fragments)
	if err != nil {
		return err
	}

	if opts.Sort {
		logger.Warn("sort isn't supported, scaffolds are written in tiling path order")
	}

	if err := Write(scaffolds, out, logger); err != nil {
		return err
	}

	logger.Info("curated FASTA",
		zap.String("output", opts.Output),
		zap.String("report", opts.Report),
		zap.Int("scaffolds", len(scaffolds)),
		zap.Int("fragments", len(fragments)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// checkIndex confirms the index describes the FASTA it's beside.
func checkIndex(entries []seqstore.Entry, lengths map[string]int) error {
	if len(entries) != len(lengths) {
		return fmt.Errorf("stale index: %d scaffolds in the FASTA, %d in its index", len(entries), len(lengths))
	}
	for _, e := range entries {
		if l, ok := lengths[e.Name]; !ok || l != e.Length {
			return fmt.Errorf("stale index: %s is %d bp in the FASTA, %d bp in its index", e.Name, e.Length, l)
		}
	}
	return nil
}

// namer is a Store that knows the file order of its scaffolds.
type namer interface {
	Names() []string
}

// ranger is a Store that can read part of a scaffold.
type ranger interface {
	FetchRange(name string, start, end int) ([]byte, error)
}

// Cut slices every record out of its source scaffold. A record whose source
// isn't in the store, or whose range runs past the end of its source, fails
// the whole cut before anything is read. Stores that read ranges are asked
// for each record's bases only. Other stores have each scaffold fetched
// once, for all the records that cut it.
func Cut(store seqstore.Store, records []tpf.Record) ([]Fragment, error) {
	lengths := store.Lengths()
	for _, source := range tpf.Sources(records) {
		if _, ok := lengths[source]; !ok {
			return nil, fmt.Errorf("%w: %s is in the tiling path but not the FASTA", seqstore.ErrNotFound, source)
		}
	}
	for i := range records {
		rec := &records[i]
		if rec.Start < 1 || rec.End > lengths[rec.Source] || rec.Start > rec.End {
			return nil, fmt.Errorf("failed to cut line %d (%s): %w: %s is %d bp", rec.Line, rec, ErrOutOfBounds, rec.Source, lengths[rec.Source])
		}
	}

	if r, ok := store.(ranger); ok {
		return cutRanges(r, records)
	}

	var names []string
	if n, ok := store.(namer); ok {
		names = n.Names()
	} else {
		for name := range lengths {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	fragments := make([]Fragment, 0, len(records))
	for _, name := range names {
		subset := tpf.Subset(records, name)
		if len(subset) == 0 {
			continue
		}

		seq, err := store.Fetch(name)
		if err != nil {
			return nil, err
		}

		for _, rec := range subset {
			cut, err := Slice(seq, rec.Start, rec.End, rec.Orientation)
			if err != nil {
				return nil, fmt.Errorf("failed to cut line %d (%s %s): %w", rec.Line, rec, rec.Orientation, err)
			}
			fragments = append(fragments, Fragment{Record: rec, Seq: cut})
		}
	}

	return fragments, nil
}

// cutRanges reads and orients each record's bases, in tiling path order.
func cutRanges(r ranger, records []tpf.Record) ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(records))
	for i := range records {
		rec := &records[i]
		seq, err := r.FetchRange(rec.Source, rec.Start, rec.End)
		if err != nil {
			return nil, fmt.Errorf("failed to cut line %d (%s): %w", rec.Line, rec, err)
		}

		cut, err := Slice(seq, 1, rec.Len(), rec.Orientation)
		if err != nil {
			return nil, fmt.Errorf("failed to cut line %d (%s %s): %w", rec.Line, rec, rec.Orientation, err)
		}
		fragments = append(fragments, Fragment{Record: rec, Seq: cut})
	}
	return fragments, nil
}
