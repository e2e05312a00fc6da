package curate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"
)

const (
	// DefaultGapLength is the number of N's between two fragments
	DefaultGapLength = 200

	// DefaultLineWidth is the number of bases per FASTA sequence line
	DefaultLineWidth = 60

	// DefaultOutput is the output FASTA's path when none is given
	DefaultOutput = "new.fasta"

	// DefaultReportName is the report's file name, beside the output
	// FASTA, when no report path is given
	DefaultReportName = "debug.txt"
)

// Output is where, and how, assembled scaffolds are written.
type Output struct {
	// FASTA is the path of the re-assembled FASTA
	FASTA string

	// Report is the path of the provenance report
	Report string

	// GapLength is the number of N's between two fragments
	GapLength int

	// LineWidth is the number of bases per sequence line
	LineWidth int
}

// check rejects settings that can't be written.
func (o Output) check() error {
	if o.FASTA == "" || o.Report == "" {
		return fmt.Errorf("both an output FASTA and a report path are needed")
	}
	if o.GapLength < 0 {
		return fmt.Errorf("gap length must be >= 0, got %d", o.GapLength)
	}
	if o.LineWidth < 1 {
		return fmt.Errorf("line width must be > 0, got %d", o.LineWidth)
	}
	return nil
}

// Write saves the scaffolds as a FASTA and lists, in a parallel report, the
// source ranges each scaffold is made from. Both files are written to
// temporary files in their directories first. They're renamed over their
// destinations only once both are complete, so a failed write leaves the
// previous output (if any) in place.
func Write(scaffolds []Scaffold, out Output, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := out.check(); err != nil {
		return err
	}

	fa, err := stage(out.FASTA, func(w io.Writer) error {
		return writeFASTA(w, scaffolds, out.GapLength, out.LineWidth, logger)
	})
	if err != nil {
		return fmt.Errorf("failed to write FASTA: %w", err)
	}

	report, err := stage(out.Report, func(w io.Writer) error {
		return writeReport(w, scaffolds)
	})
	if err != nil {
		fa.discard()
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := fa.commit(); err != nil {
		fa.discard()
		report.discard()
		return fmt.Errorf("failed to write FASTA: %w", err)
	}
	if err := report.commit(); err != nil {
		report.discard()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// writeFASTA writes one record per scaffold, wrapped at width bases per line.
func writeFASTA(w io.Writer, scaffolds []Scaffold, gap, width int, logger *zap.Logger) error {
	fw := fasta.NewWriter(w, width)
	for _, s := range scaffolds {
		logger.Info("writing scaffold",
			zap.String("scaffold", s.Name),
			zap.Int("fragments", len(s.Fragments)),
			zap.Int("length", s.Len(gap)),
		)

		record := linear.NewSeq(s.Name, alphabet.BytesToLetters(s.Join(gap)), alphabet.DNAredundant)
		if _, err := fw.Write(record); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.Name, err)
		}
	}
	return nil
}

// writeReport writes each scaffold's header followed by a tab indented
// "source -- start -- end" line per fragment.
func writeReport(w io.Writer, scaffolds []Scaffold) error {
	for _, s := range scaffolds {
		if _, err := fmt.Fprintf(w, ">%s\n", s.Name); err != nil {
			return err
		}
		for _, f := range s.Fragments {
			if _, err := fmt.Fprintf(w, "\t%s\n", f.Record); err != nil {
				return err
			}
		}
	}
	return nil
}

// staged is a complete temp file waiting to be renamed to path.
type staged struct {
	tmp  string
	path string
}

func (s *staged) commit() error {
	return os.Rename(s.tmp, s.path)
}

func (s *staged) discard() {
	os.Remove(s.tmp)
}

// stage buffers write's output into a temp file beside path. The temp file
// gets the mode of the file it'll replace, or 0644 for a new file.
func stage(path string, write func(io.Writer) error) (_ *staged, err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return nil, err
	}
	if err = bw.Flush(); err != nil {
		return nil, err
	}
	if err = tmp.Chmod(mode); err != nil {
		return nil, err
	}
	if err = tmp.Close(); err != nil {
		return nil, err
	}
	return &staged{tmp: tmp.Name(), path: path}, nil
}
