// Package seqstore is for point lookups of scaffolds in a FASTA by name,
// backed by a samtools style positional index (.fai).
package seqstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/biogo/hts/fai"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for a scaffold that isn't in the FASTA
	ErrNotFound = errors.New("scaffold not found")

	// ErrEmpty is returned for a FASTA without any records
	ErrEmpty = errors.New("empty FASTA")
)

// IndexSuffix is appended to a FASTA's path to find its index.
const IndexSuffix = ".fai"

// Store returns scaffold sequences and lengths by name.
type Store interface {
	// Lengths maps each scaffold name to its sequence length
	Lengths() map[string]int

	// Fetch returns the full sequence of a scaffold
	Fetch(name string) ([]byte, error)
}

// Indexed is a Store that seeks into a FASTA file using its index.
type Indexed struct {
	path  string
	f     *os.File
	idx   fai.Index
	file  *fai.File
	names []string
}

type options struct {
	writeIndex bool
	logger     *zap.Logger
}

// Option configures Open.
type Option func(*options)

// WithWriteIndex sets whether a missing index is saved next to the FASTA
// after it's built.
func WithWriteIndex(write bool) Option {
	return func(o *options) { o.writeIndex = write }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open opens the FASTA at path with its index. If there's no index at
// path + ".fai" one is built by reading through the FASTA once.
func Open(path string, opts ...Option) (*Indexed, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	idx, err := loadIndex(path, &o)
	if err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return nil, fmt.Errorf("failed to index %s: %w", path, ErrEmpty)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA: %w", err)
	}

	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return idx[names[i]].Start < idx[names[j]].Start
	})

	return &Indexed{
		path:  path,
		f:     f,
		idx:   idx,
		file:  fai.NewFile(f, idx),
		names: names,
	}, nil
}

// loadIndex reads the FASTA's .fai or builds one.
func loadIndex(path string, o *options) (fai.Index, error) {
	idxPath := path + IndexSuffix
	if idxFile, err := os.Open(idxPath); err == nil {
		defer idxFile.Close()

		idx, err := fai.ReadFrom(idxFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read index %s: %w", idxPath, err)
		}
		o.logger.Debug("read FASTA index", zap.String("index", idxPath), zap.Int("scaffolds", len(idx)))
		return idx, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	idx, err := buildIndex(path)
	if err != nil {
		return nil, err
	}
	o.logger.Info("built FASTA index", zap.String("fasta", path), zap.Int("scaffolds", len(idx)))

	if o.writeIndex {
		if err := writeIndex(idxPath, idx); err != nil {
			return nil, err
		}
		o.logger.Debug("wrote FASTA index", zap.String("index", idxPath))
	}
	return idx, nil
}

func buildIndex(path string) (fai.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		return nil, fmt.Errorf("failed to index %s: %w", path, ErrEmpty)
	}

	idx, err := fai.NewIndex(f)
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}
	return idx, nil
}

func writeIndex(idxPath string, idx fai.Index) error {
	out, err := os.Create(idxPath)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := fai.WriteTo(out, idx); err != nil {
		out.Close()
		return fmt.Errorf("failed to write index %s: %w", idxPath, err)
	}
	return out.Close()
}

// BuildIndex indexes the FASTA at path and writes the index to path + ".fai",
// replacing any that's there. Returns the number of indexed scaffolds.
func BuildIndex(path string) (int, error) {
	idx, err := buildIndex(path)
	if err != nil {
		return 0, err
	}
	if len(idx) == 0 {
		return 0, fmt.Errorf("failed to index %s: %w", path, ErrEmpty)
	}
	return len(idx), writeIndex(path+IndexSuffix, idx)
}

// Names returns the scaffold names in the order they're in the FASTA.
func (s *Indexed) Names() []string {
	return append([]string(nil), s.names...)
}

// Lengths maps each scaffold to its length.
func (s *Indexed) Lengths() map[string]int {
	lengths := make(map[string]int, len(s.idx))
	for name, rec := range s.idx {
		lengths[name] = rec.Length
	}
	return lengths
}

// Fetch returns the whole sequence of the named scaffold.
func (s *Indexed) Fetch(name string) ([]byte, error) {
	rec, ok := s.idx[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s not in %s", ErrNotFound, name, s.path)
	}
	return s.read(name, 0, rec.Length)
}

// FetchRange returns bases start through end (1-based, inclusive) of the
// named scaffold without reading the rest of it.
func (s *Indexed) FetchRange(name string, start, end int) ([]byte, error) {
	rec, ok := s.idx[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s not in %s", ErrNotFound, name, s.path)
	}
	if start < 1 || end < start || end > rec.Length {
		return nil, fmt.Errorf("range %d-%d outside of %s (length %d)", start, end, name, rec.Length)
	}
	return s.read(name, start-1, end)
}

// read is for a zero-based, half-open range.
func (s *Indexed) read(name string, start, end int) ([]byte, error) {
	r, err := s.file.SeqRange(name, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to seek to %s: %w", name, err)
	}

	seq := make([]byte, 0, end-start)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		seq = append(seq, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	if len(seq) != end-start {
		return nil, fmt.Errorf("failed to read %s: got %d bases, want %d", name, len(seq), end-start)
	}
	return seq, nil
}

// Close closes the underlying FASTA.
func (s *Indexed) Close() error {
	return s.f.Close()
}
