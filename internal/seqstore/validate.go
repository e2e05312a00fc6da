package seqstore

import (
	"fmt"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Entry is the name and length of one FASTA record.
type Entry struct {
	Name   string
	Length int
}

// Validate reads every record of the FASTA at path, one at a time, and
// returns their names and lengths in file order. It fails if the file
// can't be parsed, has no records or repeats a name.
func Validate(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTA: %w", err)
	}
	defer f.Close()

	var entries []Entry
	seen := make(map[string]bool)
	sc := seqio.NewScanner(fasta.NewReader(f, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		name := s.Name()
		if seen[name] {
			return nil, fmt.Errorf("failed to validate %s: duplicate scaffold %s", path, name)
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, Length: len(s.Seq)})
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", path, err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("failed to validate %s: %w", path, ErrEmpty)
	}
	return entries, nil
}
