package curate

import (
	"bytes"
	"fmt"

	"github.com/jjtimmons/tpfasta/internal/tpf"
)

// gapBase fills the space between two fragments of a scaffold
const gapBase = 'N'

// Fragment is a cut of a source scaffold, already on its destination's strand.
type Fragment struct {
	// Record is the edit line the fragment was cut for
	Record *tpf.Record

	// Seq is the oriented sequence
	Seq []byte
}

// Scaffold is a new scaffold and the fragments that make it up,
// in tiling path order.
type Scaffold struct {
	Name      string
	Fragments []Fragment
}

// Len is the length of the scaffold once joined with gap N's between fragments.
func (s Scaffold) Len(gap int) int {
	if len(s.Fragments) == 0 {
		return 0
	}

	n := gap * (len(s.Fragments) - 1)
	for _, f := range s.Fragments {
		n += len(f.Seq)
	}
	return n
}

// Join concatenates the fragments with a run of gap N's between each
// neighboring pair. There's no gap before the first or after the last.
func (s Scaffold) Join(gap int) []byte {
	filler := bytes.Repeat([]byte{gapBase}, gap)

	joined := make([]byte, 0, s.Len(gap))
	for i, f := range s.Fragments {
		if i > 0 {
			joined = append(joined, filler...)
		}
		joined = append(joined, f.Seq...)
	}
	return joined
}

// Assemble groups fragments into their destination scaffolds. Scaffolds
// are in the order their names first appear in records, and each
// scaffold's fragments are in the order of their records. Every record
// needs exactly one fragment.
func Assemble(records []tpf.Record, fragments []Fragment) ([]Scaffold, error) {
	byRecord := make(map[*tpf.Record][]byte, len(fragments))
	for _, f := range fragments {
		if _, dup := byRecord[f.Record]; dup {
			return nil, fmt.Errorf("line %d (%s) was cut more than once", f.Record.Line, f.Record)
		}
		byRecord[f.Record] = f.Seq
	}

	var scaffolds []Scaffold
	index := make(map[string]int) // destination name to its index in scaffolds
	for i := range records {
		rec := &records[i]
		seq, ok := byRecord[rec]
		if !ok {
			return nil, fmt.Errorf("line %d (%s) has no fragment", rec.Line, rec)
		}

		j, seen := index[rec.Destination]
		if !seen {
			j = len(scaffolds)
			index[rec.Destination] = j
			scaffolds = append(scaffolds, Scaffold{Name: rec.Destination})
		}
		scaffolds[j].Fragments = append(scaffolds[j].Fragments, Fragment{Record: rec, Seq: seq})
	}

	if len(byRecord) != len(records) {
		return nil, fmt.Errorf("%d fragments for %d records", len(byRecord), len(records))
	}
	return scaffolds, nil
}
