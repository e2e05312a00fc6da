package curate

import (
	"errors"
	"fmt"

	"github.com/jjtimmons/tpfasta/internal/tpf"
)

var (
	// ErrOutOfBounds is returned for a range outside of its scaffold
	ErrOutOfBounds = errors.New("coordinates out of bounds")

	// ErrInvalidBase is returned when a base has no complement
	ErrInvalidBase = errors.New("invalid base")
)

// complement maps each IUPAC nucleotide code to its complement. Case is
// kept and zero means the byte has no complement.
var complement [256]byte

func init() {
	from := "ACGTUMRWSYKVHDBN-.*"
	to := "TGCAAKYWSRMBDHVN-.*"
	for i := range from {
		complement[from[i]] = to[i]
		if lower := from[i] | 0x20; lower >= 'a' && lower <= 'z' {
			complement[lower] = to[i] | 0x20
		}
	}
}

// Complement returns the complement of seq, base by base.
func Complement(seq []byte) ([]byte, error) {
	comp := make([]byte, len(seq))
	for i, b := range seq {
		c := complement[b]
		if c == 0 {
			return nil, fmt.Errorf("%w: %q at %d", ErrInvalidBase, b, i+1)
		}
		comp[i] = c
	}
	return comp, nil
}

// Reverse reverses seq in place.
func Reverse(seq []byte) {
	for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
		seq[i], seq[j] = seq[j], seq[i]
	}
}

// Slice cuts bases start through end (1-based, inclusive) from seq and
// puts them on the strand of o. MINUS ranges are complemented, then
// reversed. The result doesn't share memory with seq.
func Slice(seq []byte, start, end int, o tpf.Orientation) ([]byte, error) {
	if start < 1 || end > len(seq) || start > end {
		return nil, fmt.Errorf("%w: %d-%d of a %d bp sequence", ErrOutOfBounds, start, end, len(seq))
	}
	cut := seq[start-1 : end]

	if o != tpf.Minus {
		return append([]byte(nil), cut...), nil
	}

	comp, err := Complement(cut)
	if err != nil {
		return nil, err
	}
	Reverse(comp)
	return comp, nil
}
