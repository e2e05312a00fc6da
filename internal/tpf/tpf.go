// Package tpf is for reading tiling path files: the curation
// instructions describing how original scaffolds are cut, flipped and
// re-joined into new scaffolds.
package tpf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed is returned when an edit line can't be parsed.
var ErrMalformed = errors.New("malformed tiling path")

// editMarker starts every edit line. All other lines (GAP etc) are skipped
const editMarker = "?"

// Orientation is the strand of a fragment relative to its new scaffold.
type Orientation int

const (
	// Plus fragments are used as-is
	Plus Orientation = iota

	// Minus fragments are reverse complemented
	Minus
)

// String returns the TPF literal for the orientation.
func (o Orientation) String() string {
	if o == Minus {
		return "MINUS"
	}
	return "PLUS"
}

// OrientationPolicy decides what happens to orientations other
// than PLUS and MINUS.
type OrientationPolicy int

const (
	// DefaultPlus treats unknown orientations as PLUS
	DefaultPlus OrientationPolicy = iota

	// Strict fails the parse on an unknown orientation
	Strict
)

// Record is a single edit line of a TPF.
type Record struct {
	// Source is the name of the original scaffold being cut
	Source string

	// Start is the 1-based first base of the cut
	Start int

	// End is the 1-based last base of the cut (inclusive)
	End int

	// Destination is the (renamed) scaffold this fragment belongs to
	Destination string

	// Orientation of the fragment in Destination
	Orientation Orientation

	// Line is the record's 1-based line number in the TPF
	Line int
}

// String is the record as it's listed in the provenance report.
func (r Record) String() string {
	return fmt.Sprintf("%s -- %d -- %d", r.Source, r.Start, r.End)
}

// Len is the number of bases the record covers.
func (r Record) Len() int {
	return r.End - r.Start + 1
}

// Rename is a destination name prefix rewrite, ex: RL_3 -> SUPER_3.
// The zero Rename leaves names as they are.
type Rename struct {
	From string
	To   string
}

// DefaultRename is the rename Parse applies unless WithRename is given.
var DefaultRename = Rename{From: "RL_", To: "SUPER_"}

// Apply rewrites name's prefix. Names without the prefix are unchanged.
func (r Rename) Apply(name string) string {
	if r.From == "" || !strings.HasPrefix(name, r.From) {
		return name
	}
	return r.To + strings.TrimPrefix(name, r.From)
}

type options struct {
	rename  Rename
	policy  OrientationPolicy
	unknown func(line int, orientation string)
}

// Option configures Parse.
type Option func(*options)

// WithRename sets the destination rename rule. Default is DefaultRename.
func WithRename(r Rename) Option {
	return func(o *options) { o.rename = r }
}

// WithOrientationPolicy sets how unknown orientations are handled.
func WithOrientationPolicy(p OrientationPolicy) Option {
	return func(o *options) { o.policy = p }
}

// OnUnknownOrientation is called for every orientation resolved by
// DefaultPlus, so callers can log it.
func OnUnknownOrientation(f func(line int, orientation string)) Option {
	return func(o *options) { o.unknown = f }
}

// ReadFile parses the TPF at path.
func ReadFile(path string, opts ...Option) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tiling path: %w", err)
	}
	defer f.Close()

	records, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// Parse reads every edit line of a TPF, in file order. A single bad
// line fails the whole parse.
func Parse(r io.Reader, opts ...Option) ([]Record, error) {
	o := options{rename: DefaultRename}
	for _, opt := range opts {
		opt(&o)
	}

	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if !strings.HasPrefix(line, editMarker) {
			continue
		}

		rec, err := parseLine(line, lineNo, &o)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tiling path: %w", err)
	}

	return records, nil
}

// parseLine turns "?\tSCAFFOLD_12:1-900734\tRL_3\tMINUS" into a Record.
func parseLine(line string, lineNo int, o *options) (Record, error) {
	fields := strings.Fields(strings.ReplaceAll(line, "\t", " "))
	if len(fields) < 4 {
		return Record{}, fmt.Errorf("%w: line %d: expected 4 fields, got %d: %q", ErrMalformed, lineNo, len(fields), line)
	}

	loc := fields[1]
	colon := strings.LastIndex(loc, ":")
	if colon < 1 {
		return Record{}, fmt.Errorf("%w: line %d: no scaffold:start-end in %q", ErrMalformed, lineNo, loc)
	}
	source, coords := loc[:colon], loc[colon+1:]

	startEnd := strings.Split(coords, "-")
	if len(startEnd) != 2 {
		return Record{}, fmt.Errorf("%w: line %d: bad range %q", ErrMalformed, lineNo, coords)
	}
	start, err := strconv.Atoi(startEnd[0])
	if err != nil {
		return Record{}, fmt.Errorf("%w: line %d: bad start %q", ErrMalformed, lineNo, startEnd[0])
	}
	end, err := strconv.Atoi(startEnd[1])
	if err != nil {
		return Record{}, fmt.Errorf("%w: line %d: bad end %q", ErrMalformed, lineNo, startEnd[1])
	}
	if start < 1 || start > end {
		return Record{}, fmt.Errorf("%w: line %d: range %d-%d isn't 1 <= start <= end", ErrMalformed, lineNo, start, end)
	}

	orientation, err := parseOrientation(fields[3], lineNo, o)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Source:      source,
		Start:       start,
		End:         end,
		Destination: o.rename.Apply(fields[2]),
		Orientation: orientation,
		Line:        lineNo,
	}, nil
}

func parseOrientation(s string, lineNo int, o *options) (Orientation, error) {
	switch s {
	case "PLUS":
		return Plus, nil
	case "MINUS":
		return Minus, nil
	}

	if o.policy == Strict {
		return Plus, fmt.Errorf("%w: line %d: unknown orientation %q", ErrMalformed, lineNo, s)
	}
	if o.unknown != nil {
		o.unknown(lineNo, s)
	}
	return Plus, nil
}

// Subset returns the records cut from the source scaffold, in their
// original order. The pointers are into records.
func Subset(records []Record, source string) []*Record {
	var subset []*Record
	for i := range records {
		if records[i].Source == source {
			subset = append(subset, &records[i])
		}
	}
	return subset
}

// DestinationNames returns the unique destination scaffolds in the order
// they first appear.
func DestinationNames(records []Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if seen[r.Destination] {
			continue
		}
		seen[r.Destination] = true
		names = append(names, r.Destination)
	}
	return names
}

// Sources returns the unique source scaffolds in the order they first appear.
func Sources(records []Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if !seen[r.Source] {
			seen[r.Source] = true
			names = append(names, r.Source)
		}
	}
	return names
}
