package magma

import "fmt"

const (
	// SBoxRows is the number of substitution rows, one per nibble of a
	// 32-bit word.
	SBoxRows = 8

	// SBoxColumns is the number of entries in every substitution row.
	SBoxColumns = 16
)

// SBox is a validated 8x16 substitution table. Row i substitutes nibble i of
// a 32-bit word (row 0 is the least-significant nibble), indexed by the
// nibble's current value. Every row is a permutation of 0..15, so the round
// function is invertible.
//
// An SBox is immutable once built; the zero value is not usable.
type SBox struct {
	rows  [SBoxRows][SBoxColumns]uint8
	valid bool
}

// defaultRows is the table the classroom variant of Magma has always used.
var defaultRows = [SBoxRows][SBoxColumns]uint8{
	{3, 5, 6, 1, 0, 8, 14, 10, 2, 11, 9, 12, 13, 4, 7, 15},
	{6, 4, 15, 5, 10, 7, 0, 2, 14, 11, 8, 13, 1, 12, 3, 9},
	{12, 7, 2, 1, 8, 9, 11, 5, 15, 6, 10, 4, 3, 14, 0, 13},
	{6, 10, 5, 14, 1, 4, 15, 7, 12, 11, 2, 9, 8, 3, 13, 0},
	{6, 0, 7, 14, 3, 4, 13, 8, 11, 15, 10, 5, 12, 2, 1, 9},
	{13, 1, 15, 5, 3, 14, 7, 2, 0, 4, 6, 8, 12, 9, 10, 11},
	{9, 14, 4, 2, 8, 10, 15, 6, 0, 12, 5, 13, 3, 11, 7, 1},
	{8, 9, 12, 10, 6, 14, 2, 3, 13, 1, 7, 0, 5, 11, 15, 4},
}

// paramZRows is id-tc26-gost-28147-param-Z from GOST R 34.12-2015.
var paramZRows = [SBoxRows][SBoxColumns]uint8{
	{0xC, 0x4, 0x6, 0x2, 0xA, 0x5, 0xB, 0x9, 0xE, 0x8, 0xD, 0x7, 0x0, 0x3, 0xF, 0x1},
	{0x6, 0x8, 0x2, 0x3, 0x9, 0xA, 0x5, 0xC, 0x1, 0xE, 0x4, 0x7, 0xB, 0xD, 0x0, 0xF},
	{0xB, 0x3, 0x5, 0x8, 0x2, 0xF, 0xA, 0xD, 0xE, 0x1, 0x7, 0x4, 0xC, 0x9, 0x6, 0x0},
	{0xC, 0x8, 0x2, 0x1, 0xD, 0x4, 0xF, 0x6, 0x7, 0x0, 0xA, 0x5, 0x3, 0xE, 0x9, 0xB},
	{0x7, 0xF, 0x5, 0xA, 0x8, 0x1, 0x6, 0xD, 0x0, 0x9, 0x3, 0xE, 0xB, 0x4, 0x2, 0xC},
	{0x5, 0xD, 0xF, 0x6, 0x9, 0x2, 0xC, 0xA, 0xB, 0x7, 0x8, 0x1, 0x4, 0x3, 0xE, 0x0},
	{0x8, 0xE, 0x2, 0x5, 0x6, 0x9, 0x1, 0xC, 0xF, 0x4, 0xB, 0x0, 0xD, 0xA, 0x3, 0x7},
	{0x1, 0x7, 0xE, 0xD, 0x0, 0x5, 0x8, 0x3, 0x4, 0xF, 0xA, 0x6, 0x9, 0xC, 0xB, 0x2},
}

// DefaultSBox returns the substitution table of the classroom variant.
func DefaultSBox() *SBox {
	return &SBox{rows: defaultRows, valid: true}
}

// SBoxParamZ returns the id-tc26-gost-28147-param-Z substitution table.
func SBoxParamZ() *SBox {
	return &SBox{rows: paramZRows, valid: true}
}

// NewSBox validates rows and builds an SBox from them. It fails with
// ErrInvalidSBox unless there are exactly 8 rows of 16 entries each and
// every row is a permutation of 0..15.
func NewSBox(rows [][]uint8) (*SBox, error) {
	if len(rows) != SBoxRows {
		return nil, fmt.Errorf("%w: expected %d rows, got %d",
			ErrInvalidSBox, SBoxRows, len(rows))
	}

	s := &SBox{valid: true}
	for i, row := range rows {
		if len(row) != SBoxColumns {
			return nil, fmt.Errorf("%w: row %d has %d entries, "+
				"expected %d", ErrInvalidSBox, i, len(row),
				SBoxColumns)
		}

		var seen uint16
		for j, v := range row {
			if v > 0xF {
				return nil, fmt.Errorf("%w: row %d column %d "+
					"holds %d, entries must be 0..15",
					ErrInvalidSBox, i, j, v)
			}
			if seen&(1<<v) != 0 {
				return nil, fmt.Errorf("%w: row %d repeats %d, "+
					"rows must be permutations of 0..15",
					ErrInvalidSBox, i, v)
			}
			seen |= 1 << v
			s.rows[i][j] = v
		}
	}

	return s, nil
}

// NewSBoxFromInts is like NewSBox but accepts rows of plain integers, as they
// arrive from JSON or YAML documents.
func NewSBoxFromInts(rows [][]int) (*SBox, error) {
	converted := make([][]uint8, len(rows))
	for i, row := range rows {
		converted[i] = make([]uint8, len(row))
		for j, v := range row {
			if v < 0 || v > 0xF {
				return nil, fmt.Errorf("%w: row %d column %d "+
					"holds %d, entries must be 0..15",
					ErrInvalidSBox, i, j, v)
			}
			converted[i][j] = uint8(v)
		}
	}
	return NewSBox(converted)
}

// Rows returns a copy of the table.
func (s *SBox) Rows() [SBoxRows][SBoxColumns]uint8 {
	return s.rows
}

// Ints returns the table as nested int slices, the shape used by JSON and
// YAML documents.
func (s *SBox) Ints() [][]int {
	out := make([][]int, SBoxRows)
	for i, row := range s.rows {
		out[i] = make([]int, SBoxColumns)
		for j, v := range row {
			out[i][j] = int(v)
		}
	}
	return out
}

// Lookup returns the substitute for value in the given row. Only the low
// nibble of value is used.
func (s *SBox) Lookup(row int, value uint8) uint8 {
	return s.rows[row][value&0xF]
}

// usable reports whether s was built by one of the constructors.
func (s *SBox) usable() bool {
	return s != nil && s.valid
}

// substitute replaces every nibble of x with its row's substitute.
func (s *SBox) substitute(x uint32) uint32 {
	var out uint32
	for i := 0; i < SBoxRows; i++ {
		shift := uint(4 * i)
		out |= uint32(s.rows[i][(x>>shift)&0xF]) << shift
	}
	return out
}
