package magma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rowsOf(s *SBox) [][]uint8 {
	rows := s.Rows()
	out := make([][]uint8, len(rows))
	for i := range rows {
		out[i] = append([]uint8(nil), rows[i][:]...)
	}
	return out
}

// TestBuiltinTablesArePermutations validates the shipped tables through the
// same checks applied to caller tables.
func TestBuiltinTablesArePermutations(t *testing.T) {
	t.Parallel()

	for name, s := range map[string]*SBox{
		"default": DefaultSBox(),
		"paramZ":  SBoxParamZ(),
	} {
		rebuilt, err := NewSBox(rowsOf(s))
		require.NoError(t, err, name)
		require.Equal(t, s.Rows(), rebuilt.Rows(), name)
	}

	// The first column of the default table drives the worked example.
	s := DefaultSBox()
	var column []uint8
	for i := 0; i < SBoxRows; i++ {
		column = append(column, s.Lookup(i, 0))
	}
	require.Equal(t, []uint8{3, 6, 12, 6, 6, 13, 9, 8}, column)
}

// TestNewSBoxRejects covers every ConfigurationError case.
func TestNewSBoxRejects(t *testing.T) {
	t.Parallel()

	valid := rowsOf(DefaultSBox())

	testCases := []struct {
		name   string
		mutate func([][]uint8) [][]uint8
	}{
		{
			name: "too_few_rows",
			mutate: func(r [][]uint8) [][]uint8 {
				return r[:7]
			},
		},
		{
			name: "too_many_rows",
			mutate: func(r [][]uint8) [][]uint8 {
				return append(r, r[0])
			},
		},
		{
			name: "short_row",
			mutate: func(r [][]uint8) [][]uint8 {
				r[3] = r[3][:15]
				return r
			},
		},
		{
			name: "entry_out_of_range",
			mutate: func(r [][]uint8) [][]uint8 {
				r[5][2] = 16
				return r
			},
		},
		{
			name: "not_a_permutation",
			mutate: func(r [][]uint8) [][]uint8 {
				r[7][0] = r[7][1]
				return r
			},
		},
		{
			name: "nil",
			mutate: func([][]uint8) [][]uint8 {
				return nil
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSBox(tc.mutate(rowsOf(DefaultSBox())))
			require.ErrorIs(t, err, ErrInvalidSBox)
		})
	}

	// The fixtures above must not have touched the valid rows.
	_, err := NewSBox(valid)
	require.NoError(t, err)
}

func TestNewSBoxFromInts(t *testing.T) {
	t.Parallel()

	s, err := NewSBoxFromInts(DefaultSBox().Ints())
	require.NoError(t, err)
	require.Equal(t, DefaultSBox().Rows(), s.Rows())

	rows := DefaultSBox().Ints()
	rows[0][0] = -1
	_, err = NewSBoxFromInts(rows)
	require.ErrorIs(t, err, ErrInvalidSBox)

	rows[0][0] = 300
	_, err = NewSBoxFromInts(rows)
	require.ErrorIs(t, err, ErrInvalidSBox)
}

// TestSubstitutePerNibble checks that row i acts on nibble i only.
func TestSubstitutePerNibble(t *testing.T) {
	t.Parallel()

	s := DefaultSBox()
	for i := 0; i < SBoxRows; i++ {
		for v := uint32(0); v < SBoxColumns; v++ {
			in := v << (4 * i)
			out := s.substitute(in)

			want := uint32(s.Lookup(i, uint8(v))) << (4 * i)
			for j := 0; j < SBoxRows; j++ {
				if j != i {
					want |= uint32(s.Lookup(j, 0)) << (4 * j)
				}
			}
			require.Equal(t, want, out, "row %d value %d", i, v)
		}
	}
}
