package magma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSplitBlocks covers both padding modes, including the inputs where
// leading zero bytes make them disagree.
func TestSplitBlocks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		data   []byte
		fixed  []uint64
		legacy []uint64
	}{
		{
			name: "empty",
		},
		{
			name:   "hi",
			data:   []byte("Hi"),
			fixed:  []uint64{0x4869010101010101},
			legacy: []uint64{0x4869010101010101},
		},
		{
			// Bit length 7 is not a multiple of 64 either, so both
			// modes pad the two bytes up to one block.
			name:   "leading_zero_short",
			data:   []byte("\x00A"),
			fixed:  []uint64{0x0041010101010101},
			legacy: []uint64{0x0041010101010101},
		},
		{
			name:   "aligned",
			data:   []byte("Magma!!!"),
			fixed:  []uint64{0x4d61676d61212121},
			legacy: []uint64{0x4d61676d61212121},
		},
		{
			name:   "nine_bytes",
			data:   []byte("Magma!!!?"),
			fixed:  []uint64{0x4d61676d61212121, 0x3f01010101010101},
			legacy: []uint64{0x4d61676d61212121, 0x3f01010101010101},
		},
		{
			// An aligned block of zeros measures 0 bits, which is a
			// multiple of 64, so neither mode pads.
			name:   "zero_block",
			data:   make([]byte, 8),
			fixed:  []uint64{0},
			legacy: []uint64{0},
		},
		{
			// Aligned, but the leading zero byte makes the integer 56
			// bits wide: the legacy mode pads, yet there is nothing to
			// add up to the next multiple of 8 bytes.
			name:   "aligned_leading_zero",
			data:   []byte{0x00, 0x80, 1, 2, 3, 4, 5, 6},
			fixed:  []uint64{0x0080010203040506},
			legacy: []uint64{0x0080010203040506},
		},
		{
			// Nine bytes whose integer is exactly 64 bits wide: the
			// legacy mode skips padding and leaves a one-byte tail.
			name:   "hidden_length",
			data:   []byte{0x00, 0x80, 1, 2, 3, 4, 5, 6, 7},
			fixed:  []uint64{0x0080010203040506, 0x0701010101010101},
			legacy: []uint64{0x0080010203040506, 0x07},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.fixed, SplitBlocks(tc.data, PadByteLength))
			require.Equal(t, tc.legacy, SplitBlocks(tc.data, PadLegacyBitLength))
		})
	}
}

// TestSplitBlocksDoesNotModifyInput guards against padding in place.
func TestSplitBlocksDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	data := make([]byte, 3, 16)
	copy(data, "abc")
	SplitBlocks(data, PadByteLength)
	require.Equal(t, []byte{0, 0, 0, 0, 0}, data[3:8])
}

func TestBitLength(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, bitLength(nil))
	require.Equal(t, 0, bitLength([]byte{0, 0}))
	require.Equal(t, 15, bitLength([]byte("Hi")))
	require.Equal(t, 7, bitLength([]byte("\x00A")))
	require.Equal(t, 64, bitLength([]byte{0, 0x80, 0, 0, 0, 0, 0, 0, 0}))
}

func TestBlocksToBytes(t *testing.T) {
	t.Parallel()

	require.Empty(t, BlocksToBytes(nil))
	require.Equal(t,
		[]byte("Hi\x01\x01\x01\x01\x01\x01Magma!!!"),
		BlocksToBytes([]uint64{0x4869010101010101, 0x4d61676d61212121}),
	)
}

func TestParseBlock(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		block uint64
		err   error
	}{
		{input: "0", block: 0},
		{input: "18446744073709551615", block: 0xffffffffffffffff},
		{input: "0xC73E712A833B26C7", block: 0xc73e712a833b26c7},
		{input: "18446744073709551616", err: ErrBlockOutOfRange},
		{input: "0x10000000000000000", err: ErrBlockOutOfRange},
		{input: "-1", err: ErrBlockOutOfRange},
		{input: "", err: ErrInvalidBlock},
		{input: "12ab", err: ErrInvalidBlock},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			block, err := ParseBlock(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.block, block)
		})
	}
}

func TestPaddingModeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "bytelength", PadByteLength.String())
	require.Equal(t, "legacy-bitlength", PadLegacyBitLength.String())
	require.Equal(t, "PaddingMode(9)", PaddingMode(9).String())
}
