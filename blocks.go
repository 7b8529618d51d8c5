package magma

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/samber/lo"
)

// PaddingMode selects how SplitBlocks decides whether input needs padding.
type PaddingMode uint8

const (
	// PadByteLength pads whenever the byte length is not a multiple of
	// BlockSize.
	PadByteLength PaddingMode = iota

	// PadLegacyBitLength reproduces the legacy behavior: padding is
	// decided from the bit length of the input read as a big-endian
	// integer, which ignores leading zero bytes. When those hide the true
	// length no padding may be added and the final block is shorter than
	// BlockSize bytes.
	PadLegacyBitLength
)

// PadByte is the value appended to fill the last block.
const PadByte = 0x01

// String returns the mode name.
func (m PaddingMode) String() string {
	switch m {
	case PadByteLength:
		return "bytelength"
	case PadLegacyBitLength:
		return "legacy-bitlength"
	default:
		return fmt.Sprintf("PaddingMode(%d)", m)
	}
}

// SplitBlocks pads data with PadByte as selected by mode and cuts it into
// big-endian 64-bit blocks. Empty input yields no blocks.
func SplitBlocks(data []byte, mode PaddingMode) []uint64 {
	if len(data) == 0 {
		return nil
	}

	padded := data
	if needsPadding(data, mode) {
		padded = pad(data)
	}

	chunks := lo.Chunk(padded, BlockSize)
	blocks := make([]uint64, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = readBlock(chunk)
	}

	log.Tracef("Split %d bytes into %d blocks (padding=%v)", len(data),
		len(blocks), mode)

	return blocks
}

// needsPadding reports whether pad should be applied to data.
func needsPadding(data []byte, mode PaddingMode) bool {
	if mode == PadLegacyBitLength {
		return bitLength(data)%(8*BlockSize) != 0
	}
	return len(data)%BlockSize != 0
}

// pad returns a copy of data extended with PadByte up to the next multiple
// of BlockSize.
func pad(data []byte) []byte {
	n := len(data)
	if rem := n % BlockSize; rem != 0 {
		n += BlockSize - rem
	}

	out := make([]byte, n)
	copy(out, data)
	for i := len(data); i < n; i++ {
		out[i] = PadByte
	}
	return out
}

// bitLength returns the bit length of data read as a big-endian unsigned
// integer. Leading zero bytes do not count.
func bitLength(data []byte) int {
	for i, b := range data {
		if b != 0 {
			return 8*(len(data)-i-1) + bits.Len8(b)
		}
	}
	return 0
}

// readBlock reads up to BlockSize bytes as a big-endian integer.
func readBlock(chunk []byte) uint64 {
	if len(chunk) == BlockSize {
		return binary.BigEndian.Uint64(chunk)
	}

	var v uint64
	for _, b := range chunk {
		v = v<<8 | uint64(b)
	}
	return v
}

// BlocksToBytes writes blocks back to back in big-endian order.
func BlocksToBytes(blocks []uint64) []byte {
	out := make([]byte, 0, len(blocks)*BlockSize)
	for _, b := range blocks {
		out = binary.BigEndian.AppendUint64(out, b)
	}
	return out
}

// ParseBlock parses a block written as a decimal integer or as a hexadecimal
// integer with a 0x prefix. Values outside [0, 2^64) fail with
// ErrBlockOutOfRange.
func ParseBlock(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	n := new(big.Int)
	var ok bool
	if rest, found := strings.CutPrefix(strings.ToLower(s), "0x"); found {
		_, ok = n.SetString(rest, 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBlock, s)
	}
	if n.Sign() < 0 || n.BitLen() > 64 {
		return 0, fmt.Errorf("%w: %s", ErrBlockOutOfRange, s)
	}
	return n.Uint64(), nil
}
