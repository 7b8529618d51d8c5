package magma

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Key is a 256-bit cipher key stored as a big-endian integer. Subkey 0 is
// the least-significant 32 bits, i.e. the last four bytes.
type Key [KeySize]byte

// Subkeys holds the eight 32-bit round keys derived from a Key.
type Subkeys [8]uint32

// keyModulus is 2^256.
var keyModulus = new(big.Int).Lsh(big.NewInt(1), 256)

// KeyFromBig converts a non-negative integer of at most 256 bits into a Key.
func KeyFromBig(n *big.Int) (Key, error) {
	var k Key
	if n == nil {
		return k, fmt.Errorf("%w: nil integer", ErrInvalidKey)
	}
	if n.Sign() < 0 {
		return k, ErrNegativeKey
	}
	if n.BitLen() > 256 {
		return k, fmt.Errorf("%w: got %d bits", ErrKeyTooLarge, n.BitLen())
	}
	n.FillBytes(k[:])
	return k, nil
}

// KeyFromBigTruncated reduces n modulo 2^256 and returns the result as a Key.
// Bits above 256 are discarded, negative values wrap to their residue.
func KeyFromBigTruncated(n *big.Int) Key {
	var k Key
	if n == nil {
		return k
	}
	r := new(big.Int).Mod(n, keyModulus)
	r.FillBytes(k[:])
	return k
}

// ParseKey parses a key written either as a decimal integer or as a
// hexadecimal integer with a 0x prefix.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty string", ErrInvalidKey)
	}

	n := new(big.Int)
	var ok bool
	if rest, found := strings.CutPrefix(strings.ToLower(s), "0x"); found {
		_, ok = n.SetString(rest, 16)
	} else {
		_, ok = n.SetString(s, 10)
	}
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return KeyFromBig(n)
}

// Big returns the key as a non-negative integer.
func (k Key) Big() *big.Int {
	return new(big.Int).SetBytes(k[:])
}

// String returns the key as 64 hexadecimal digits.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// KeySchedule splits a key into its eight round subkeys:
// subkey[i] = (key >> 32*i) & 0xFFFFFFFF.
func KeySchedule(k Key) Subkeys {
	var sk Subkeys
	for i := range sk {
		off := KeySize - 4*(i+1)
		sk[i] = binary.BigEndian.Uint32(k[off : off+4])
	}
	return sk
}
