package magma

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"math/bits"
)

// roundRotation is the left rotation applied after substitution.
const roundRotation = 11

// encryptSchedule lists the subkey index used by each encryption round:
// K0..K7 three times, then K7..K0.
var encryptSchedule = [Rounds]uint8{
	0, 1, 2, 3, 4, 5, 6, 7,
	0, 1, 2, 3, 4, 5, 6, 7,
	0, 1, 2, 3, 4, 5, 6, 7,
	7, 6, 5, 4, 3, 2, 1, 0,
}

// decryptSchedule is encryptSchedule reversed: K0..K7, then K7..K0 three
// times.
var decryptSchedule = [Rounds]uint8{
	0, 1, 2, 3, 4, 5, 6, 7,
	7, 6, 5, 4, 3, 2, 1, 0,
	7, 6, 5, 4, 3, 2, 1, 0,
	7, 6, 5, 4, 3, 2, 1, 0,
}

// registerRole selects which register receives the round function output.
type registerRole uint8

const (
	// mixIntoRight computes right' = left ^ f(right), left' = right.
	mixIntoRight registerRole = iota

	// mixIntoLeft computes left' = right ^ f(left), right' = left.
	mixIntoLeft
)

// Cipher is a Magma instance bound to one key and one substitution table.
// It holds no mutable state and is safe for concurrent use.
type Cipher struct {
	subkeys Subkeys
	sbox    SBox
}

var _ cipher.Block = (*Cipher)(nil)

// NewCipher derives the round keys from key and copies sbox. The table must
// come from NewSBox, DefaultSBox or SBoxParamZ.
func NewCipher(key Key, sbox *SBox) (*Cipher, error) {
	if !sbox.usable() {
		return nil, fmt.Errorf("%w: table is nil or was not built "+
			"with NewSBox", ErrInvalidSBox)
	}

	c := &Cipher{
		subkeys: KeySchedule(key),
		sbox:    *sbox,
	}

	log.Debugf("Created cipher with subkeys %v", newLogClosure(func() string {
		return fmt.Sprintf("%08x", c.subkeys[:])
	}))

	return c, nil
}

// RoundFunction is the Magma round function f: the value is XORed with the
// subkey, every nibble is substituted through its sbox row and the word is
// rotated left by 11 bits.
func RoundFunction(sbox *SBox, value, subkey uint32) uint32 {
	return bits.RotateLeft32(sbox.substitute(value^subkey), roundRotation)
}

// feistel runs the 32 rounds of schedule over block. Each round applies f
// with the scheduled subkey to the register chosen by role and swaps the
// registers. There is no final swap. rec may be nil.
func (c *Cipher) feistel(block uint64, schedule *[Rounds]uint8,
	role registerRole, rec *traceRecorder) uint64 {

	left := uint32(block >> 32)
	right := uint32(block)

	for _, idx := range schedule {
		k := c.subkeys[idx]

		switch role {
		case mixIntoRight:
			left, right = right, left^RoundFunction(&c.sbox, right, k)

		case mixIntoLeft:
			left, right = right^RoundFunction(&c.sbox, left, k), left
		}

		rec.record(left, right, k)
	}

	return uint64(left)<<32 | uint64(right)
}

// EncryptBlock encrypts one 64-bit block and returns the ciphertext together
// with the 32 round records.
func (c *Cipher) EncryptBlock(block uint64) (uint64, Trace) {
	rec := newTraceRecorder()
	out := c.feistel(block, &encryptSchedule, mixIntoRight, rec)

	log.Tracef("Encrypted block %016x -> %016x", block, out)

	return out, rec.records
}

// DecryptBlock inverts EncryptBlock.
func (c *Cipher) DecryptBlock(block uint64) uint64 {
	out := c.feistel(block, &decryptSchedule, mixIntoLeft, nil)

	log.Tracef("Decrypted block %016x -> %016x", block, out)

	return out
}

// EncryptBlocks encrypts every block independently.
func (c *Cipher) EncryptBlocks(blocks []uint64) ([]uint64, []Trace) {
	out := make([]uint64, len(blocks))
	traces := make([]Trace, len(blocks))
	for i, b := range blocks {
		out[i], traces[i] = c.EncryptBlock(b)
	}
	return out, traces
}

// DecryptBlocks decrypts every block independently.
func (c *Cipher) DecryptBlocks(blocks []uint64) []uint64 {
	out := make([]uint64, len(blocks))
	for i, b := range blocks {
		out[i] = c.DecryptBlock(b)
	}
	return out
}

// BlockSize returns the cipher's block size.
func (c *Cipher) BlockSize() int {
	return BlockSize
}

// Encrypt encrypts the first block in src into dst, reading and writing the
// block big-endian. Dst and src may overlap entirely.
func (c *Cipher) Encrypt(dst, src []byte) {
	checkBuffers(dst, src)
	out, _ := c.EncryptBlock(binary.BigEndian.Uint64(src))
	binary.BigEndian.PutUint64(dst, out)
}

// Decrypt decrypts the first block in src into dst. Dst and src may overlap
// entirely.
func (c *Cipher) Decrypt(dst, src []byte) {
	checkBuffers(dst, src)
	out := c.DecryptBlock(binary.BigEndian.Uint64(src))
	binary.BigEndian.PutUint64(dst, out)
}

func checkBuffers(dst, src []byte) {
	if len(src) < BlockSize {
		panic("magma: input not full block")
	}
	if len(dst) < BlockSize {
		panic("magma: output not full block")
	}
}

// Encrypt encrypts a single block with key and sbox.
func Encrypt(block uint64, key Key, sbox *SBox) (uint64, Trace, error) {
	c, err := NewCipher(key, sbox)
	if err != nil {
		return 0, nil, err
	}
	out, trace := c.EncryptBlock(block)
	return out, trace, nil
}

// Decrypt decrypts a single block with key and sbox.
func Decrypt(block uint64, key Key, sbox *SBox) (uint64, error) {
	c, err := NewCipher(key, sbox)
	if err != nil {
		return 0, err
	}
	return c.DecryptBlock(block), nil
}
