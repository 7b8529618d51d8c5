package magma

import "errors"

var (
	// ErrInvalidSBox is returned when a substitution table has the wrong
	// shape, holds a value outside 0..15, or has a row that is not a
	// permutation of 0..15.
	ErrInvalidSBox = errors.New("magma: invalid substitution table")

	// ErrKeyTooLarge is returned when a key does not fit in 256 bits.
	ErrKeyTooLarge = errors.New("magma: key exceeds 256 bits")

	// ErrNegativeKey is returned when a key integer is negative.
	ErrNegativeKey = errors.New("magma: key must not be negative")

	// ErrInvalidKey is returned when a key cannot be parsed.
	ErrInvalidKey = errors.New("magma: invalid key")

	// ErrBlockOutOfRange is returned when a block value does not fit in 64 bits.
	ErrBlockOutOfRange = errors.New("magma: block outside [0, 2^64)")

	// ErrInvalidBlock is returned when a block cannot be parsed.
	ErrInvalidBlock = errors.New("magma: invalid block")
)

const (
	// BlockSize is the cipher block size in bytes.
	BlockSize = 8

	// KeySize is the key size in bytes.
	KeySize = 32

	// Rounds is the number of Feistel rounds applied to every block.
	Rounds = 32
)
