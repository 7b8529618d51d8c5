// Package magma implements the GOST 28147-89 "Magma" block cipher in simple
// substitution mode, built for teaching: every encryption also returns the
// register state after each of its 32 rounds.
//
// Magma is a 32-round Feistel network over 64-bit blocks with a 256-bit key
// and a caller-chosen 8x16 substitution table (S-box). This package follows
// the arithmetic of a classroom variant rather than the published
// standard: the round function mixes in the subkey with XOR, subkey 0 is the
// least-significant word of the key, and the halves are not swapped after the
// last round. Its output therefore does not match the GOST test vectors.
//
// # Components
//
//   - KeySchedule splits a Key into eight 32-bit subkeys.
//   - RoundFunction XORs a half-block with a subkey, substitutes every nibble
//     through the S-box and rotates the result left by 11 bits.
//   - Cipher runs the encryption schedule (K0..K7 three times, then K7..K0)
//     and its exact inverse, recording a Trace of 32 RoundRecords.
//   - SplitBlocks pads a message with 0x01 bytes and cuts it into 64-bit
//     blocks.
//
// # Basic Usage
//
//	key, err := magma.ParseKey("0xffeeddccbbaa99887766554433221100" +
//	    "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, err := magma.NewCipher(key, magma.DefaultSBox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, block := range magma.SplitBlocks([]byte("Hi"), magma.PadByteLength) {
//	    ct, trace := c.EncryptBlock(block)
//	    fmt.Println(ct, len(trace)) // 32 rounds
//	    _ = c.DecryptBlock(ct)      // == block
//	}
//
// # Substitution Tables
//
// Tables are validated when they are built: NewSBox rejects anything that is
// not eight rows of sixteen entries where each row is a permutation of 0..15.
// Such a table would make the round function lose information and the
// ciphertext could not be decrypted. DefaultSBox returns the table of the
// classroom variant and SBoxParamZ the id-tc26-gost-28147-param-Z table.
//
// # Padding
//
// SplitBlocks pads by byte length (PadByteLength). PadLegacyBitLength keeps
// the legacy behavior, which measures the input as a big-endian integer
// and so misjudges inputs that start with zero bytes.
//
// # Security
//
// This is an implementation for study. It is not constant time,
// offers no chaining or authenticated modes and must not protect real data.
//
// # Thread Safety
//
// A Cipher holds only its subkeys and a private copy of the table, so it is
// safe to use from multiple goroutines. Blocks are independent and may be
// processed in any order.
package magma
