package magma_test

import (
	"fmt"

	"github.com/jedisct1/go-magma"
)

const exampleKey = "0xffeeddccbbaa99887766554433221100f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff"

// ExampleNewCipher demonstrates encrypting a message block by block
func ExampleNewCipher() {
	key, err := magma.ParseKey(exampleKey)
	if err != nil {
		panic(err)
	}

	c, err := magma.NewCipher(key, magma.DefaultSBox())
	if err != nil {
		panic(err)
	}

	for _, block := range magma.SplitBlocks([]byte("Hello, Magma!"), magma.PadByteLength) {
		ct, trace := c.EncryptBlock(block)
		fmt.Printf("%016x -> %016x (%d rounds)\n", block, ct, len(trace))
	}

	// Output:
	// 48656c6c6f2c204d -> af95e764e19f3105 (32 rounds)
	// 61676d6121010101 -> b2d1ba530de78019 (32 rounds)
}

// ExampleCipher_DecryptBlock demonstrates the round trip
func ExampleCipher_DecryptBlock() {
	key, _ := magma.ParseKey(exampleKey)
	c, _ := magma.NewCipher(key, magma.DefaultSBox())

	ct, _ := c.EncryptBlock(0xfedcba9876543210)
	fmt.Printf("ciphertext: %016x\n", ct)
	fmt.Printf("plaintext:  %016x\n", c.DecryptBlock(ct))

	// Output:
	// ciphertext: c73e712a833b26c7
	// plaintext:  fedcba9876543210
}

// ExampleRoundFunction shows f with a zero input and subkey, which reduces
// to the rotated first column of the table
func ExampleRoundFunction() {
	fmt.Println(magma.RoundFunction(magma.DefaultSBox(), 0, 0))

	// Output:
	// 3009616974
}

// ExampleNewSBox demonstrates table validation
func ExampleNewSBox() {
	rows := make([][]uint8, 8)
	for i := range rows {
		rows[i] = make([]uint8, 16) // all zeros: not a permutation
	}

	_, err := magma.NewSBox(rows)
	fmt.Println(err)

	// Output:
	// magma: invalid substitution table: row 0 repeats 0, rows must be permutations of 0..15
}
