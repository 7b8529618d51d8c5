package magmahttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jedisct1/go-magma"
	"github.com/samber/lo"
)

// errBadRequest marks errors caused by a malformed request.
var errBadRequest = errors.New("bad request")

// keyParam is a cipher key given either as a JSON integer or as a string
// holding a decimal or 0x-prefixed hexadecimal integer.
type keyParam struct {
	n *big.Int
}

// UnmarshalJSON implements json.Unmarshaler.
func (k *keyParam) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	}

	n := new(big.Int)
	var ok bool
	if rest, found := strings.CutPrefix(strings.ToLower(text), "0x"); found {
		_, ok = n.SetString(rest, 16)
	} else {
		_, ok = n.SetString(text, 10)
	}
	if !ok {
		return fmt.Errorf("%w: cipher_key %q is not an integer",
			magma.ErrInvalidKey, text)
	}

	k.n = n
	return nil
}

// encryptRequest is the body of POST /magma/encrypt.
type encryptRequest struct {
	CipherKey keyParam `json:"cipher_key"`
	SBox      [][]int  `json:"sbox,omitempty"`
	OpenText  string   `json:"open_text"`
}

// encryptResponse is the reply to POST /magma/encrypt.
type encryptResponse struct {
	// SecretText is the hex encoding of the concatenated ciphertext
	// blocks.
	SecretText string `json:"secret_text"`

	// CipherBlocks lists the ciphertext blocks as decimal strings.
	CipherBlocks []string `json:"cipher_blocks"`

	// Blocks lists the padded plaintext blocks as decimal strings.
	Blocks []string `json:"blocks"`

	// MiddleValues holds one 32-round trace per block.
	MiddleValues []magma.Trace `json:"middle_values"`
}

// decryptRequest is the body of POST /magma/decrypt.
type decryptRequest struct {
	CipherKey keyParam `json:"cipher_key"`
	SBox      [][]int  `json:"sbox,omitempty"`
	Blocks    []string `json:"blocks"`
}

// decryptResponse is the reply to POST /magma/decrypt.
type decryptResponse struct {
	Blocks   []string `json:"blocks"`
	OpenHex  string   `json:"open_hex"`
	OpenText string   `json:"open_text"`
}

// sboxResponse is the reply to GET /magma/sbox.
type sboxResponse struct {
	SBox [][]int `json:"sbox"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// formatBlocks renders blocks as decimal strings. JSON numbers cannot carry
// 64-bit integers exactly in most clients.
func formatBlocks(blocks []uint64) []string {
	return lo.Map(blocks, func(b uint64, _ int) string {
		return strconv.FormatUint(b, 10)
	})
}

// parseBlocks parses decimal or hexadecimal block strings.
func parseBlocks(in []string) ([]uint64, error) {
	blocks := make([]uint64, len(in))
	for i, s := range in {
		b, err := magma.ParseBlock(s)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks[i] = b
	}
	return blocks, nil
}
