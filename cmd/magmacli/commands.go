package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedisct1/go-magma"
	"github.com/jedisct1/go-magma/sboxfile"
	"github.com/samber/lo"
	"github.com/urfave/cli"
)

var inputFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "text",
		Usage: "The open text, taken as raw bytes.",
	},
	cli.StringFlag{
		Name:  "hex",
		Usage: "The open text, hex encoded.",
	},
	cli.BoolFlag{
		Name: "legacy",
		Usage: "Decide padding from the bit length of the input read " +
			"as an integer, ignoring leading zero bytes.",
	},
}

var encryptCommand = cli.Command{
	Name:     "encrypt",
	Category: "Cipher",
	Usage:    "Pad and encrypt a message block by block.",
	Description: `
	Split the message given with --text or --hex into 64-bit blocks and
	encrypt each one independently. With --trace the register state after
	every round is included in the output.`,
	Flags: append([]cli.Flag{
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Include the 32 round records of each block.",
		},
	}, inputFlags...),
	Action: encrypt,
}

type encryptOutput struct {
	Blocks       []string      `json:"blocks"`
	CipherBlocks []string      `json:"cipher_blocks"`
	SecretText   string        `json:"secret_text"`
	MiddleValues []magma.Trace `json:"middle_values,omitempty"`
}

func encrypt(ctx *cli.Context) error {
	c, err := cipherFromContext(ctx)
	if err != nil {
		return err
	}

	blocks, err := blocksFromContext(ctx)
	if err != nil {
		return err
	}

	cipherBlocks, traces := c.EncryptBlocks(blocks)

	out := encryptOutput{
		Blocks:       formatBlocks(blocks),
		CipherBlocks: formatBlocks(cipherBlocks),
		SecretText:   hex.EncodeToString(magma.BlocksToBytes(cipherBlocks)),
	}
	if ctx.Bool("trace") {
		out.MiddleValues = traces
	}

	return printJSON(ctx.App.Writer, out)
}

var decryptCommand = cli.Command{
	Name:      "decrypt",
	Category:  "Cipher",
	Usage:     "Decrypt one or more blocks.",
	ArgsUsage: "block [block...]",
	Description: `
	Decrypt each block, given as a decimal integer or as hex with a 0x
	prefix. Padding is not removed.`,
	Action: decrypt,
}

type decryptOutput struct {
	Blocks   []string `json:"blocks"`
	OpenHex  string   `json:"open_hex"`
	OpenText string   `json:"open_text"`
}

func decrypt(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) == 0 {
		return cli.ShowCommandHelp(ctx, "decrypt")
	}

	blocks := make([]uint64, len(args))
	for i, arg := range args {
		b, err := magma.ParseBlock(arg)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		blocks[i] = b
	}

	c, err := cipherFromContext(ctx)
	if err != nil {
		return err
	}

	plain := c.DecryptBlocks(blocks)
	raw := magma.BlocksToBytes(plain)

	return printJSON(ctx.App.Writer, decryptOutput{
		Blocks:   formatBlocks(plain),
		OpenHex:  hex.EncodeToString(raw),
		OpenText: string(raw),
	})
}

var splitCommand = cli.Command{
	Name:     "split",
	Category: "Blocks",
	Usage:    "Show how a message is padded and cut into blocks.",
	Flags:    inputFlags,
	Action:   split,
}

func split(ctx *cli.Context) error {
	blocks, err := blocksFromContext(ctx)
	if err != nil {
		return err
	}

	for _, b := range formatBlocks(blocks) {
		if _, err := fmt.Fprintln(ctx.App.Writer, b); err != nil {
			return err
		}
	}
	return nil
}

var sboxCommand = cli.Command{
	Name:     "sbox",
	Category: "Blocks",
	Usage:    "Print the substitution table in use as YAML.",
	Action:   printSBox,
}

func printSBox(ctx *cli.Context) error {
	sbox, name, err := sboxFromContext(ctx)
	if err != nil {
		return err
	}

	data, err := sboxfile.Marshal(sbox, name)
	if err != nil {
		return err
	}

	_, err = ctx.App.Writer.Write(data)
	return err
}

// sboxFromContext loads the table named by --sboxfile, or returns the
// reference table.
func sboxFromContext(ctx *cli.Context) (*magma.SBox, string, error) {
	path := ctx.GlobalString("sboxfile")
	if path == "" {
		return magma.DefaultSBox(), "reference", nil
	}

	sbox, err := sboxfile.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("unable to load sbox: %w", err)
	}
	return sbox, path, nil
}

func cipherFromContext(ctx *cli.Context) (*magma.Cipher, error) {
	if !ctx.GlobalIsSet("key") {
		return nil, errors.New("a cipher key must be given with --key")
	}

	key, err := magma.ParseKey(ctx.GlobalString("key"))
	if err != nil {
		return nil, err
	}

	sbox, _, err := sboxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return magma.NewCipher(key, sbox)
}

// blocksFromContext reads the message from --text or --hex and splits it
// with the padding selected by --legacy.
func blocksFromContext(ctx *cli.Context) ([]uint64, error) {
	var data []byte
	switch {
	case ctx.IsSet("text") && ctx.IsSet("hex"):
		return nil, errors.New("--text and --hex are mutually exclusive")

	case ctx.IsSet("text"):
		data = []byte(ctx.String("text"))

	case ctx.IsSet("hex"):
		var err error
		data, err = hex.DecodeString(ctx.String("hex"))
		if err != nil {
			return nil, fmt.Errorf("invalid --hex: %w", err)
		}

	default:
		return nil, errors.New("one of --text or --hex is required")
	}

	mode := magma.PadByteLength
	if ctx.Bool("legacy") {
		mode = magma.PadLegacyBitLength
	}
	return magma.SplitBlocks(data, mode), nil
}

func formatBlocks(blocks []uint64) []string {
	return lo.Map(blocks, func(b uint64, _ int) string {
		return fmt.Sprintf("0x%016x", b)
	})
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
