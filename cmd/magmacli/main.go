// Command magmacli runs the magma cipher locally from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[magmacli] %v\n", err)
	os.Exit(1)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "magmacli"
	app.Version = version
	app.Usage = "encrypt and decrypt 64-bit blocks with the magma cipher"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name: "key, k",
			Usage: "The 256-bit cipher key, as a decimal integer or " +
				"as hex with a 0x prefix.",
			EnvVar: "MAGMA_KEY",
		},
		cli.StringFlag{
			Name: "sboxfile",
			Usage: "YAML file holding the substitution table. The " +
				"reference table is used when unset.",
			TakesFile: true,
		},
	}
	app.Commands = []cli.Command{
		encryptCommand,
		decryptCommand,
		splitCommand,
		sboxCommand,
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}
