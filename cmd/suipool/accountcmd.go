package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Action:    inspect,
	Name:      "inspect",
	Usage:     "Print the address derived from the signing seed",
	ArgsUsage: " ",
	Description: `
Derives the ed25519 keypair from the configured seed and prints the account
address and public key. No network access is performed.
`,
}

func inspect(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := makeSigner(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Println("Address:    ", s.Address().Hex())
	fmt.Println("Public key: ", "0x"+hex.EncodeToString(s.PublicKey()))
	return nil
}
