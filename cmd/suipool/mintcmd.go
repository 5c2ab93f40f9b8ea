package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/halcyon-labs/suipool/executor"
	"github.com/halcyon-labs/suipool/pool"
	"github.com/halcyon-labs/suipool/txbuilder"
	"github.com/halcyon-labs/suipool/types"
)

var (
	mintPackageFlag = &cli.StringFlag{
		Name:     "package",
		Usage:    "Package id of the NFT module (its AdminCap must be owned by the signer)",
		Required: true,
	}
	mintNameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Name of the minted NFT",
		Value: "suipool",
	}

	mintCommand = &cli.Command{
		Action:    mint,
		Name:      "mint",
		Usage:     "Mint an NFT using the package's admin capability",
		ArgsUsage: " ",
		Flags:     []cli.Flag{mintPackageFlag, mintNameFlag},
		Description: `
Splits a worker pool containing the package's AdminCap plus a gas coin and
calls <package>::nft::mint on it. Demonstrates a capability-guarded call run
through the pool layer.
`,
	}
)

func mint(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := makeSigner(ctx, cfg)
	if err != nil {
		return err
	}
	pkg := ctx.String(mintPackageFlag.Name)
	client := makeClient(cfg)

	svc, err := executor.New(ctx.Context, s, client, &executor.Config{
		WorkerAcquireTimeout: cfg.Pool.AcquireTimeout,
		Retries:              cfg.Pool.Retries,
	})
	if err != nil {
		return fmt.Errorf("bootstrap executor: %w", err)
	}

	capID, err := findAdminCap(svc, pkg)
	if err != nil {
		return err
	}

	tx := txbuilder.New()
	minted := tx.MoveCall(pkg+"::nft::mint", tx.Object(capID), tx.Pure(ctx.String(mintNameFlag.Name)))
	tx.TransferObjects(tx.Pure(s.Address()), minted)

	res, err := svc.ExecuteWithOptions(ctx.Context, tx, executor.ExecuteOptions{
		Strategy: func() pool.SplitStrategy { return pool.NewIncludeAdminCapStrategy(pkg) },
		Retries:  -1,
	})
	if err != nil {
		return err
	}
	fmt.Println("minted:", res.Digest)
	return nil
}

// findAdminCap scans the main pool for the package's admin capability.
func findAdminCap(svc *executor.Service, pkg string) (types.ObjectID, error) {
	for id, obj := range svc.MainPool().Objects() {
		if strings.Contains(obj.Type, pkg) && strings.Contains(obj.Type, "AdminCap") {
			return id, nil
		}
	}
	return types.ObjectID{}, fmt.Errorf("no AdminCap of package %s owned by the account", pkg)
}
