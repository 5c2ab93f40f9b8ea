package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/halcyon-labs/suipool/executor"
	"github.com/halcyon-labs/suipool/log"
	"github.com/halcyon-labs/suipool/txbuilder"
	"github.com/halcyon-labs/suipool/types"
)

var (
	payToFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Recipient address",
		Required: true,
	}
	payAmountFlag = &cli.Uint64Flag{
		Name:  "amount",
		Usage: "Amount per payment in MIST",
		Value: 1_000_000,
	}
	payCountFlag = &cli.IntFlag{
		Name:  "count",
		Usage: "Number of payments to send",
		Value: 1,
	}
	payParallelFlag = &cli.IntFlag{
		Name:  "parallel",
		Usage: "Maximum payments in flight at once",
		Value: 4,
	}

	payCommand = &cli.Command{
		Action:    pay,
		Name:      "pay",
		Usage:     "Send SUI payments in parallel from one key",
		ArgsUsage: " ",
		Flags:     []cli.Flag{payToFlag, payAmountFlag, payCountFlag, payParallelFlag},
		Description: `
Splits the account's gas coins into worker pools and sends the requested
number of payments concurrently, without equivocating any object.
`,
	}
)

func pay(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := makeSigner(ctx, cfg)
	if err != nil {
		return err
	}
	recipient, err := types.HexToAddress(ctx.String(payToFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	amount := ctx.Uint64(payAmountFlag.Name)
	count := ctx.Int(payCountFlag.Name)
	parallel := ctx.Int(payParallelFlag.Name)
	if parallel < 1 {
		parallel = 1
	}

	client := makeClient(cfg)
	svc, err := executor.New(ctx.Context, s, client, &executor.Config{
		WorkerAcquireTimeout: cfg.Pool.AcquireTimeout,
		Retries:              cfg.Pool.Retries,
	})
	if err != nil {
		return fmt.Errorf("bootstrap executor: %w", err)
	}

	log.Info("sending payments", "to", recipient, "amount", amount, "count", count, "parallel", parallel)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx.Context)
	g.SetLimit(parallel)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			tx := txbuilder.New()
			out := tx.SplitCoins(txbuilder.GasCoin(), tx.Pure(amount))
			tx.TransferObjects(tx.Pure(recipient), out)

			res, err := svc.Execute(gctx, tx)
			if err != nil {
				return fmt.Errorf("payment %d: %w", i, err)
			}
			fmt.Printf("payment %d: %s\n", i, res.Digest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("payments done", "count", count, "workers", svc.WorkerCount(), "elapsed", time.Since(start))
	return nil
}
