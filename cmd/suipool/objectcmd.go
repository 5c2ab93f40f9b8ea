package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/halcyon-labs/suipool/coincache"
	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/pool"
)

var (
	objectsCommand = &cli.Command{
		Action:    listObjects,
		Name:      "objects",
		Usage:     "List the objects owned by the signing address",
		ArgsUsage: " ",
		Description: `
Pages through all objects owned by the configured account and prints their
ids, versions and type tags. Gas coins are marked.
`,
	}

	coinsCommand = &cli.Command{
		Action:    listCoins,
		Name:      "coins",
		Usage:     "Refresh and print the persistent gas-coin cache",
		ArgsUsage: " ",
		Description: `
Refreshes the Redis-backed coin cache from the fullnode and prints the cached
coin records. Requires --` + redisFlag.Name + `.
`,
	}
)

func listObjects(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := makeSigner(ctx, cfg)
	if err != nil {
		return err
	}
	client := makeClient(cfg)

	feed := pool.NewObjectFeed(client, s.Address())
	total, coins := 0, 0
	for {
		batch, ok, err := feed.Next(ctx.Context)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for _, obj := range batch {
			marker := " "
			if obj.IsGasCoin() {
				marker = "*"
				coins++
			}
			fmt.Printf("%s %s v%-8d %s\n", marker, obj.ObjectID.Hex(), obj.Version, obj.Type)
			total++
		}
	}
	fmt.Printf("\n%d objects, %d gas coins (*)\n", total, coins)
	return nil
}

func listCoins(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Cache.RedisAddr == "" {
		return fmt.Errorf("coin cache needs --%s", redisFlag.Name)
	}
	s, err := makeSigner(ctx, cfg)
	if err != nil {
		return err
	}
	client := makeClient(cfg)

	store, err := coincache.NewRedisStore(cfg.Cache.RedisOptions(), cfg.Cache.Prefix)
	if err != nil {
		return fmt.Errorf("connect coin cache: %w", err)
	}
	defer store.Close()

	mgr := coincache.NewManager(client, store, s.Address())
	if err := mgr.Refresh(ctx.Context); err != nil {
		return err
	}

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	var total uint64
	for _, key := range keys {
		data, err := store.Get(key)
		if err != nil {
			return err
		}
		rec, err := coincache.DecodeRecord(data)
		if err != nil {
			continue
		}
		fmt.Printf("%s v%-8d %d MIST\n", rec.ObjectID.Hex(), rec.Version, rec.Balance)
		total += rec.Balance
	}
	fmt.Printf("\n%d coins, %d MIST (%.4f SUI)\n", len(keys), total, float64(total)/float64(params.MistPerSui))
	return nil
}
