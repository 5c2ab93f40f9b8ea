// suipool is a command line client for operating object pools against a
// Sui-compatible fullnode: inspecting accounts, listing owned objects and
// running parallel payments from a single key.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/halcyon-labs/suipool/internal/flags"
	"github.com/halcyon-labs/suipool/log"
	"github.com/halcyon-labs/suipool/metrics"
	"github.com/halcyon-labs/suipool/params"
	"github.com/halcyon-labs/suipool/signer"
	"github.com/halcyon-labs/suipool/suiclient"
)

const clientIdentifier = "suipool"

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var (
	endpointFlag = &cli.StringFlag{
		Name:     "endpoint",
		Usage:    "Fullnode JSON-RPC endpoint",
		Value:    "https://fullnode.mainnet.sui.io:443",
		Category: flags.NetworkCategory,
	}
	rateLimitFlag = &cli.Float64Flag{
		Name:     "rpc.ratelimit",
		Usage:    "Maximum RPC requests per second (0 = unlimited)",
		Category: flags.NetworkCategory,
	}
	seedFlag = &cli.StringFlag{
		Name:     "seed",
		Usage:    "Hex-encoded 32-byte ed25519 seed of the signing key",
		Category: flags.AccountCategory,
	}
	seedFileFlag = &cli.StringFlag{
		Name:     "seedfile",
		Usage:    "File containing the hex-encoded signing seed",
		Category: flags.AccountCategory,
	}
	retriesFlag = &cli.IntFlag{
		Name:     "pool.retries",
		Usage:    "Retry budget of one transaction execution",
		Value:    params.DefaultExecuteRetries,
		Category: flags.PoolCategory,
	}
	acquireTimeoutFlag = &cli.DurationFlag{
		Name:     "pool.acquiretimeout",
		Usage:    "How long to wait for a free worker before splitting a new one",
		Value:    params.DefaultWorkerAcquireTimeout,
		Category: flags.PoolCategory,
	}
	redisFlag = &cli.StringFlag{
		Name:     "cache.redis",
		Usage:    "Redis address backing the coin cache (host:port)",
		Category: flags.CacheCategory,
	}
	cachePrefixFlag = &cli.StringFlag{
		Name:     "cache.prefix",
		Usage:    "Key prefix of coin cache entries",
		Value:    "suipool/coins/",
		Category: flags.CacheCategory,
	}
	logLevelFlag = &cli.StringFlag{
		Name:     "loglevel",
		Usage:    "Logging verbosity (silent|error|warn|info|debug|trace)",
		Value:    "info",
		Category: flags.LoggingCategory,
	}
	metricsFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and reporting",
		Category: flags.MetricsCategory,
	}
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

var app = flags.NewApp(gitCommit, gitDate, "a Sui object pool command line client")

func init() {
	app.Name = clientIdentifier
	app.Flags = flags.Merge(
		[]cli.Flag{endpointFlag, rateLimitFlag},
		[]cli.Flag{seedFlag, seedFileFlag},
		[]cli.Flag{retriesFlag, acquireTimeoutFlag},
		[]cli.Flag{redisFlag, cachePrefixFlag},
		[]cli.Flag{logLevelFlag, metricsFlag, configFileFlag},
	)
	app.Commands = []*cli.Command{
		inspectCommand,
		objectsCommand,
		coinsCommand,
		payCommand,
		mintCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))

	app.Before = func(ctx *cli.Context) error {
		lvl, err := log.LvlFromString(ctx.String(logLevelFlag.Name))
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		if metrics.Enabled {
			log.Info("metrics collection enabled")
		}
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// makeSigner loads the signing key from the CLI or the config file.
func makeSigner(ctx *cli.Context, cfg *suipoolConfig) (*signer.Signer, error) {
	seed := cfg.Seed
	switch {
	case ctx.IsSet(seedFlag.Name):
		seed = ctx.String(seedFlag.Name)
	case ctx.IsSet(seedFileFlag.Name):
		raw, err := os.ReadFile(ctx.String(seedFileFlag.Name))
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		seed = string(trimSpace(raw))
	}
	if seed == "" {
		return nil, fmt.Errorf("no signing seed; use --%s or --%s", seedFlag.Name, seedFileFlag.Name)
	}
	return signer.FromHexSeed(seed)
}

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return b
}

// makeClient dials the configured fullnode endpoint.
func makeClient(cfg *suipoolConfig) *suiclient.RPCClient {
	var opts []suiclient.Option
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, suiclient.WithRateLimit(cfg.RateLimit, burst))
	}
	log.Debug("dialing fullnode", "endpoint", cfg.Endpoint, "ratelimit", cfg.RateLimit)
	return suiclient.Dial(cfg.Endpoint, opts...)
}
