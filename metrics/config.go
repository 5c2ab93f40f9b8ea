package metrics

// Config contains the configuration for the metric collection.
type Config struct {
	Enabled bool   `toml:",omitempty"`
	Prefix  string `toml:",omitempty"`
}

// DefaultConfig is the default config for metrics used in suipool.
var DefaultConfig = Config{
	Enabled: false,
	Prefix:  "suipool/",
}
