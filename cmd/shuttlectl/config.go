package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/danmuck/shuttlectl/internal/config"
)

type cliOptions struct {
	ConfigPath string
	Passengers int
	Capacity   int
	Baseline   bool
	Seed       uint64
	AdminAddr  string
	set        map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (cliOptions, error) {
	var opts cliOptions
	fs.StringVar(&opts.ConfigPath, "config", "", "path to a TOML or YAML station config (defaults when empty)")
	fs.IntVar(&opts.Passengers, "passengers", 0, "override total passenger count")
	fs.IntVar(&opts.Capacity, "capacity", 0, "override train capacity")
	fs.BoolVar(&opts.Baseline, "baseline", false, "disable every wait timeout")
	fs.Uint64Var(&opts.Seed, "seed", 0, "override the timeout random seed")
	fs.StringVar(&opts.AdminAddr, "admin", "", "override admin HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, nil
}

// loadRunConfig resolves the file (or defaults) and applies flag overrides.
func loadRunConfig(opts cliOptions) (config.File, error) {
	cfg := config.Default()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.File{}, err
		}
		cfg = loaded
	}

	if opts.set["passengers"] {
		cfg.Passengers = opts.Passengers
	}
	if opts.set["capacity"] {
		cfg.Capacity = opts.Capacity
	}
	if opts.set["seed"] {
		cfg.Seed = opts.Seed
	}
	if opts.set["admin"] {
		cfg.AdminAddr = strings.TrimSpace(opts.AdminAddr)
	}
	if opts.Baseline {
		cfg.Timeouts.Enabled = false
	}

	if err := config.Validate(cfg); err != nil {
		return config.File{}, fmt.Errorf("apply flags: %w", err)
	}
	return cfg, nil
}
