package main

import (
	"flag"
	"log"
	"os"

	"github.com/danmuck/shuttlectl/internal/config"
)

const defaultPath = "cmd/shuttlectl/config.toml"

func main() {
	kind := flag.String("kind", "timeouts", "config kind: baseline|timeouts")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation or printing (defaults to "+defaultPath+")")
	force := flag.Bool("force", false, "overwrite existing config file")
	printCfg := flag.Bool("print", false, "print the effective config (file over defaults) as TOML")
	flag.Parse()

	if *validate || *printCfg {
		path := *input
		if path == "" {
			path = defaultPath
		}
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatal(err)
		}
		if *printCfg {
			out, err := config.Encode(cfg)
			if err != nil {
				log.Fatal(err)
			}
			if _, err := os.Stdout.Write(out); err != nil {
				log.Fatal(err)
			}
			return
		}
		log.Printf("Validated config at %s", path)
		return
	}

	target := *output
	if target == "" {
		target = defaultPath
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s config template to %s", *kind, target)
}
