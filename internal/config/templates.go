package config

import (
	"fmt"
	"os"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "baseline":
		return baselineTemplate, nil
	case "timeouts", "reneging":
		return timeoutsTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Encode renders cfg as TOML.
func Encode(cfg File) ([]byte, error) {
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config encode failed: %w", err)
	}
	return out, nil
}

const baselineTemplate = `# Every passenger waits as long as it takes.
passengers = 5
capacity = 3
phase_pause = "1s"
travel_time = "3s"
open_delay = "1s"
admin_addr = ""

[timeouts]
enabled = false

[stats]
backend = "memory"
prefix = "shuttle:stats"
`

const timeoutsTemplate = `# Passengers give up on any wait before the train leaves.
passengers = 11
capacity = 3
phase_pause = "1s"
travel_time = "3s"
open_delay = "1s"
admin_addr = "127.0.0.1:9100"
admin_token = ""
cors_origins = ["http://localhost:3000"]

[timeouts]
enabled = true
station_open = "8s"
seat = "30s"
source_door = "4s"
boarding_over = "8s"

[stats]
backend = "memory"
redis_addr = "127.0.0.1:6379"
prefix = "shuttle:stats"
ttl = "24h"
`
