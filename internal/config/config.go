package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Duration is a time.Duration written as a Go duration string ("1s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// File is the on-disk shuttle configuration.
type File struct {
	Passengers   int      `toml:"passengers" yaml:"passengers" validate:"gte=0"`
	Capacity     int      `toml:"capacity" yaml:"capacity" validate:"gt=0"`
	Seed         uint64   `toml:"seed" yaml:"seed"`
	PhasePause   Duration `toml:"phase_pause" yaml:"phase_pause" validate:"gt=0"`
	TravelTime   Duration `toml:"travel_time" yaml:"travel_time" validate:"gte=0"`
	OpenDelay    Duration `toml:"open_delay" yaml:"open_delay" validate:"gte=0"`
	MaxCycles    int      `toml:"max_cycles" yaml:"max_cycles" validate:"gte=0"`
	ArrivalRate  float64  `toml:"arrival_rate" yaml:"arrival_rate" validate:"gte=0"`
	ArrivalBurst int      `toml:"arrival_burst" yaml:"arrival_burst" validate:"gte=0"`
	AdminAddr    string   `toml:"admin_addr" yaml:"admin_addr"`
	AdminToken   string   `toml:"admin_token" yaml:"admin_token"`
	CorsOrigins  []string `toml:"cors_origins" yaml:"cors_origins"`
	Timeouts     Timeouts `toml:"timeouts" yaml:"timeouts"`
	Stats        Stats    `toml:"stats" yaml:"stats"`
}

// Timeouts are the per-wait upper bounds of the reneging variant.
type Timeouts struct {
	Enabled      bool     `toml:"enabled" yaml:"enabled"`
	StationOpen  Duration `toml:"station_open" yaml:"station_open" validate:"gte=0"`
	Seat         Duration `toml:"seat" yaml:"seat" validate:"gte=0"`
	SourceDoor   Duration `toml:"source_door" yaml:"source_door" validate:"gte=0"`
	BoardingOver Duration `toml:"boarding_over" yaml:"boarding_over" validate:"gte=0"`
}

// Stats selects where lifecycle outcomes are tallied.
type Stats struct {
	Backend   string   `toml:"backend" yaml:"backend" validate:"oneof=memory redis none"`
	RedisAddr string   `toml:"redis_addr" yaml:"redis_addr" validate:"required_if=Backend redis"`
	Prefix    string   `toml:"prefix" yaml:"prefix" validate:"required_unless=Backend none"`
	TTL       Duration `toml:"ttl" yaml:"ttl" validate:"gte=0"`
}

// Defaults follow the reneging demo: 11 passengers, 3 seats.
func Default() File {
	return File{
		Passengers:   11,
		Capacity:     3,
		PhasePause:   Duration{time.Second},
		TravelTime:   Duration{3 * time.Second},
		OpenDelay:    Duration{time.Second},
		ArrivalBurst: 1,
		Timeouts: Timeouts{
			Enabled:      true,
			StationOpen:  Duration{8 * time.Second},
			Seat:         Duration{30 * time.Second},
			SourceDoor:   Duration{4 * time.Second},
			BoardingOver: Duration{8 * time.Second},
		},
		Stats: Stats{
			Backend:   "memory",
			RedisAddr: "127.0.0.1:6379",
			Prefix:    "shuttle:stats",
			TTL:       Duration{24 * time.Hour},
		},
	}
}

// Load reads a TOML or YAML file (by extension) over the defaults and
// validates the result.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		err = decodeTOML(data, &cfg)
	}
	if err != nil {
		return File{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return File{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *File) error {
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, Duration{})
	return v
}

func Validate(cfg File) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.ArrivalRate > 0 && cfg.ArrivalBurst == 0 {
		return fmt.Errorf("%w: arrival_burst required when arrival_rate is set", ErrInvalidConfig)
	}
	if addr := strings.TrimSpace(cfg.AdminAddr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%w: admin_addr: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
