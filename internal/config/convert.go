package config

import "github.com/danmuck/shuttlectl/internal/station"

// Station converts the file model to the runtime station config.
func (f File) Station() station.Config {
	cfg := station.DefaultConfig()
	cfg.Passengers = f.Passengers
	cfg.Capacity = f.Capacity
	cfg.Seed = f.Seed
	cfg.PhasePause = f.PhasePause.Duration
	cfg.TravelTime = f.TravelTime.Duration
	cfg.OpenDelay = f.OpenDelay.Duration
	cfg.MaxCycles = f.MaxCycles
	cfg.ArrivalRate = f.ArrivalRate
	cfg.ArrivalBurst = f.ArrivalBurst
	cfg.Timeouts = station.Timeouts{
		Enabled:      f.Timeouts.Enabled,
		StationOpen:  f.Timeouts.StationOpen.Duration,
		Seat:         f.Timeouts.Seat.Duration,
		SourceDoor:   f.Timeouts.SourceDoor.Duration,
		BoardingOver: f.Timeouts.BoardingOver.Duration,
	}
	return cfg
}
