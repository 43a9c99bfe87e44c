package station

import "github.com/danmuck/shuttlectl/internal/latch"

// Signals are the controller-owned phase latches. Passengers only wait on
// them.
type Signals struct {
	StationOpen    *latch.Latch
	SourceDoorOpen *latch.Latch
	BoardingOver   *latch.Latch
	DestDoorOpen   *latch.Latch
}

func NewSignals() Signals {
	return Signals{
		StationOpen:    latch.New("station_open"),
		SourceDoorOpen: latch.New("source_door_open"),
		BoardingOver:   latch.New("boarding_over"),
		DestDoorOpen:   latch.New("dest_door_open"),
	}
}

// AlightingOver is implied by the destination doors being shut.
func (s Signals) AlightingOver() bool {
	return !s.DestDoorOpen.IsSet()
}

// SignalState is a point-in-time read of every latch.
type SignalState struct {
	StationOpen    bool `json:"station_open"`
	SourceDoorOpen bool `json:"source_door_open"`
	BoardingOver   bool `json:"boarding_over"`
	DestDoorOpen   bool `json:"dest_door_open"`
	AlightingOver  bool `json:"alighting_over"`
}

func (s Signals) State() SignalState {
	return SignalState{
		StationOpen:    s.StationOpen.IsSet(),
		SourceDoorOpen: s.SourceDoorOpen.IsSet(),
		BoardingOver:   s.BoardingOver.IsSet(),
		DestDoorOpen:   s.DestDoorOpen.IsSet(),
		AlightingOver:  s.AlightingOver(),
	}
}
