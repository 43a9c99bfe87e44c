package station

// State is a passenger lifecycle position.
type State int

const (
	StateHome State = iota
	StateAtPlatform
	StateHoldingSeat
	StateBoarded
	StateOnTrain
	StateAlighted
	StateReneged
)

var stateNames = [...]string{
	StateHome:        "home",
	StateAtPlatform:  "at_platform",
	StateHoldingSeat: "holding_seat",
	StateBoarded:     "boarded",
	StateOnTrain:     "on_train",
	StateAlighted:    "alighted",
	StateReneged:     "reneged",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	return s == StateAlighted || s == StateReneged
}

// Aboard reports whether the passenger is counted in onTrain.
func (s State) Aboard() bool {
	return s == StateBoarded || s == StateOnTrain
}

// Seated reports whether the passenger holds a gate permit.
func (s State) Seated() bool {
	return s == StateHoldingSeat || s.Aboard()
}

// Stage names the wait a passenger gave up on.
type Stage string

const (
	StageStationClosed     Stage = "station_closed"
	StageNoSeat            Stage = "no_seat"
	StageDoorNotOpened     Stage = "door_not_opened"
	StageBoardingAbandoned Stage = "boarding_abandoned"
	StageInterrupted       Stage = "interrupted"
)

// Stages lists every reneging stage in lifecycle order.
func Stages() []Stage {
	return []Stage{
		StageStationClosed,
		StageNoSeat,
		StageDoorNotOpened,
		StageBoardingAbandoned,
		StageInterrupted,
	}
}
