package station

import "github.com/rs/zerolog"

var renegeMessages = map[Stage]string{
	StageStationClosed:     "passenger gave up waiting for the station to open",
	StageNoSeat:            "passenger gave up waiting for a seat and left the station",
	StageDoorNotOpened:     "passenger gave up waiting for the doors to open and left the station",
	StageBoardingAbandoned: "passenger gave up waiting for boarding to finish and left the train",
	StageInterrupted:       "passenger interrupted by shutdown",
}

var phaseMessages = map[Phase]string{
	PhaseStationOpen:       "station opened",
	PhaseSourceDoorsOpen:   "doors opened at the source station",
	PhaseBoardingOver:      "boarding finished",
	PhaseSourceDoorsClosed: "doors closed at the source station",
	PhaseOutbound:          "train departed for the destination",
	PhaseDestDoorsOpen:     "doors opened at the destination",
	PhaseBoardingReset:     "alighting finished",
	PhaseDestDoorsClosed:   "doors closed at the destination",
	PhaseInbound:           "train returning to the source station",
	PhaseHalted:            "no passengers left at the source station, train stopped",
}

// Transcript writes the human-readable event log.
type Transcript struct {
	logger zerolog.Logger
}

func NewTranscript(logger zerolog.Logger) *Transcript {
	return &Transcript{logger: logger}
}

func (t *Transcript) Observe(ev Event) {
	switch ev.Kind {
	case EventArrived:
		t.logger.Info().Str("passenger", ev.Name).Msg("passenger arrived at the station")
	case EventSeated:
		t.logger.Debug().
			Str("passenger", ev.Name).
			Int("seats_held", ev.SeatsHeld).
			Msg("passenger reserved a seat")
	case EventBoarded:
		t.logger.Info().
			Str("passenger", ev.Name).
			Int("on_train", ev.OnTrain).
			Int("departed", ev.Departed).
			Msg("passenger boarded the train")
	case EventAlighted:
		t.logger.Info().
			Str("passenger", ev.Name).
			Int("on_train", ev.OnTrain).
			Msg("passenger alighted at the destination")
	case EventReneged:
		msg, ok := renegeMessages[ev.Stage]
		if !ok {
			msg = "passenger reneged"
		}
		t.logger.Warn().
			Str("passenger", ev.Name).
			Str("stage", string(ev.Stage)).
			Int("departed", ev.Departed).
			Msg(msg)
	case EventPhase:
		msg, ok := phaseMessages[ev.Phase]
		if !ok {
			return
		}
		t.logger.Info().
			Str("phase", string(ev.Phase)).
			Int("cycle", ev.Cycle).
			Int("on_train", ev.OnTrain).
			Int("departed", ev.Departed).
			Msg(msg)
	}
}
