package interp

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Run executes from the current PC until the program ends or HALTs. The
// first fault is returned unchanged and the interpreter keeps the state it
// had when the fault was raised.
func (in *Interpreter) Run() error {
	runID := uuid.New().String()
	start := in.Steps
	log.Debug().
		Str("run_id", runID).
		Int("instructions", in.Program.Len()).
		Int("registers", len(in.Registers)).
		Int("pc", in.PC).
		Msg("Run: starting")

	for {
		res, err := in.Step()
		if err != nil {
			log.Debug().Str("run_id", runID).Int("steps", in.Steps-start).Int("pc", in.PC).Err(err).Msg("Run: fault")
			return err
		}
		if res == EndStep {
			break
		}
	}

	log.Debug().
		Str("run_id", runID).
		Int("steps", in.Steps-start).
		Int("variables", len(in.Variables)).
		Msg("Run: finished")
	return nil
}
