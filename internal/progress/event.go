// Package progress defines the event stream emitted by the harvest
// pipeline and the hub that fans events out to sinks.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart        Stage = "RUN_START"
	StageFetchStart      Stage = "FETCH_START"
	StageFetchDone       Stage = "FETCH_DONE"
	StageAdmit           Stage = "ADMIT"
	StageRejectDuplicate Stage = "REJECT_DUPLICATE"
	StageRejectFailed    Stage = "REJECT_FAILED"
	StageRunDone         Stage = "RUN_DONE"
)

// Event captures a single milestone of a harvest run.
type Event struct {
	// RunID uniquely identifies a pipeline run in 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Brand scopes candidate events to a brand key.
	Brand string
	// URL is the candidate source URL, when relevant.
	URL string
	// Status carries the fetch outcome label for FETCH_DONE events.
	Status string
	// Score carries the deciding similarity score for duplicate rejections.
	Score float64
	// Dur captures execution latency for fetches and whole runs.
	Dur time.Duration
	// Note lets emitters attach low-volume debug context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageFetchStart, StageAdmit, StageRejectDuplicate, StageRejectFailed:
		if e.Brand == "" {
			return fmt.Errorf("%s requires brand", e.Stage)
		}
	case StageFetchDone:
		if e.Brand == "" {
			return errors.New("fetch done requires brand")
		}
		if e.Status == "" {
			return errors.New("fetch done requires status")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for logs and sinks.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}
