package sinks

import (
	"context"

	"github.com/brandscope/logoharvest/internal/metrics"
	"github.com/brandscope/logoharvest/internal/progress"
)

// PrometheusSink translates progress events into Prometheus collector
// updates, so the pipeline itself never touches the metrics package.
type PrometheusSink struct{}

// NewPrometheusSink initializes the collectors and returns a sink.
func NewPrometheusSink() *PrometheusSink {
	metrics.Init()
	return &PrometheusSink{}
}

// Consume updates collectors from each event in the batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageFetchStart:
			metrics.IncActiveFetches()
		case progress.StageFetchDone:
			metrics.DecActiveFetches()
			metrics.ObserveFetch(evt.Status, evt.Dur)
		case progress.StageAdmit:
			metrics.ObserveAdmission()
		case progress.StageRejectDuplicate:
			metrics.ObserveRejection("duplicate")
		case progress.StageRejectFailed:
			metrics.ObserveRejection("failed")
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
