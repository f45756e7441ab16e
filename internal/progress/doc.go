// Package progress provides the event hub used to trace a harvest run:
// pipeline stages emit milestones, the hub batches them, and sinks turn
// them into logs and metrics without ever blocking the pipeline.
package progress
