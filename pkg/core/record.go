// pkg/core/record.go
package core

import "time"

// SessionInfo describes one loaded session for recording purposes
type SessionInfo struct {
	ID               string    `json:"id"`
	Preset           Preset    `json:"preset"`
	StartTime        time.Time `json:"startTime"`
	ExtensionVersion string    `json:"extensionVersion"`
}

// TickRecord is an applied telemetry snapshot.
// The snapshot's collision shape is flattened into Shape and Radius.
type TickRecord struct {
	SessionID  string            `json:"sessionId"`
	ReceivedAt time.Time         `json:"receivedAt"`
	Snapshot   TelemetrySnapshot `json:"snapshot"`
	Shape      string            `json:"shape"`
	Radius     float32           `json:"radius"`
	Target     Target            `json:"target"`
}

// StepRecord is the result of one fixed tick
type StepRecord struct {
	SessionID string    `json:"sessionId"`
	Slice     BallSlice `json:"slice"`
}

// PredictionRecord summarizes one served prediction
type PredictionRecord struct {
	SessionID string        `json:"sessionId"`
	Command   string        `json:"command"`
	StartTime *float32      `json:"startTime,omitempty"`
	NumSlices int           `json:"numSlices"`
	First     BallSlice     `json:"first"`
	Last      BallSlice     `json:"last"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}
