package gormstore

import (
	"time"

	"gorm.io/datatypes"
)

// Models lists every table the backend migrates.
var Models = []any{
	&Session{},
	&Tick{},
	&Step{},
	&Prediction{},
}

// Session is one loaded preset
type Session struct {
	ID               uint   `gorm:"primarykey;autoIncrement"`
	UUID             string `gorm:"size:36;index"` // one row per load of the same session
	Preset           string `gorm:"size:32;index"`
	StartTime        time.Time
	EndTime          *time.Time
	ExtensionVersion string `gorm:"size:32"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Tick is an applied telemetry snapshot
type Tick struct {
	ID         uint `gorm:"primarykey;autoIncrement"`
	SessionID  uint `gorm:"index"`
	Time       float32
	ReceivedAt time.Time
	GravityZ   float32
	Shape      string `gorm:"size:16"`
	Radius     float32
	Target     int8
	Snapshot   datatypes.JSON // location, velocity, angular velocity, touch
}

func (*Tick) TableName() string {
	return "ticks"
}

// Step is one stepped ball slice
type Step struct {
	ID        uint `gorm:"primarykey;autoIncrement"`
	SessionID uint `gorm:"index"`
	Time      float32
	Slice     datatypes.JSON
}

func (*Step) TableName() string {
	return "steps"
}

// Prediction summarizes one served prediction
type Prediction struct {
	ID         uint   `gorm:"primarykey;autoIncrement"`
	SessionID  uint   `gorm:"index"`
	Command    string `gorm:"size:64"`
	StartTime  *float32
	NumSlices  int
	First      datatypes.JSON
	Last       datatypes.JSON
	DurationMs float64
	CreatedAt  time.Time
}

func (*Prediction) TableName() string {
	return "predictions"
}
