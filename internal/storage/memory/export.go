// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ballsym/extension/pkg/core"
)

// maxExportSeq bounds the sequence suffixes tried for one export name.
const maxExportSeq = 1000

// SessionExport is the root JSON structure of an exported session
type SessionExport struct {
	SessionID        string                  `json:"sessionId"`
	Preset           core.Preset             `json:"preset"`
	ExtensionVersion string                  `json:"extensionVersion"`
	StartTime        time.Time               `json:"startTime"`
	EndTime          float32                 `json:"endTime"` // latest ball clock seen
	Ticks            []TickJSON              `json:"ticks"`
	Steps            [][]any                 `json:"steps"`
	Predictions      []core.PredictionRecord `json:"predictions"`
}

// TickJSON is one applied snapshot
type TickJSON struct {
	Time            float32    `json:"time"`
	ReceivedAt      time.Time  `json:"receivedAt"`
	GravityZ        float32    `json:"gravityZ"`
	Location        [3]float32 `json:"location"`
	Velocity        [3]float32 `json:"velocity"`
	AngularVelocity [3]float32 `json:"angularVelocity"`
	Shape           string     `json:"shape"`
	Radius          float32    `json:"radius"`
	Touch           core.Touch `json:"touch"`
	Target          string     `json:"target"`
}

// exportJSON writes the session data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	id := b.session.ID
	if len(id) > 8 {
		id = id[:8]
	}
	timestamp := b.session.StartTime.Format("20060102_150405")

	base := fmt.Sprintf("%s_%s_%s", b.session.Preset, timestamp, id)
	ext := ".json"
	if b.cfg.CompressOutput {
		ext += ".gz"
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Sessions started within the same second share a name; later ones
	// get a sequence suffix instead of replacing the earlier file.
	for seq := 1; seq <= maxExportSeq; seq++ {
		filename := base + ext
		if seq > 1 {
			filename = fmt.Sprintf("%s_%d%s", base, seq, ext)
		}
		outputPath := filepath.Join(b.cfg.OutputDir, filename)

		err := writeExport(outputPath, export, b.cfg.CompressOutput)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return err
		}
		b.lastExportPath = outputPath
		return nil
	}
	return fmt.Errorf("no free file name for %s%s after %d tries", base, ext, maxExportSeq)
}

func (b *Backend) buildExport() SessionExport {
	export := SessionExport{
		SessionID:        b.session.ID,
		Preset:           b.session.Preset,
		ExtensionVersion: b.session.ExtensionVersion,
		StartTime:        b.session.StartTime,
		Ticks:            make([]TickJSON, 0, len(b.ticks)),
		Steps:            make([][]any, 0, len(b.steps)),
		Predictions:      make([]core.PredictionRecord, 0, len(b.predictions)),
	}

	for _, t := range b.ticks {
		s := t.Snapshot
		export.Ticks = append(export.Ticks, TickJSON{
			Time:            s.Time,
			ReceivedAt:      t.ReceivedAt,
			GravityZ:        s.GravityZ,
			Location:        s.Location.Tuple(),
			Velocity:        s.Velocity.Tuple(),
			AngularVelocity: s.AngularVelocity.Tuple(),
			Shape:           t.Shape,
			Radius:          t.Radius,
			Touch:           s.LastTouch,
			Target:          t.Target.String(),
		})
		export.EndTime = max(export.EndTime, s.Time)
	}

	// Format: [time, [x, y, z], [vx, vy, vz], [wx, wy, wz]]
	for _, st := range b.steps {
		export.Steps = append(export.Steps, []any{
			st.Slice.Time,
			st.Slice.Location,
			st.Slice.Velocity,
			st.Slice.AngularVelocity,
		})
		export.EndTime = max(export.EndTime, st.Slice.Time)
	}

	export.Predictions = append(export.Predictions, b.predictions...)

	return export
}

func writeExport(path string, data SessionExport, compress bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if compress {
		gzWriter := gzip.NewWriter(f)
		defer gzWriter.Close()
		w = gzWriter
	}

	return json.NewEncoder(w).Encode(data)
}
