package parser

import (
	"strings"
	"testing"

	"github.com/ballsym/extension/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sphereBall = `{
	"physics": {
		"location": {"x": -1200, "y": 800, "z": 640},
		"velocity": {"x": 900, "y": -300, "z": 450},
		"angular_velocity": {"x": 0.5, "y": -1, "z": 2}
	},
	"collision_shape": {"type": 1, "sphere": {"diameter": 182.5}},
	"latest_touch": {"game_seconds": 9.5, "team": 1}
}`

func packet(ball string) string {
	return `{"game_info": {"seconds_elapsed": 10, "world_gravity_z": -650}, "game_ball": ` + ball + `}`
}

func TestParseTick(t *testing.T) {
	p := newTestParser()

	snap, err := p.ParseTick([]string{packet(sphereBall)})
	require.NoError(t, err)

	assert.Equal(t, float32(10), snap.Time)
	assert.Equal(t, float32(-650), snap.GravityZ)
	assert.Equal(t, core.Vec3{X: -1200, Y: 800, Z: 640}, snap.Location)
	assert.Equal(t, core.Vec3{X: 900, Y: -300, Z: 450}, snap.Velocity)
	assert.Equal(t, core.Vec3{X: 0.5, Y: -1, Z: 2}, snap.AngularVelocity)
	assert.Equal(t, core.Sphere{Diameter: 182.5}, snap.Shape)
	assert.Equal(t, core.Touch{Time: 9.5, Team: 1}, snap.LastTouch)
}

func TestParseTick_BallsArray(t *testing.T) {
	p := newTestParser()
	raw := `{"game_info": {"seconds_elapsed": 3, "world_gravity_z": -650}, "balls": [` + sphereBall + `, ` + sphereBall + `]}`

	snap, err := p.ParseTick([]string{raw})
	require.NoError(t, err)
	assert.Equal(t, float32(3), snap.Time)
	assert.Equal(t, core.Sphere{Diameter: 182.5}, snap.Shape)
}

func TestParseTick_EscapedQuotes(t *testing.T) {
	p := newTestParser()
	escaped := `"` + strings.ReplaceAll(packet(sphereBall), `"`, `""`) + `"`

	snap, err := p.ParseTick([]string{escaped})
	require.NoError(t, err)
	assert.Equal(t, float32(10), snap.Time)
}

func TestParseTick_Shapes(t *testing.T) {
	p := newTestParser()
	physics := `"physics": {"location": {"x": 0, "y": 0, "z": 100}, "velocity": {"x": 0, "y": 0, "z": 0}, "angular_velocity": {"x": 0, "y": 0, "z": 0}}`

	tests := []struct {
		name  string
		shape string
		want  core.CollisionShape
	}{
		{"box", `{"type": 0, "box": {"length": 150, "width": 120, "height": 60}}`, core.Box{Length: 150, Width: 120, Height: 60}},
		{"sphere", `{"type": 1, "sphere": {"diameter": 200}}`, core.Sphere{Diameter: 200}},
		{"cylinder", `{"type": 2, "cylinder": {"diameter": 190, "height": 30}}`, core.Cylinder{Diameter: 190, Height: 30}},
		{"float discriminant", `{"type": 2.0, "cylinder": {"diameter": 190, "height": 30}}`, core.Cylinder{Diameter: 190, Height: 30}},
		{"other payloads ignored", `{"type": 1, "box": {"length": 1}, "sphere": {"diameter": 200}}`, core.Sphere{Diameter: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := p.ParseTick([]string{packet(`{` + physics + `, "collision_shape": ` + tt.shape + `}`)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, snap.Shape)
			assert.Equal(t, core.Touch{}, snap.LastTouch, "latest_touch is optional")
		})
	}
}

func TestParseTick_TouchAlias(t *testing.T) {
	p := newTestParser()
	ball := strings.Replace(sphereBall, `"game_seconds": 9.5, "team": 1`, `"time_seconds": 8.25, "team": 0.0`, 1)

	snap, err := p.ParseTick([]string{packet(ball)})
	require.NoError(t, err)
	assert.Equal(t, core.Touch{Time: 8.25, Team: 0}, snap.LastTouch)
}

func TestParseTick_Errors(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"no args", nil, core.ErrInvalidTelemetry},
		{"not json", []string{"garbage"}, core.ErrInvalidTelemetry},
		{"wrong type", []string{`{"game_info": {"seconds_elapsed": "soon"}}`}, core.ErrInvalidTelemetry},
		{"missing game_info", []string{`{"game_ball": ` + sphereBall + `}`}, core.ErrInvalidTelemetry},
		{"missing gravity", []string{`{"game_info": {"seconds_elapsed": 1}, "game_ball": ` + sphereBall + `}`}, core.ErrInvalidTelemetry},
		{"missing ball", []string{`{"game_info": {"seconds_elapsed": 1, "world_gravity_z": -650}, "balls": []}`}, core.ErrInvalidTelemetry},
		{"missing velocity", []string{packet(strings.Replace(sphereBall, `"velocity"`, `"speed"`, 1))}, core.ErrInvalidTelemetry},
		{"missing axis", []string{packet(strings.Replace(sphereBall, `"z": 640`, `"w": 640`, 1))}, core.ErrInvalidTelemetry},
		{"missing shape", []string{packet(strings.Replace(sphereBall, `"collision_shape"`, `"shape"`, 1))}, core.ErrInvalidTelemetry},
		{"missing discriminant", []string{packet(strings.Replace(sphereBall, `"type": 1, `, ``, 1))}, core.ErrInvalidTelemetry},
		{"missing payload", []string{packet(strings.Replace(sphereBall, `"type": 1`, `"type": 0`, 1))}, core.ErrInvalidTelemetry},
		{"unknown discriminant", []string{packet(strings.Replace(sphereBall, `"type": 1`, `"type": 7`, 1))}, core.ErrUnknownShapeType},
		{"fractional discriminant", []string{packet(strings.Replace(sphereBall, `"type": 1`, `"type": 1.5`, 1))}, core.ErrInvalidTelemetry},
		{"touch without team", []string{packet(strings.Replace(sphereBall, `, "team": 1`, ``, 1))}, core.ErrInvalidTelemetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseTick(tt.args)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseTime(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		input   []string
		want    float32
		wantErr bool
	}{
		{"plain", []string{"12.5"}, 12.5, false},
		{"quoted", []string{`"3"`}, 3, false},
		{"negative", []string{"-1"}, -1, false},
		{"no args", nil, 0, true},
		{"non-numeric", []string{"later"}, 0, true},
		{"NaN", []string{"NaN"}, 0, true},
		{"infinity", []string{"Inf"}, 0, true},
		{"negative infinity", []string{`"-Inf"`}, 0, true},
		{"beyond float32", []string{"1e39"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
