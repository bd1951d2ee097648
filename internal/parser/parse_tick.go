package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ballsym/extension/internal/telemetry"
	"github.com/ballsym/extension/internal/util"
	"github.com/ballsym/extension/pkg/core"
)

// ParseTick decodes a tick packet into a telemetry snapshot.
// Args: [packet]
//
// The packet carries either "game_ball" or a "balls" array, of which the
// first entry is used. Every required field must be present; latest_touch
// may be omitted, in which case the touch is zero.
func (p *Parser) ParseTick(data []string) (core.TelemetrySnapshot, error) {
	if len(data) < 1 {
		return core.TelemetrySnapshot{}, fmt.Errorf("%w: tick expects 1 arg, got %d", core.ErrInvalidTelemetry, len(data))
	}
	raw := util.FixEscapeQuotes(util.TrimQuotes(data[0]))

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var pkt wirePacket
	if err := dec.Decode(&pkt); err != nil {
		return core.TelemetrySnapshot{}, fmt.Errorf("%w: decoding packet: %v", core.ErrInvalidTelemetry, err)
	}

	if pkt.GameInfo == nil {
		return core.TelemetrySnapshot{}, missing("game_info")
	}
	if pkt.GameInfo.SecondsElapsed == nil {
		return core.TelemetrySnapshot{}, missing("game_info.seconds_elapsed")
	}
	if pkt.GameInfo.WorldGravityZ == nil {
		return core.TelemetrySnapshot{}, missing("game_info.world_gravity_z")
	}

	ball := pkt.GameBall
	if ball == nil {
		if len(pkt.Balls) == 0 {
			return core.TelemetrySnapshot{}, missing("game_ball")
		}
		if len(pkt.Balls) > 1 {
			p.logger.Debug("tick carries several balls, using the first", "balls", len(pkt.Balls))
		}
		ball = &pkt.Balls[0]
	}

	snap := core.TelemetrySnapshot{
		Time:     *pkt.GameInfo.SecondsElapsed,
		GravityZ: *pkt.GameInfo.WorldGravityZ,
	}

	if ball.Physics == nil {
		return core.TelemetrySnapshot{}, missing("physics")
	}
	var err error
	if snap.Location, err = vec(ball.Physics.Location, "physics.location"); err != nil {
		return core.TelemetrySnapshot{}, err
	}
	if snap.Velocity, err = vec(ball.Physics.Velocity, "physics.velocity"); err != nil {
		return core.TelemetrySnapshot{}, err
	}
	if snap.AngularVelocity, err = vec(ball.Physics.AngularVelocity, "physics.angular_velocity"); err != nil {
		return core.TelemetrySnapshot{}, err
	}

	if snap.Shape, err = shape(ball.CollisionShape); err != nil {
		return core.TelemetrySnapshot{}, err
	}

	if ball.LatestTouch != nil {
		if snap.LastTouch, err = touch(ball.LatestTouch); err != nil {
			return core.TelemetrySnapshot{}, err
		}
	}

	return snap, nil
}

// ParseTime reads the start time argument of the for_time commands.
// Args: [time]
func (p *Parser) ParseTime(data []string) (float32, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("expected 1 arg, got %d", len(data))
	}
	s := util.TrimQuotes(data[0])
	t, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("error parsing time %q: %w", s, err)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("error parsing time %q: not a finite number", s)
	}
	return float32(t), nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is missing", core.ErrInvalidTelemetry, field)
}

func vec(v *wireVec, field string) (core.Vec3, error) {
	if v == nil {
		return core.Vec3{}, missing(field)
	}
	if v.X == nil || v.Y == nil || v.Z == nil {
		return core.Vec3{}, missing(field + ".{x,y,z}")
	}
	return core.Vec3{X: *v.X, Y: *v.Y, Z: *v.Z}, nil
}

func shape(s *wireShape) (core.CollisionShape, error) {
	if s == nil {
		return nil, missing("collision_shape")
	}
	if s.Type == nil {
		return nil, missing("collision_shape.type")
	}
	t, err := wholeNumber(*s.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: collision_shape.type: %v", core.ErrInvalidTelemetry, err)
	}

	var (
		box      *core.Box
		sphere   *core.Sphere
		cylinder *core.Cylinder
	)
	switch core.ShapeType(t) {
	case core.ShapeBox:
		if s.Box != nil {
			if s.Box.Length == nil || s.Box.Width == nil || s.Box.Height == nil {
				return nil, missing("collision_shape.box.{length,width,height}")
			}
			box = &core.Box{Length: *s.Box.Length, Width: *s.Box.Width, Height: *s.Box.Height}
		}
	case core.ShapeSphere:
		if s.Sphere != nil {
			if s.Sphere.Diameter == nil {
				return nil, missing("collision_shape.sphere.diameter")
			}
			sphere = &core.Sphere{Diameter: *s.Sphere.Diameter}
		}
	case core.ShapeCylinder:
		if s.Cylinder != nil {
			if s.Cylinder.Diameter == nil || s.Cylinder.Height == nil {
				return nil, missing("collision_shape.cylinder.{diameter,height}")
			}
			cylinder = &core.Cylinder{Diameter: *s.Cylinder.Diameter, Height: *s.Cylinder.Height}
		}
	}
	return telemetry.ShapeFromType(core.ShapeType(t), box, sphere, cylinder)
}

func touch(w *wireTouch) (core.Touch, error) {
	at := w.GameSeconds
	if at == nil {
		at = w.TimeSeconds
	}
	if at == nil {
		return core.Touch{}, missing("latest_touch.game_seconds")
	}
	if w.Team == nil {
		return core.Touch{}, missing("latest_touch.team")
	}
	team, err := wholeNumber(*w.Team)
	if err != nil {
		return core.Touch{}, fmt.Errorf("%w: latest_touch.team: %v", core.ErrInvalidTelemetry, err)
	}
	return core.Touch{Time: *at, Team: int(team)}, nil
}
