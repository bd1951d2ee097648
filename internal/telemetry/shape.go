// Package telemetry validates and applies game snapshots to a simulated ball.
package telemetry

import (
	"fmt"

	"github.com/ballsym/extension/pkg/core"
)

// Radius resolves a collision shape to the radius of an equivalent ball.
func Radius(shape core.CollisionShape) (float32, error) {
	switch s := shape.(type) {
	case core.Box:
		return (s.Length + s.Width + s.Height) / 6, nil
	case core.Sphere:
		return s.Diameter / 2, nil
	case core.Cylinder:
		return s.Diameter / 2, nil
	case nil:
		return 0, fmt.Errorf("%w: missing collision shape", core.ErrUnknownShapeType)
	default:
		return 0, fmt.Errorf("%w: %T", core.ErrUnknownShapeType, shape)
	}
}

// ShapeFromType builds the variant named by a wire discriminant from its
// candidate payloads. Only the payload matching the discriminant is read.
func ShapeFromType(t core.ShapeType, box *core.Box, sphere *core.Sphere, cylinder *core.Cylinder) (core.CollisionShape, error) {
	switch t {
	case core.ShapeBox:
		if box == nil {
			return nil, fmt.Errorf("%w: collision_shape.box is missing", core.ErrInvalidTelemetry)
		}
		return *box, nil
	case core.ShapeSphere:
		if sphere == nil {
			return nil, fmt.Errorf("%w: collision_shape.sphere is missing", core.ErrInvalidTelemetry)
		}
		return *sphere, nil
	case core.ShapeCylinder:
		if cylinder == nil {
			return nil, fmt.Errorf("%w: collision_shape.cylinder is missing", core.ErrInvalidTelemetry)
		}
		return *cylinder, nil
	default:
		return nil, fmt.Errorf("%w: %d", core.ErrUnknownShapeType, int(t))
	}
}
