// pkg/core/telemetry.go
package core

// ShapeType is the wire discriminant of a collision shape
type ShapeType int

const (
	ShapeBox      ShapeType = 0
	ShapeSphere   ShapeType = 1
	ShapeCylinder ShapeType = 2
)

func (t ShapeType) String() string {
	switch t {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// CollisionShape is a closed set: Box, Sphere or Cylinder.
type CollisionShape interface {
	Type() ShapeType
	isCollisionShape()
}

// Box is a box-shaped ball (cube ball modes)
type Box struct {
	Length float32 `json:"length"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Sphere is the regular ball
type Sphere struct {
	Diameter float32 `json:"diameter"`
}

// Cylinder is the puck ball
type Cylinder struct {
	Diameter float32 `json:"diameter"`
	Height   float32 `json:"height"`
}

func (Box) Type() ShapeType      { return ShapeBox }
func (Sphere) Type() ShapeType   { return ShapeSphere }
func (Cylinder) Type() ShapeType { return ShapeCylinder }

func (Box) isCollisionShape()      {}
func (Sphere) isCollisionShape()   {}
func (Cylinder) isCollisionShape() {}

// Touch is the most recent player contact with the ball.
// A zero Time means nobody has touched the ball yet.
type Touch struct {
	Time float32 `json:"time"`
	Team int     `json:"team"`
}

// TelemetrySnapshot is one observation of the live game ball and clock
type TelemetrySnapshot struct {
	Time            float32        `json:"time"`
	GravityZ        float32        `json:"gravityZ"`
	Location        Vec3           `json:"location"`
	Velocity        Vec3           `json:"velocity"`
	AngularVelocity Vec3           `json:"angularVelocity"`
	Shape           CollisionShape `json:"-"`
	LastTouch       Touch          `json:"lastTouch"`
}
