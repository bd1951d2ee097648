package parser

import "encoding/json"

// Wire shapes of a tick packet. Every field is a pointer so a missing field
// can be told apart from a zero value.

type wireVec struct {
	X *float32 `json:"x"`
	Y *float32 `json:"y"`
	Z *float32 `json:"z"`
}

type wirePhysics struct {
	Location        *wireVec `json:"location"`
	Velocity        *wireVec `json:"velocity"`
	AngularVelocity *wireVec `json:"angular_velocity"`
}

type wireBox struct {
	Length *float32 `json:"length"`
	Width  *float32 `json:"width"`
	Height *float32 `json:"height"`
}

type wireSphere struct {
	Diameter *float32 `json:"diameter"`
}

type wireCylinder struct {
	Diameter *float32 `json:"diameter"`
	Height   *float32 `json:"height"`
}

type wireShape struct {
	Type     *json.Number  `json:"type"`
	Box      *wireBox      `json:"box"`
	Sphere   *wireSphere   `json:"sphere"`
	Cylinder *wireCylinder `json:"cylinder"`
}

type wireTouch struct {
	GameSeconds *float32     `json:"game_seconds"`
	TimeSeconds *float32     `json:"time_seconds"`
	Team        *json.Number `json:"team"`
}

type wireBall struct {
	Physics        *wirePhysics `json:"physics"`
	CollisionShape *wireShape   `json:"collision_shape"`
	LatestTouch    *wireTouch   `json:"latest_touch"`
}

type wireGameInfo struct {
	SecondsElapsed *float32 `json:"seconds_elapsed"`
	WorldGravityZ  *float32 `json:"world_gravity_z"`
}

type wirePacket struct {
	GameInfo *wireGameInfo `json:"game_info"`
	GameBall *wireBall     `json:"game_ball"`
	Balls    []wireBall    `json:"balls"`
}
