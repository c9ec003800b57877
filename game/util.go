package game

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/drizzle/camera"
	"github.com/pthm-cable/drizzle/config"
)

// NewCamera builds the configured orbit camera for a viewport.
func NewCamera(viewportW, viewportH float32) *camera.Camera {
	c := config.Cfg().Camera
	target := mgl32.Vec3{float32(c.Target[0]), float32(c.Target[1]), float32(c.Target[2])}
	return camera.New(viewportW, viewportH, target,
		float32(c.Distance), float32(c.Yaw), float32(c.Pitch), float32(c.FovY))
}

// BurstAtAnchor fires a configured-size ring burst at the campfire.
func (g *Game) BurstAtAnchor() int {
	s := g.manager.Settings()
	return g.Burst(s.Fire.Anchor, config.Cfg().Ring.BurstParticles)
}

// GroundHit intersects a ray with the ground plane y = 0. It reports false
// for rays parallel to the plane or pointing away from it.
func GroundHit(origin, dir mgl32.Vec3) (mgl32.Vec3, bool) {
	if dir.Y() > -1e-6 && dir.Y() < 1e-6 {
		return mgl32.Vec3{}, false
	}
	t := -origin.Y() / dir.Y()
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(dir.Mul(t)), true
}
