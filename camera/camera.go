// Package camera provides an orbit camera for viewing the particle scene.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point at a fixed distance.
// Yaw and pitch are in degrees. Yaw 90 looks down +Z and positive pitch
// looks down onto the target.
type Camera struct {
	// Target is the point the camera looks at
	Target mgl32.Vec3

	// Distance from the target (zoom)
	Distance float32

	Yaw, Pitch float32

	// Vertical field of view in degrees
	FovY float32

	// Viewport dimensions (screen size, or terminal cells)
	ViewportW, ViewportH float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Near and far clip planes
	Near, Far float32

	home struct {
		target               mgl32.Vec3
		distance, yaw, pitch float32
	}
}

// New creates a camera looking at target from distance.
func New(viewportW, viewportH float32, target mgl32.Vec3, distance, yaw, pitch, fovy float32) *Camera {
	c := &Camera{
		Target:      target,
		Distance:    distance,
		Yaw:         yaw,
		Pitch:       clamp(pitch, -89, 89),
		FovY:        fovy,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 1,
		MaxDistance: 200,
		Near:        0.05,
		Far:         500,
	}
	c.home.target = c.Target
	c.home.distance = c.Distance
	c.home.yaw = c.Yaw
	c.home.pitch = c.Pitch
	return c
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(pitch) * math.Cos(yaw)),
		float32(-math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Sin(yaw)),
	}
}

// Eye returns the camera position in world coordinates.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.Target.Sub(c.Forward().Mul(c.Distance))
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Projection returns the perspective projection matrix for the viewport.
func (c *Camera) Projection() mgl32.Mat4 {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// WorldToScreen projects a world point to viewport coordinates with Y down.
// depth is the normalized device depth in [-1, 1]. ok is false for points
// behind the camera or outside the clip volume.
func (c *Camera) WorldToScreen(p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	return c.project(c.ViewProjection(), p)
}

// Projector returns a function that projects many points with one matrix.
func (c *Camera) Projector() func(p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	vp := c.ViewProjection()
	return func(p mgl32.Vec3) (float32, float32, float32, bool) {
		return c.project(vp, p)
	}
}

func (c *Camera) project(vp mgl32.Mat4, p mgl32.Vec3) (sx, sy, depth float32, ok bool) {
	clip := vp.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	sx = (ndc.X() + 1) / 2 * c.ViewportW
	sy = (1 - ndc.Y()) / 2 * c.ViewportH
	ok = absf(ndc.X()) <= 1 && absf(ndc.Y()) <= 1 && absf(ndc.Z()) <= 1
	return sx, sy, ndc.Z(), ok
}

// ScreenRay returns the world-space ray from the eye through a viewport
// point (Y down).
func (c *Camera) ScreenRay(sx, sy float32) (origin, dir mgl32.Vec3) {
	aspect := float32(1)
	if c.ViewportH > 0 {
		aspect = c.ViewportW / c.ViewportH
	}
	nx := sx/c.ViewportW*2 - 1
	ny := 1 - sy/c.ViewportH*2
	tanHalf := float32(math.Tan(float64(mgl32.DegToRad(c.FovY)) / 2))

	forward := c.Forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
	up := right.Cross(forward)

	dir = forward.
		Add(right.Mul(nx * tanHalf * aspect)).
		Add(up.Mul(ny * tanHalf)).
		Normalize()
	return c.Eye(), dir
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Orbit rotates the camera around the target by the given degrees.
// Pitch is clamped short of the poles.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = wrapDegrees(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, -89, 89)
}

// SetDistance sets the orbit distance, clamped to min/max.
func (c *Camera) SetDistance(d float32) {
	c.Distance = clamp(d, c.MinDistance, c.MaxDistance)
}

// ZoomBy divides the distance by factor (factor > 1 moves closer).
func (c *Camera) ZoomBy(factor float32) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance / factor)
}

// Reset returns the camera to the pose it was created with.
func (c *Camera) Reset() {
	c.Target = c.home.target
	c.Distance = c.home.distance
	c.Yaw = c.home.yaw
	c.Pitch = c.home.pitch
}

// wrapDegrees maps an angle into [-180, 180).
func wrapDegrees(a float32) float32 {
	r := float32(math.Mod(float64(a)+180, 360))
	if r < 0 {
		r += 360
	}
	return r - 180
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
