/*
Package surface provides elementary parametric surfaces: planes, cylinders
and spheres. They satisfy blend.Surface and serve as support surfaces for
blends between them.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package surface

import (
	"math"

	"github.com/npillmayer/blend"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is a right-handed orthonormal frame in space.
type Frame struct {
	Origin r3.Vec
	X, Y   r3.Vec // unit vectors; Z = X × Y
}

// Z is the third axis of the frame.
func (f Frame) Z() r3.Vec {
	return r3.Cross(f.X, f.Y)
}

// StandardFrame is the frame of the world coordinate system.
var StandardFrame = Frame{X: r3.Vec{X: 1}, Y: r3.Vec{Y: 1}}

// NewFrame creates a frame at origin with z-axis dir and x-axis as close to
// xdir as possible.
func NewFrame(origin, dir, xdir r3.Vec) Frame {
	z := r3.Unit(dir)
	x := r3.Sub(xdir, r3.Scale(r3.Dot(xdir, z), z))
	if blend.Is0(r3.Norm(x)) {
		x = r3.Cross(z, r3.Vec{X: 1})
		if blend.Is0(r3.Norm(x)) {
			x = r3.Cross(z, r3.Vec{Y: 1})
		}
	}
	x = r3.Unit(x)
	return Frame{Origin: origin, X: x, Y: r3.Cross(z, x)}
}

// at maps local coordinates to world coordinates.
func (f Frame) at(x, y, z float64) r3.Vec {
	return r3.Add(f.Origin, f.dir(x, y, z))
}

// dir maps a local vector to a world vector.
func (f Frame) dir(x, y, z float64) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(x, f.X), r3.Scale(y, f.Y)), r3.Scale(z, f.Z()))
}

// local maps a world point to local coordinates.
func (f Frame) local(p r3.Vec) (x, y, z float64) {
	d := r3.Sub(p, f.Origin)
	return r3.Dot(d, f.X), r3.Dot(d, f.Y), r3.Dot(d, f.Z())
}

// bounds is the parametric rectangle of a surface.
type bounds struct {
	umin, umax, vmin, vmax float64
}

func (b bounds) Bounds() (umin, umax, vmin, vmax float64) {
	return b.umin, b.umax, b.vmin, b.vmax
}

// wrap moves x by multiples of period into [lo, lo+period).
func wrap(x, lo, period float64) float64 {
	x = math.Mod(x-lo, period)
	if x < 0 {
		x += period
	}
	return x + lo
}
