package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Light is a flat-shading rig: ambient, a hemisphere fill, one main
// light, a rim light and a Blinn-Phong highlight. Directions are world
// space and are normalised by Shade.
type Light struct {
	Dir      r3.Vec
	RimDir   r3.Vec
	ViewDir  r3.Vec
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
}

// DefaultLight is the standard studio rig.
func DefaultLight() Light {
	return Light{
		Dir:      r3.Vec{X: 180, Y: 260, Z: 140},
		RimDir:   r3.Vec{X: -160, Y: 130, Z: -210},
		ViewDir:  r3.Vec{X: 0, Y: -110, Z: -400},
		Ambient:  0.55,
		Hemi:     0.50,
		Direct:   1.50,
		Rim:      0.60,
		SpecInt:  0.45,
		SpecPow:  12.0,
		Exposure: 1.05,
	}
}

// FlatLight leaves colors as given: no falloff, no highlight.
func FlatLight() Light {
	return Light{Ambient: 1, Exposure: 1}
}

// Shade returns the combined lighting scalar for a unit face normal.
// Faces are double sided.
func (l Light) Shade(n r3.Vec) float64 {
	shade := l.Ambient
	if l.Hemi != 0 {
		hemi := (1.0-math.Abs(n.Y))*0.5 + 0.5
		shade += hemi * l.Hemi
	}
	if d := unit(l.Dir); d != (r3.Vec{}) {
		shade += math.Abs(r3.Dot(n, d)) * l.Direct
		if h := unit(r3.Sub(d, unit(l.ViewDir))); h != (r3.Vec{}) && l.SpecInt != 0 {
			shade += math.Pow(math.Max(r3.Dot(n, h), 0), l.SpecPow) * l.SpecInt
		}
	}
	if r := unit(l.RimDir); r != (r3.Vec{}) {
		shade += math.Abs(r3.Dot(n, r)) * l.Rim
	}
	return shade
}

// flat reports whether the light leaves colors untouched.
func (l Light) flat() bool {
	return l.Hemi == 0 && l.Direct == 0 && l.Rim == 0 && l.SpecInt == 0 && l.Ambient == 1 && l.Exposure == 1
}

func unit(v r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(v)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// acesTonemap applies ACES Filmic tone mapping to a linear value.
func acesTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// tone lights one sRGB channel: decode, scale, tone map, encode.
func (l Light) tone(c uint8, shade float64) uint8 {
	if l.flat() {
		return c
	}
	v := acesTonemap(srgbToLinear[c] * shade * l.Exposure)
	return clamp255(math.Pow(v, 1/2.2) * 255)
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// faceNormal is Newell's normal of a polygon, or zero when degenerate.
func faceNormal(pts []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return unit(n)
}
