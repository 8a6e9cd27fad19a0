package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// triangulate splits a simple polygon into triangles by ear clipping and
// returns vertex index triples. Either winding is accepted. Polygons it
// cannot clip (self-intersecting outlines) fall back to a fan.
func triangulate(pts [][2]float64) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if signedArea(pts) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([][3]int, 0, n-2)
	for guard := 0; len(idx) > 3 && guard < 2*n*n; guard++ {
		clipped := false
		for i := range idx {
			a, b, c := idx[(i+len(idx)-1)%len(idx)], idx[i], idx[(i+1)%len(idx)]
			if !isEar(pts, idx, a, b, c) {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break
		}
	}
	if len(idx) == 3 {
		return append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	// Fan whatever is left.
	for i := 1; i+1 < len(idx); i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris
}

func signedArea(pts [][2]float64) float64 {
	var a float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p[0]*q[1] - q[0]*p[1]
	}
	return a / 2
}

func cross(o, a, b [2]float64) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// isEar reports whether b is a convex corner whose triangle holds no
// other remaining vertex. idx is counter-clockwise.
func isEar(pts [][2]float64, idx []int, a, b, c int) bool {
	if cross(pts[a], pts[b], pts[c]) <= 1e-12 {
		return false
	}
	for _, k := range idx {
		if k == a || k == b || k == c {
			continue
		}
		p := pts[k]
		if p == pts[a] || p == pts[b] || p == pts[c] {
			continue
		}
		if cross(pts[a], pts[b], p) >= 0 && cross(pts[b], pts[c], p) >= 0 && cross(pts[c], pts[a], p) >= 0 {
			return false
		}
	}
	return true
}

// planar drops a polygon's dominant normal axis so it can be clipped
// in 2D.
func planar(pts []r3.Vec, n r3.Vec) [][2]float64 {
	out := make([][2]float64, len(pts))
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	for i, p := range pts {
		switch {
		case ax >= ay && ax >= az:
			out[i] = [2]float64{p.Y, p.Z}
		case ay >= az:
			out[i] = [2]float64{p.Z, p.X}
		default:
			out[i] = [2]float64{p.X, p.Y}
		}
	}
	return out
}
