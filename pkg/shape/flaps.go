package shape

// Rectangle returns the default panel outline: an axis-aligned w×h
// rectangle traced from the origin.
func Rectangle(w, h float64) Shape {
	return Shape{
		L(0, h),
		L(w, h),
		L(w, 0),
	}
}

// RoundedFlap returns a w×h flap outline whose free corners are rounded
// with radius r. The hinge edge along x=0 keeps sharp corners; its two
// corner curves are degenerate so that the outline always carries four
// straight edges and four quadratic corners.
func RoundedFlap(w, h, r float64) Shape {
	return Shape{
		L(0, h-r),
		Q(0, h, 0, h),
		L(w-r, h),
		Q(w, h, w, h-r),
		L(w, r),
		Q(w, 0, w-r, 0),
		L(r, 0),
		Q(0, 0, 0, 0),
	}
}

// RoundedTrapezoid returns a side tuck flap outline. The free edge is
// inset by r/3 at the top and r/8 at the bottom, and the hinge edge
// extends r below the origin to form a rounded foot.
func RoundedTrapezoid(w, h, r float64) Shape {
	return Shape{
		L(0, h-r),
		Q(0, h, 0, h),
		L(w-r/3, h-r),
		Q(w, h-r, w, h-2*r),
		L(w, r),
		Q(w, 0, w-r/8, 0),
		L(0, -r),
		Q(0, 0, 0, 0),
	}
}
