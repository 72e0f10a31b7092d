package capabilities

// PointF32 is a 2D point.
type PointF32 struct {
	X, Y float32
}

// PointI32 is a 2D pixel coordinate.
type PointI32 struct {
	X, Y int32
}

// Point3DF32 is a 3D point.
type Point3DF32 struct {
	X, Y, Z float32
}

// SizeI32 is a size in pixels.
type SizeI32 struct {
	Width, Height int32
}

// Size3DF32 is a volume size in meters.
type Size3DF32 struct {
	Width, Height, Depth float32
}

// RectI32 is a pixel rectangle.
type RectI32 struct {
	X, Y, W, H int32
}

// RectF32 is a rectangle in normalized or metric coordinates.
type RectF32 struct {
	X, Y, W, H float32
}

// RangeF32 is a closed interval.
type RangeF32 struct {
	Min, Max float32
}

// Contains reports whether v lies within r.
func (r RangeF32) Contains(v float32) bool {
	return v >= r.Min && v <= r.Max
}
