package math

// NewExtents3D returns the box spanning min and max.
func NewExtents3D(min, max Vec3) Extents3D {
	return Extents3D{Min: min, Max: max}
}

// Contains reports whether p lies inside the box, bounds included.
func (e Extents3D) Contains(p Vec3) bool {
	return p.X >= e.Min.X && p.X <= e.Max.X &&
		p.Y >= e.Min.Y && p.Y <= e.Max.Y &&
		p.Z >= e.Min.Z && p.Z <= e.Max.Z
}

// ClampPoint clamps every axis of p independently into [Min, Max].
func (e Extents3D) ClampPoint(p Vec3) Vec3 {
	return Vec3{
		X: Clamp(p.X, e.Min.X, e.Max.X),
		Y: Clamp(p.Y, e.Min.Y, e.Max.Y),
		Z: Clamp(p.Z, e.Min.Z, e.Max.Z),
	}
}

// IsValid reports whether Min <= Max on every axis.
func (e Extents3D) IsValid() bool {
	return e.Min.X <= e.Max.X && e.Min.Y <= e.Max.Y && e.Min.Z <= e.Max.Z
}
