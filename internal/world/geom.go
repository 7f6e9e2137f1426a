package world

import (
	"fmt"
	"math"
)

// BlockPos is an integer block coordinate. Y is the vertical axis.
type BlockPos struct {
	X int `json:"x" yaml:"x" bson:"x"`
	Y int `json:"y" yaml:"y" bson:"y"`
	Z int `json:"z" yaml:"z" bson:"z"`
}

// Below returns the position directly underneath p.
func (p BlockPos) Below() BlockPos {
	return BlockPos{X: p.X, Y: p.Y - 1, Z: p.Z}
}

// Key renders p as a stable string, used as a storage key.
func (p BlockPos) Key() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Vec3 is a point in world space.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// DistanceSq returns the squared distance between v and o.
func (v Vec3) DistanceSq(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return dx*dx + dy*dy + dz*dz
}

// Block returns the block containing v.
func (v Vec3) Block() BlockPos {
	return BlockPos{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y)), Z: int(math.Floor(v.Z))}
}

// Box is an axis-aligned bounding box, inclusive on both ends.
type Box struct {
	Min Vec3
	Max Vec3
}

// BoxAround returns the box extending radius in every direction from center.
func BoxAround(center Vec3, radius float64) Box {
	return Box{
		Min: Vec3{X: center.X - radius, Y: center.Y - radius, Z: center.Z - radius},
		Max: Vec3{X: center.X + radius, Y: center.Y + radius, Z: center.Z + radius},
	}
}

// Contains reports whether v lies inside b.
func (b Box) Contains(v Vec3) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X &&
		v.Y >= b.Min.Y && v.Y <= b.Max.Y &&
		v.Z >= b.Min.Z && v.Z <= b.Max.Z
}
