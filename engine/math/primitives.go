package math

// GenerateBox returns a unit quad centred on the origin in the z=0 plane,
// scaled by `scale`, as two counter-clockwise triangles.
func GenerateBox(scale float32) []Vec3 {
	verts := []Vec3{
		{-0.5, -0.5, 0.0},
		{0.5, 0.5, 0.0},
		{0.5, -0.5, 0.0},
		{-0.5, -0.5, 0.0},
		{-0.5, 0.5, 0.0},
		{0.5, 0.5, 0.0},
	}
	for i := range verts {
		verts[i] = verts[i].MulScalar(scale)
	}
	return verts
}

// Triangle returns a single triangle spanning most of clip space.
func Triangle() []Vec3 {
	return []Vec3{
		{0.0, -0.5, 0.0},
		{0.5, 0.5, 0.0},
		{-0.5, 0.5, 0.0},
	}
}
