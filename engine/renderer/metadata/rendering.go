package metadata

/** @brief An RGBA colour with each channel in [0, 1]. */
type Color [4]float32

/** @brief Precompiled SPIR-V bytecode for the two programmable stages. */
type ShaderSource struct {
	Vertex   []byte
	Fragment []byte
}

// Vertex input layout shared by the pipeline and the vertex buffers: one
// vec3 position per vertex.
const (
	VERTEX_POSITION_LOCATION uint32 = 0
	VERTEX_STRIDE            uint32 = 12
)
