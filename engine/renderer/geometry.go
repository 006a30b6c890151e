package renderer

import (
	"fmt"

	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/math"
)

type GeometryID uint32

// Geometry is an immutable triangle list living in GPU memory.
type Geometry struct {
	ID     GeometryID
	buffer VertexBuffer
}

func (g *Geometry) Buffer() VertexBuffer {
	return g.buffer
}

func (g *Geometry) VertexCount() uint32 {
	return g.buffer.VertexCount()
}

// GeometryStore hands out ids in increasing order, starting at 0. Ids are
// never reused.
type GeometryStore struct {
	device     Device
	nextID     GeometryID
	geometries map[GeometryID]*Geometry
}

func NewGeometryStore(device Device) *GeometryStore {
	return &GeometryStore{
		device:     device,
		geometries: make(map[GeometryID]*Geometry),
	}
}

// Upload copies the vertices into a new vertex buffer. Vertices are read as
// a triangle list, so their count must be a non-zero multiple of 3.
func (gs *GeometryStore) Upload(vertices []math.Vec3) (GeometryID, error) {
	if len(vertices) == 0 || len(vertices)%3 != 0 {
		return 0, fmt.Errorf("%w: %d vertices", core.ErrInvalidGeometry, len(vertices))
	}
	buffer, err := gs.device.CreateVertexBuffer(vertices)
	if err != nil {
		return 0, fmt.Errorf("failed to upload geometry: %w", err)
	}

	id := gs.nextID
	gs.nextID++
	gs.geometries[id] = &Geometry{ID: id, buffer: buffer}

	core.LogDebug("geometry %d uploaded (%d vertices)", id, len(vertices))
	return id, nil
}

func (gs *GeometryStore) Get(id GeometryID) (*Geometry, error) {
	g, ok := gs.geometries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", core.ErrGeometryNotFound, id)
	}
	return g, nil
}

// First returns the geometry with the lowest id.
func (gs *GeometryStore) First() (*Geometry, bool) {
	var first *Geometry
	for _, g := range gs.geometries {
		if first == nil || g.ID < first.ID {
			first = g
		}
	}
	return first, first != nil
}

func (gs *GeometryStore) Len() int {
	return len(gs.geometries)
}

// Destroy frees every vertex buffer. The device must be idle.
func (gs *GeometryStore) Destroy() {
	for id, g := range gs.geometries {
		g.buffer.Destroy()
		delete(gs.geometries, id)
	}
}
