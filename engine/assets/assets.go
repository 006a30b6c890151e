package assets

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/polyengine/engine/assets/loaders"
	"github.com/spaghettifunk/polyengine/engine/core"
	"github.com/spaghettifunk/polyengine/engine/renderer/metadata"
)

const (
	VertexShaderFile   = "shader.vert.spv"
	FragmentShaderFile = "shader.frag.spv"
)

type Loader interface {
	Load(path string) ([]byte, error)
}

// LoadShaders reads the vertex and fragment stages of the presentation
// pipeline from dir.
func LoadShaders(dir string) (*metadata.ShaderSource, error) {
	return loadShaders(&loaders.SPIRVLoader{}, dir)
}

func loadShaders(l Loader, dir string) (*metadata.ShaderSource, error) {
	vert, err := l.Load(filepath.Join(dir, VertexShaderFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load vertex shader: %w", err)
	}
	frag, err := l.Load(filepath.Join(dir, FragmentShaderFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load fragment shader: %w", err)
	}
	core.LogDebug("shaders loaded from `%s` (vertex %d bytes, fragment %d bytes)", dir, len(vert), len(frag))
	return &metadata.ShaderSource{Vertex: vert, Fragment: frag}, nil
}
