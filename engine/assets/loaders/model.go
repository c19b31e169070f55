package loaders

import (
	"context"
	"encoding/binary"
	"fmt"
	gomath "math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/skyview/engine/animation"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
	"github.com/spaghettifunk/skyview/engine/scene"
)

// ModelLoader decodes glTF 2.0 assets into a scene graph plus animation
// clips. Binary .glb files stream through the progress reporter; text .gltf
// files on disk are opened with their external buffers resolved.
type ModelLoader struct {
	Client     *http.Client
	OnProgress ProgressFunc
}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	return ml.LoadContext(context.Background(), path, params)
}

func (ml *ModelLoader) LoadContext(ctx context.Context, path string, params interface{}) (*metadata.Resource, error) {
	name := filepath.Base(path)
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}

	doc, size, err := ml.decode(ctx, path, name)
	if err != nil {
		return nil, err
	}

	model, err := BuildModel(doc, name)
	if err != nil {
		return nil, fmt.Errorf("model '%s': %w", name, err)
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		DataSize: uint64(size),
		Data:     model,
	}, nil
}

func (ml *ModelLoader) decode(ctx context.Context, path, name string) (*gltf.Document, int64, error) {
	if !isRemote(path) && strings.EqualFold(filepath.Ext(path), ".gltf") {
		doc, err := gltf.Open(path)
		return doc, 0, err
	}

	rc, size, err := Open(ctx, ml.Client, path)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(newProgressReader(rc, name, size, ml.OnProgress)).Decode(doc); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, size, nil
}

func (ml *ModelLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// BuildModel converts the default scene of doc into nodes under a root named
// name, and every animation into a clip bound to those nodes.
func BuildModel(doc *gltf.Document, name string) (*metadata.ModelResourceData, error) {
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, core.ErrNoScene
	}

	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		node, err := convertNode(doc, n, i)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(nodes) || c == i {
				return nil, fmt.Errorf("node %d: invalid child %d", i, c)
			}
			nodes[i].Add(nodes[c])
		}
	}

	root := scene.NewNode(name)
	for _, idx := range doc.Scenes[sceneIdx].Nodes {
		if idx < 0 || idx >= len(nodes) {
			return nil, fmt.Errorf("scene %d: invalid node %d", sceneIdx, idx)
		}
		root.Add(nodes[idx])
	}

	clips := make([]*animation.Clip, 0, len(doc.Animations))
	for i, a := range doc.Animations {
		clip, err := convertAnimation(doc, a, i, nodes)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}

	return &metadata.ModelResourceData{Root: root, Animations: clips}, nil
}

func convertNode(doc *gltf.Document, n *gltf.Node, index int) (*scene.Node, error) {
	name := n.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", index)
	}
	node := scene.NewNode(name)

	position := math.NewVec3(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))
	rotation := math.Quaternion{
		X: float32(n.Rotation[0]),
		Y: float32(n.Rotation[1]),
		Z: float32(n.Rotation[2]),
		W: float32(n.Rotation[3]),
	}.Normalize()
	scale := math.NewVec3One()
	if n.Scale[0] != 0 || n.Scale[1] != 0 || n.Scale[2] != 0 {
		scale = math.NewVec3(float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2]))
	}
	node.Transform.SetPositionRotationScale(position, rotation, scale)

	if n.Mesh != nil {
		if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %d: invalid mesh %d", index, *n.Mesh)
		}
		mesh, err := convertMesh(doc, doc.Meshes[*n.Mesh])
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", index, err)
		}
		node.Mesh = mesh
	}
	return node, nil
}

func convertMesh(doc *gltf.Document, m *gltf.Mesh) (*scene.Mesh, error) {
	mesh := &scene.Mesh{Name: m.Name}
	for _, p := range m.Primitives {
		idx, ok := p.Attributes["POSITION"]
		if !ok {
			continue
		}
		data, comps, err := readAccessor(doc, idx)
		if err != nil {
			return nil, err
		}
		if comps != 3 {
			return nil, fmt.Errorf("POSITION: %w: %d components", core.ErrAccessorFormat, comps)
		}
		for i := 0; i+2 < len(data); i += 3 {
			mesh.Positions = append(mesh.Positions, math.NewVec3(data[i], data[i+1], data[i+2]))
		}
	}
	return mesh, nil
}

func convertAnimation(doc *gltf.Document, a *gltf.Animation, index int, nodes []*scene.Node) (*animation.Clip, error) {
	name := a.Name
	if name == "" {
		name = fmt.Sprintf("clip_%d", index)
	}

	channels := make([]*animation.Channel, 0, len(a.Channels))
	for _, ch := range a.Channels {
		if ch.Target.Node == nil || *ch.Target.Node < 0 || *ch.Target.Node >= len(nodes) {
			continue
		}
		var path animation.TargetPath
		switch ch.Target.Path {
		case gltf.TRSTranslation:
			path = animation.PathTranslation
		case gltf.TRSRotation:
			path = animation.PathRotation
		case gltf.TRSScale:
			path = animation.PathScale
		default:
			// Morph target weights are not animated.
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
			return nil, fmt.Errorf("animation '%s': invalid sampler %d", name, ch.Sampler)
		}
		sampler := a.Samplers[ch.Sampler]

		times, _, err := readAccessor(doc, sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation '%s' input: %w", name, err)
		}
		values, comps, err := readAccessor(doc, sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("animation '%s' output: %w", name, err)
		}

		interpolation := animation.InterpolationLinear
		switch sampler.Interpolation {
		case gltf.InterpolationStep:
			interpolation = animation.InterpolationStep
		case gltf.InterpolationCubicSpline:
			// Keep the keyframe values, drop the tangents.
			values = cubicSplineValues(values, comps)
		}

		channels = append(channels, &animation.Channel{
			Target:        nodes[*ch.Target.Node],
			Path:          path,
			Interpolation: interpolation,
			Times:         times,
			Values:        values,
		})
	}
	return animation.NewClip(name, channels), nil
}

// cubicSplineValues keeps the middle element of every
// (in-tangent, value, out-tangent) triplet.
func cubicSplineValues(values []float32, comps int) []float32 {
	stride := comps * 3
	out := make([]float32, 0, len(values)/3)
	for i := 0; i+stride <= len(values); i += stride {
		out = append(out, values[i+comps:i+2*comps]...)
	}
	return out
}

func accessorComponents(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	default:
		return 0
	}
}

// maxZeroAccessorCount bounds accessors that have no buffer view to read from.
const maxZeroAccessorCount = 1 << 20

// readAccessor returns the float data of accessor idx and its component count.
func readAccessor(doc *gltf.Document, idx int) ([]float32, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, 0, fmt.Errorf("%w: accessor %d out of range", core.ErrAccessorFormat, idx)
	}
	acc := doc.Accessors[idx]
	comps := accessorComponents(acc.Type)
	if comps == 0 || acc.ComponentType != gltf.ComponentFloat {
		return nil, 0, fmt.Errorf("%w: accessor %d", core.ErrAccessorFormat, idx)
	}
	count := int(acc.Count)
	if count < 0 {
		return nil, 0, fmt.Errorf("%w: accessor %d has negative count", core.ErrAccessorFormat, idx)
	}
	if acc.BufferView == nil {
		// No buffer view means all zeros.
		if count > maxZeroAccessorCount {
			return nil, 0, fmt.Errorf("%w: accessor %d count %d without buffer view", core.ErrAccessorFormat, idx, count)
		}
		return make([]float32, count*comps), comps, nil
	}

	if *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("%w: buffer view %d out of range", core.ErrAccessorFormat, *acc.BufferView)
	}
	view := doc.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("%w: buffer %d out of range", core.ErrAccessorFormat, view.Buffer)
	}
	data := doc.Buffers[view.Buffer].Data
	stride := int(view.ByteStride)
	if stride == 0 {
		stride = comps * 4
	}
	base := int(view.ByteOffset) + int(acc.ByteOffset)
	end := int(view.ByteOffset) + int(view.ByteLength)
	if stride < 0 || view.ByteOffset < 0 || end > len(data) || base < int(view.ByteOffset) {
		return nil, 0, fmt.Errorf("%w: buffer view %d exceeds buffer", core.ErrAccessorFormat, *acc.BufferView)
	}
	// The last element must fit in the view before anything is allocated.
	if count > 0 && (count-1) > (end-base-comps*4)/stride {
		return nil, 0, fmt.Errorf("%w: accessor %d exceeds its buffer view", core.ErrAccessorFormat, idx)
	}
	out := make([]float32, count*comps)

	for i := 0; i < count; i++ {
		offset := base + i*stride
		if offset+comps*4 > end {
			return nil, 0, fmt.Errorf("%w: accessor %d exceeds its buffer view", core.ErrAccessorFormat, idx)
		}
		for c := 0; c < comps; c++ {
			bits := binary.LittleEndian.Uint32(data[offset+c*4:])
			out[i*comps+c] = gomath.Float32frombits(bits)
		}
	}
	return out, comps, nil
}
