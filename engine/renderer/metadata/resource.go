package metadata

import (
	"github.com/spaghettifunk/skyview/engine/animation"
	"github.com/spaghettifunk/skyview/engine/scene"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown resource type. */
	ResourceTypeNone ResourceType = iota
	/** @brief glTF model (binary .glb or .gltf). */
	ResourceTypeModel
	/** @brief Bitmap font resource type. */
	ResourceTypeBitmapFont
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeModel:
		return "model"
	case ResourceTypeBitmapFont:
		return "bitmap-font"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path (or URL) of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief The payload of a loaded model: the root of its node hierarchy
 * and the animation clips bound to those nodes.
 */
type ModelResourceData struct {
	Root       *scene.Node
	Animations []*animation.Clip
}

/**
 * @brief Glyph metrics of a loaded bitmap font.
 */
type BitmapFontResourceData struct {
	Face       string
	LineHeight int32
	Advances   map[rune]int16
	Kernings   map[[2]rune]int16
}
