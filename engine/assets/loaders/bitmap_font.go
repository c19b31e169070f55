package loaders

import (
	"fmt"
	_ "image/png" // page sheets
	"os"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

// BitmapFontLoader reads AngelCode .fnt fonts. Only glyph metrics are kept;
// the overlay uses them to lay out its text.
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	font, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load bitmap font '%s': %w", path, err)
	}

	out_data := &metadata.BitmapFontResourceData{
		Face:       font.Descriptor.Info.Face,
		LineHeight: int32(font.Descriptor.Common.LineHeight),
		Advances:   make(map[rune]int16, len(font.Descriptor.Chars)),
		Kernings:   make(map[[2]rune]int16, len(font.Descriptor.Kerning)),
	}
	for _, g := range font.Descriptor.Chars {
		out_data.Advances[rune(g.ID)] = int16(g.XAdvance)
	}
	for p, k := range font.Descriptor.Kerning {
		out_data.Kernings[[2]rune{rune(p.First), rune(p.Second)}] = int16(k.Amount)
	}

	return &metadata.Resource{
		Name:     out_data.Face,
		FullPath: path,
		DataSize: uint64(len(out_data.Advances)),
		Data:     out_data,
	}, nil
}

func (fl *BitmapFontLoader) Unload(resource *metadata.Resource) error {
	if resource.Data != nil {
		data := resource.Data.(*metadata.BitmapFontResourceData)
		data.Advances = nil
		data.Kernings = nil
		resource.Data = nil
		resource.DataSize = 0
		resource.FullPath = ""
	}
	return nil
}
