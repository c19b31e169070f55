package loaders

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

const tinyFont = `info face="Tiny" size=8 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=0 aa=1 padding=0,0,0,0 spacing=1,1
common lineHeight=10 base=8 scaleW=16 scaleH=16 pages=1 packed=0
page id=0 file="tiny_0.png"
chars count=2
char id=65 x=0 y=0 width=5 height=8 xoffset=0 yoffset=0 xadvance=6 page=0 chnl=15
char id=86 x=6 y=0 width=5 height=8 xoffset=0 yoffset=0 xadvance=5 page=0 chnl=15
kernings count=1
kerning first=65 second=86 amount=-1
`

func writeTinyFont(t *testing.T, withPage bool) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.fnt")
	require.NoError(t, os.WriteFile(path, []byte(tinyFont), 0o644))
	if withPage {
		f, err := os.Create(filepath.Join(dir, "tiny_0.png"))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewAlpha(image.Rect(0, 0, 16, 16))))
		require.NoError(t, f.Close())
	}
	return path
}

func TestBitmapFontLoaderReadsMetrics(t *testing.T) {
	fl := &BitmapFontLoader{}
	res, err := fl.Load(writeTinyFont(t, true), metadata.ResourceTypeBitmapFont, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tiny", res.Name)

	data, ok := res.Data.(*metadata.BitmapFontResourceData)
	require.True(t, ok)
	assert.Equal(t, int32(10), data.LineHeight)
	assert.Equal(t, map[rune]int16{'A': 6, 'V': 5}, data.Advances)
	assert.Equal(t, map[[2]rune]int16{{'A', 'V'}: -1}, data.Kernings)

	require.NoError(t, fl.Unload(res))
	assert.Nil(t, res.Data)
	assert.Nil(t, data.Advances)
}

func TestBitmapFontLoaderMissingPage(t *testing.T) {
	_, err := (&BitmapFontLoader{}).Load(writeTinyFont(t, false), metadata.ResourceTypeBitmapFont, nil)
	assert.Error(t, err)
}

func TestBitmapFontLoaderMissingFile(t *testing.T) {
	_, err := (&BitmapFontLoader{}).Load(filepath.Join(t.TempDir(), "none.fnt"), metadata.ResourceTypeBitmapFont, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
