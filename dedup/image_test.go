package dedup

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postrecovery/imageprocessor"
	"postrecovery/inventory"
	"postrecovery/types"
)

var imageMatcher = inventory.MatcherFunc(imageprocessor.IsImageFile)

// writePNG creates a solid-color PNG and returns its record
func writePNG(t *testing.T, dir, name string, width, height int, c color.RGBA) *types.FileRecord {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	return &types.FileRecord{Path: path, Size: info.Size(), Extension: filepath.Ext(name)}
}

func TestRemoveImageDuplicates_DownscaledCopy(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{R: 200, G: 30, B: 30, A: 255}
	blue := color.RGBA{R: 30, G: 30, B: 200, A: 255}

	records := []*types.FileRecord{
		writePNG(t, dir, "original.png", 200, 150, red),
		writePNG(t, dir, "thumbnail.png", 100, 75, red),
		writePNG(t, dir, "unrelated.png", 100, 75, blue),
	}

	result := RemoveImageDuplicates(records, imageMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 1, result.Removed)
	assert.False(t, records[0].Removed, "the copy with the most pixels survives")
	assert.True(t, records[1].Removed)
	assert.False(t, records[2].Removed, "different average color never merges")

	_, err := os.Stat(records[1].Path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveImageDuplicates_AspectRatioGate(t *testing.T) {
	dir := t.TempDir()
	gray := color.RGBA{R: 120, G: 120, B: 120, A: 255}

	records := []*types.FileRecord{
		writePNG(t, dir, "wide.png", 200, 100, gray),
		writePNG(t, dir, "standard.png", 200, 150, gray),
	}

	result := RemoveImageDuplicates(records, imageMatcher, DefaultOptions(), NopReporter{})

	// Identical color but 2:1 versus 4:3, far outside the ratio tolerance
	assert.Equal(t, 0, result.Removed)
	assert.Equal(t, 0, result.FullComparisons, "ratio-incompatible pairs skip the full comparison")
}

func TestRemoveImageDuplicates_SquareIsItsOwnClass(t *testing.T) {
	dir := t.TempDir()
	gray := color.RGBA{R: 120, G: 120, B: 120, A: 255}

	records := []*types.FileRecord{
		writePNG(t, dir, "square.png", 100, 100, gray),
		writePNG(t, dir, "almost.png", 101, 100, gray),
	}

	result := RemoveImageDuplicates(records, imageMatcher, DefaultOptions(), NopReporter{})

	// A near-square landscape must not reach a true square through the ratio
	// tolerance alone
	assert.Equal(t, 0, result.Removed)
}

func TestRemoveImageDuplicates_SquareRunSurvivesKeyCollision(t *testing.T) {
	dir := t.TempDir()
	gray := color.RGBA{R: 120, G: 120, B: 120, A: 255}

	// 2002x2001 rounds to the same orientation key as a square, and its
	// dimension sum falls between the two squares'; the squares must still
	// end up adjacent in scan order so their group is found
	bigSquare := writePNG(t, dir, "big-square.png", 2200, 2200, gray)
	nearSquare := writePNG(t, dir, "near-square.png", 2002, 2001, gray)
	smallSquare := writePNG(t, dir, "small-square.png", 1900, 1900, gray)

	result := RemoveImageDuplicates([]*types.FileRecord{bigSquare, nearSquare, smallSquare}, imageMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 1, result.Removed)
	assert.False(t, bigSquare.Removed)
	assert.True(t, smallSquare.Removed, "the square pair must be grouped despite the interleaving landscape")
	assert.False(t, nearSquare.Removed, "a landscape never merges into a square group")
}

func TestRemoveImageDuplicates_UndecodableSurvives(t *testing.T) {
	dir := t.TempDir()
	red := color.RGBA{R: 200, G: 30, B: 30, A: 255}

	corrupt1 := writeFile(t, dir, "corrupt1.png", []byte("not an image at all, just bytes"))
	corrupt2 := writeFile(t, dir, "corrupt2.png", []byte("not an image at all, just bytes"))
	valid := writePNG(t, dir, "valid.png", 50, 40, red)

	result := RemoveImageDuplicates([]*types.FileRecord{corrupt1, corrupt2, valid}, imageMatcher, DefaultOptions(), NopReporter{})

	// Undecodable images carry the sentinel feature and match nothing, not
	// even each other
	assert.Equal(t, 0, result.Removed)
	assert.False(t, corrupt1.Removed)
	assert.False(t, corrupt2.Removed)
	assert.False(t, valid.Removed)
}

func TestRemoveImageDuplicates_GroupKeepsMostPixels(t *testing.T) {
	dir := t.TempDir()
	green := color.RGBA{R: 40, G: 180, B: 40, A: 255}

	small := writePNG(t, dir, "a-small.png", 80, 60, green)
	large := writePNG(t, dir, "b-large.png", 400, 300, green)
	medium := writePNG(t, dir, "c-medium.png", 160, 120, green)

	result := RemoveImageDuplicates([]*types.FileRecord{small, large, medium}, imageMatcher, DefaultOptions(), NopReporter{})

	assert.Equal(t, 2, result.Removed)
	assert.True(t, small.Removed)
	assert.False(t, large.Removed)
	assert.True(t, medium.Removed)
}

func TestExtractImageFeature(t *testing.T) {
	dir := t.TempDir()
	gray := color.RGBA{R: 100, G: 100, B: 100, A: 255}

	t.Run("landscape", func(t *testing.T) {
		rec := writePNG(t, dir, "l.png", 400, 300, gray)
		f := extractImageFeature(rec.Path)
		assert.True(t, f.valid)
		assert.Equal(t, classLandscape, f.class)
		assert.Equal(t, 1333, f.orientation)
		assert.Equal(t, 120000, f.pixels())
	})

	t.Run("portrait", func(t *testing.T) {
		rec := writePNG(t, dir, "p.png", 300, 400, gray)
		f := extractImageFeature(rec.Path)
		assert.Equal(t, classPortrait, f.class)
		assert.Equal(t, -1333, f.orientation)
	})

	t.Run("square", func(t *testing.T) {
		rec := writePNG(t, dir, "s.png", 128, 128, gray)
		f := extractImageFeature(rec.Path)
		assert.Equal(t, classSquare, f.class)
		assert.Equal(t, squareKey, f.orientation)
	})

	t.Run("unreadable", func(t *testing.T) {
		f := extractImageFeature(filepath.Join(dir, "missing.png"))
		assert.False(t, f.valid)
	})
}

func TestPixelTolerance(t *testing.T) {
	opts := DefaultOptions()
	base := imageFeature{valid: true, width: 100, height: 100}

	t.Run("equal sizes stay at the base tolerance", func(t *testing.T) {
		assert.InDelta(t, opts.PixelDiffBase, pixelTolerance(base, base, opts), 0.001)
	})

	t.Run("tolerance grows toward the cap", func(t *testing.T) {
		tenTimes := imageFeature{valid: true, width: 100, height: 1000}
		got := pixelTolerance(base, tenTimes, opts)
		assert.InDelta(t, opts.PixelDiffBase+opts.PixelDiffExtra, got, 0.001)
	})

	t.Run("ratio past the cap is clamped", func(t *testing.T) {
		huge := imageFeature{valid: true, width: 1000, height: 1000}
		got := pixelTolerance(base, huge, opts)
		assert.InDelta(t, opts.PixelDiffBase+opts.PixelDiffExtra, got, 0.001)
	})
}
