package render

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"countryrates/internal/domain"

	"github.com/stretchr/testify/require"
)

func gdp(v float64) *float64 { return &v }

func sampleSummary() domain.Summary {
	return domain.Summary{
		Total: 250,
		Top: []domain.Country{
			{Name: "United States of America", EstimatedGDP: gdp(4.9e14)},
			{Name: "China", EstimatedGDP: gdp(2.1e12)},
			{Name: "Atlantis"},
		},
		RefreshedAt: time.Date(2025, 10, 22, 12, 0, 0, 0, time.UTC),
	}
}

func TestSummaryRenderer_WritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "summary.png")
	r := NewSummaryRenderer(path)

	require.NoError(t, r.Render(context.Background(), sampleSummary()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, imageWidth, img.Bounds().Dx())
	require.Equal(t, imageHeight, img.Bounds().Dy())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
}

func TestSummaryRenderer_ImageIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.png")
	r := NewSummaryRenderer(path)

	require.NoError(t, r.Render(context.Background(), sampleSummary()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestSummaryRenderer_OverwritesPreviousImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	r := NewSummaryRenderer(path)
	require.NoError(t, r.Render(context.Background(), domain.Summary{RefreshedAt: time.Now()}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, []byte("stale"), b)
}

func TestSummaryRenderer_DrawsText(t *testing.T) {
	r := NewSummaryRenderer("")
	require.Equal(t, DefaultImagePath, r.Path())

	img := r.draw(sampleSummary())

	// some pixel in the title row must differ from the background
	dark := false
	for x := 0; x < imageWidth && !dark; x++ {
		for y := titleY - 13; y <= titleY; y++ {
			if img.RGBAAt(x, y) != backgroundColor {
				dark = true
				break
			}
		}
	}
	require.True(t, dark)
}

func TestSummaryRenderer_FormatsGDPWithGrouping(t *testing.T) {
	r := NewSummaryRenderer("")
	require.Equal(t, "1,234,567.89", r.printer.Sprintf("%.2f", 1234567.891))
}

func TestSummaryRenderer_UnwritableTarget(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r := NewSummaryRenderer(filepath.Join(blocker, "summary.png"))
	err := r.Render(context.Background(), sampleSummary())
	require.ErrorIs(t, err, domain.ErrRender)
}

func TestSummaryRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewSummaryRenderer(filepath.Join(t.TempDir(), "summary.png"))
	err := r.Render(ctx, sampleSummary())
	require.ErrorIs(t, err, domain.ErrRender)
	require.ErrorIs(t, err, context.Canceled)
}
