package render

import (
	"context"
	"countryrates/internal/domain"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	imageWidth  = 800
	imageHeight = 600

	titleY      = 50
	totalY      = 100
	topStartY   = 150
	lineSpacing = 30
	marginX     = 50
	footerY     = imageHeight - 50

	DefaultImagePath = "storage/cache/summary.png"
)

var (
	backgroundColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	textColor       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// SummaryRenderer draws the refresh summary into a PNG file at a fixed path.
type SummaryRenderer struct {
	path    string
	printer *message.Printer
}

func NewSummaryRenderer(path string) *SummaryRenderer {
	if path == "" {
		path = DefaultImagePath
	}
	return &SummaryRenderer{
		path:    path,
		printer: message.NewPrinter(language.English),
	}
}

func (r *SummaryRenderer) Path() string { return r.path }

func (r *SummaryRenderer) Render(ctx context.Context, summary domain.Summary) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	img := r.draw(summary)
	if err := r.write(img); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	logrus.WithFields(logrus.Fields{"path": r.path, "total": summary.Total}).Debug("Summary image rendered")
	return nil
}

func (r *SummaryRenderer) draw(summary domain.Summary) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
	}

	title := "Countries Summary"
	titleWidth := d.MeasureString(title).Round()
	drawText(d, (imageWidth-titleWidth)/2, titleY, title)

	drawText(d, marginX, totalY, fmt.Sprintf("Total Countries: %d", summary.Total))

	for i, c := range summary.Top {
		line := fmt.Sprintf("%d. %s - $%s", i+1, c.Name, r.printer.Sprintf("%.2f", c.GDPOrZero()))
		drawText(d, marginX, topStartY+i*lineSpacing, line)
	}

	drawText(d, marginX, footerY, "Last Refresh: "+summary.RefreshedAt.UTC().Format("2006-01-02 15:04:05"))
	return img
}

func drawText(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

// write encodes into a sibling temp file and renames it over the target,
// so readers never see a partially written image.
func (r *SummaryRenderer) write(img image.Image) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".summary-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp image file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err = png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode summary image: %w", err)
	}
	// CreateTemp uses 0600, the image is served to readers other than us
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set summary image permissions: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp image file: %w", err)
	}
	if err = os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to move summary image into place: %w", err)
	}

	info, err := os.Stat(r.path)
	if err != nil {
		return fmt.Errorf("failed to stat summary image: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("summary image %s is empty", r.path)
	}
	return nil
}
