package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const (
	coverWidth      = 1600
	coverHeight     = 900
	coverMargin     = 96.0
	coverTitleSize  = 72.0
	coverSubSize    = 36.0
	coverBrandSize  = 28.0
	coverLogoHeight = 72
)

type CoverConfig struct {
	// FontPath points at a TTF used for the title. Empty uses Go Bold.
	FontPath  string
	BrandText string
	LogoPath  string
}

// CoverService draws a branded title card. It implements blog.CoverRenderer.
// Only parsed fonts are shared; faces hold a rasterizer and are built per Draw.
type CoverService struct {
	log       *logger.Logger
	titleFont *truetype.Font
	subFont   *truetype.Font
	brandFont *truetype.Font
	brandText string
	logo      image.Image
	palettes  [][2]color.NRGBA
}

func NewCoverService(log *logger.Logger, cfg CoverConfig) (*CoverService, error) {
	if log == nil {
		log = logger.Nop()
	}
	serviceLog := log.With("service", "CoverService")

	boldFont, err := parseFont(gobold.TTF)
	if err != nil {
		return nil, err
	}
	titleFont := boldFont
	if strings.TrimSpace(cfg.FontPath) != "" {
		if titleFont, err = loadFont(cfg.FontPath); err != nil {
			return nil, err
		}
	}
	subFont, err := parseFont(goregular.TTF)
	if err != nil {
		return nil, err
	}

	cs := &CoverService{
		log:       serviceLog,
		titleFont: titleFont,
		subFont:   subFont,
		brandFont: boldFont,
		brandText: strings.TrimSpace(cfg.BrandText),
		palettes:  defaultPalettes(),
	}
	if p := strings.TrimSpace(cfg.LogoPath); p != "" {
		logo, err := loadLogo(p, coverLogoHeight)
		if err != nil {
			// A broken logo never blocks a cover.
			serviceLog.Warn("cover logo unavailable", "path", p, "error", err)
		} else {
			cs.logo = logo
		}
	}
	return cs, nil
}

func (cs *CoverService) RenderCover(ctx context.Context, title, subtitle, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("cover: empty title")
	}
	buf, err := cs.Draw(title, subtitle)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cover: mkdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cover: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cover: rename: %w", err)
	}
	cs.log.Debug("cover rendered", "path", path)
	return nil
}

// Draw renders the card and returns it PNG-encoded.
func (cs *CoverService) Draw(title, subtitle string) (bytes.Buffer, error) {
	var buf bytes.Buffer
	dc := gg.NewContext(coverWidth, coverHeight)

	pal := cs.paletteFor(title)
	grad := gg.NewLinearGradient(0, 0, coverWidth, coverHeight)
	grad.AddColorStop(0, pal[0])
	grad.AddColorStop(1, pal[1])
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, coverWidth, coverHeight)
	dc.Fill()

	// Accent bar left of the title block.
	dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 200})
	dc.DrawRectangle(coverMargin-32, coverHeight*0.28, 8, coverHeight*0.36)
	dc.Fill()

	textWidth := coverWidth - 2*coverMargin
	dc.SetColor(color.White)
	dc.SetFontFace(newFace(cs.titleFont, coverTitleSize))
	dc.DrawStringWrapped(title, coverMargin, coverHeight*0.28, 0, 0, textWidth, 1.2, gg.AlignLeft)

	lines := dc.WordWrap(title, textWidth)
	_, lineH := dc.MeasureString("Hg")
	subY := coverHeight*0.28 + float64(len(lines))*lineH*1.2 + 32

	if sub := strings.TrimSpace(subtitle); sub != "" && !strings.EqualFold(sub, title) {
		dc.SetColor(color.NRGBA{R: 235, G: 240, B: 250, A: 255})
		dc.SetFontFace(newFace(cs.subFont, coverSubSize))
		dc.DrawStringWrapped(sub, coverMargin, subY, 0, 0, textWidth, 1.3, gg.AlignLeft)
	}

	if cs.brandText != "" {
		dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 220})
		dc.SetFontFace(newFace(cs.brandFont, coverBrandSize))
		dc.DrawStringAnchored(cs.brandText, coverMargin, coverHeight-coverMargin/2, 0, 0.5)
	}
	if cs.logo != nil {
		b := cs.logo.Bounds()
		dc.DrawImage(cs.logo, coverWidth-int(coverMargin)-b.Dx(), coverHeight-int(coverMargin/2)-b.Dy()/2)
	}

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func (cs *CoverService) paletteFor(title string) [2]color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(title)))
	return cs.palettes[int(h.Sum32()%uint32(len(cs.palettes)))]
}

func defaultPalettes() [][2]color.NRGBA {
	return [][2]color.NRGBA{
		{{R: 0x1E, G: 0x3A, B: 0x8A, A: 255}, {R: 0x06, G: 0xB6, B: 0xD4, A: 255}},
		{{R: 0x4C, G: 0x1D, B: 0x95, A: 255}, {R: 0xDB, G: 0x27, B: 0x77, A: 255}},
		{{R: 0x06, G: 0x4E, B: 0x3B, A: 255}, {R: 0x10, G: 0xB9, B: 0x81, A: 255}},
		{{R: 0x11, G: 0x18, B: 0x27, A: 255}, {R: 0x37, G: 0x41, B: 0x51, A: 255}},
		{{R: 0x7C, G: 0x2D, B: 0x12, A: 255}, {R: 0xF5, G: 0x9E, B: 0x0B, A: 255}},
	}
}

func loadLogo(path string, height int) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	b := img.Bounds()
	if b.Dy() == 0 {
		return nil, fmt.Errorf("decode logo: empty image")
	}
	width := b.Dx() * height / b.Dy()
	if width < 1 {
		width = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst, nil
}

func loadFont(fontPath string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	return parseFont(fontBytes)
}

func parseFont(ttf []byte) (*truetype.Font, error) {
	parsedFont, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return parsedFont, nil
}

func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
