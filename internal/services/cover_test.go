package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

func TestRenderCoverWritesPNG(t *testing.T) {
	cs, err := NewCoverService(logger.Nop(), CoverConfig{BrandText: "Codora"})
	if err != nil {
		t.Fatalf("NewCoverService: %v", err)
	}
	path := filepath.Join(t.TempDir(), "assets", "cover_abc.png")
	if err := cs.RenderCover(context.Background(), "Understanding Graph Databases", "graph databases", path); err != nil {
		t.Fatalf("RenderCover: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, coverWidth, coverHeight) {
		t.Fatalf("bounds: %v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestRenderCoverRejectsEmptyTitle(t *testing.T) {
	cs, err := NewCoverService(nil, CoverConfig{})
	if err != nil {
		t.Fatalf("NewCoverService: %v", err)
	}
	if err := cs.RenderCover(context.Background(), "  ", "x", filepath.Join(t.TempDir(), "c.png")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRenderCoverHonoursCancellation(t *testing.T) {
	cs, err := NewCoverService(nil, CoverConfig{})
	if err != nil {
		t.Fatalf("NewCoverService: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "c.png")
	if err := cs.RenderCover(ctx, "Title", "", path); err == nil {
		t.Fatalf("expected context error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("cover written despite cancellation")
	}
}

func TestNewCoverServiceToleratesMissingLogo(t *testing.T) {
	cs, err := NewCoverService(nil, CoverConfig{LogoPath: filepath.Join(t.TempDir(), "nope.png")})
	if err != nil {
		t.Fatalf("NewCoverService: %v", err)
	}
	if cs.logo != nil {
		t.Fatalf("logo should be unset")
	}
}

func TestNewCoverServiceBadFontPath(t *testing.T) {
	if _, err := NewCoverService(nil, CoverConfig{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}); err == nil {
		t.Fatalf("expected font error")
	}
}

func TestLoadLogoScalesToHeight(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 150))
	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_ = f.Close()

	logo, err := loadLogo(path, 72)
	if err != nil {
		t.Fatalf("loadLogo: %v", err)
	}
	if b := logo.Bounds(); b.Dx() != 144 || b.Dy() != 72 {
		t.Fatalf("scaled bounds: %v", b)
	}
}

func TestPaletteIsStablePerTitle(t *testing.T) {
	cs, err := NewCoverService(nil, CoverConfig{})
	if err != nil {
		t.Fatalf("NewCoverService: %v", err)
	}
	if cs.paletteFor("Graph Databases") != cs.paletteFor("graph databases") {
		t.Fatalf("palette should ignore case")
	}
}

func TestDrawConcurrentCallsProduceSameCard(t *testing.T) {
	cs, err := NewCoverService(nil, CoverConfig{BrandText: "Codora"})
	if err != nil {
		t.Fatalf("NewCoverService: %v", err)
	}
	const n = 4
	out := make([][]byte, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			buf, err := cs.Draw("Graph Databases Explained", "graph databases")
			out[i], errs[i] = buf.Bytes(), err
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Draw %d: %v", i, errs[i])
		}
		if !bytes.Equal(out[i], out[0]) {
			t.Fatalf("Draw %d produced a different image", i)
		}
	}
}
