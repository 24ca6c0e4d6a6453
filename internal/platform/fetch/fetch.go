// Package fetch downloads remote images to local files.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codoraai-coder/marketing-agent/internal/platform/ctxutil"
	"github.com/codoraai-coder/marketing-agent/internal/platform/httpx"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const DefaultUserAgent = "MarketingAgentBot/1.0 (+blog illustration fetcher)"

type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
	// BlockPrivate refuses loopback and private-range hosts, redirects included.
	BlockPrivate bool
}

type Downloader struct {
	log  *logger.Logger
	http *http.Client
	cfg  Config
}

func New(log *logger.Logger, cfg Config) *Downloader {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 20 << 20
	}
	d := &Downloader{log: log.With("client", "Downloader"), cfg: cfg}
	d.http = &http.Client{CheckRedirect: d.checkRedirect}
	return d
}

func (d *Downloader) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 6 {
		return fmt.Errorf("too many redirects")
	}
	if req == nil || req.URL == nil {
		return fmt.Errorf("redirect missing url")
	}
	if d.cfg.BlockPrivate && !isPublicURL(req.Context(), req.URL) {
		return fmt.Errorf("redirect blocked: %s", req.URL.Host)
	}
	return nil
}

// Download GETs rawURL and writes the body to path. The body must be a
// recognizable image. The file appears at path only when fully written.
func (d *Downloader) Download(ctx context.Context, rawURL, path string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", rawURL)
	}
	if d.cfg.BlockPrivate && !isPublicURL(ctx, u) {
		return fmt.Errorf("blocked host %s", u.Hostname())
	}
	ctx, cancel := ctxutil.WithOptionalTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,image/*;q=0.8,*/*;q=0.1")

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := httpx.CheckStatus(resp); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".dl-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		cleanup()
		return fmt.Errorf("read body: %w", err)
	}
	head = head[:n]
	if n == 0 {
		cleanup()
		return fmt.Errorf("empty body")
	}
	if ct := http.DetectContentType(head); !strings.HasPrefix(ct, "image/") {
		cleanup()
		return fmt.Errorf("not an image (%s)", ct)
	}

	written, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), io.LimitReader(resp.Body, d.cfg.MaxBytes-int64(n)+1)))
	if err != nil {
		cleanup()
		return fmt.Errorf("write body: %w", err)
	}
	if written > d.cfg.MaxBytes {
		cleanup()
		return fmt.Errorf("response too large (> %d bytes)", d.cfg.MaxBytes)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	d.log.Debug("downloaded", "host", u.Hostname(), "bytes", written, "path", path)
	return nil
}

func isPublicURL(ctx context.Context, u *url.URL) bool {
	host := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return !isPrivateIP(ip)
	}
	resCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ips, err := net.DefaultResolver.LookupIP(resCtx, "ip", host)
	if err != nil || len(ips) == 0 {
		return false
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return false
		}
	}
	return true
}

func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
