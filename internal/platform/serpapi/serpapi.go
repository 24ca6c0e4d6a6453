// Package serpapi queries SerpApi image engines for direct asset URLs.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codoraai-coder/marketing-agent/internal/platform/ctxutil"
	"github.com/codoraai-coder/marketing-agent/internal/platform/httpx"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://serpapi.com/search.json"

	defaultMaxResults = 3
	validationQuery   = "Test"
	validationEngine  = "google_images"
)

type Config struct {
	APIKey          string
	BaseURL         string
	SearchTimeout   time.Duration
	ValidateTimeout time.Duration
	// MaxResults bounds how many results are inspected per search.
	MaxResults int
}

type Client struct {
	log  *logger.Logger
	http *http.Client
	cfg  Config
}

func New(log *logger.Logger, cfg Config) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 30 * time.Second
	}
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = 10 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	return &Client{
		log:  log.With("client", "SerpAPI"),
		http: &http.Client{},
		cfg:  cfg,
	}
}

// ImageResult is one entry of images_results. Engines name the full-size URL
// differently; DirectURL hides that.
type ImageResult struct {
	Original         string `json:"original"`
	OriginalImageURL string `json:"original_image_url"`
	Thumbnail        string `json:"thumbnail"`
	Title            string `json:"title"`
}

// DirectURL returns the first known full-size URL field that holds an
// http(s) URL, or "".
func (r ImageResult) DirectURL() string {
	for _, candidate := range []string{r.Original, r.OriginalImageURL} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		u, err := url.Parse(candidate)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		return candidate
	}
	return ""
}

type searchResponse struct {
	ImagesResults []ImageResult `json:"images_results"`
	Error         string        `json:"error"`
}

// Search returns the first usable URL among the leading results, "" when none
// has one.
func (c *Client) Search(ctx context.Context, query, engine string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", errors.New("serpapi: empty query")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("serpapi: missing api key")
	}
	ctx, cancel := ctxutil.WithOptionalTimeout(ctx, c.cfg.SearchTimeout)
	defer cancel()

	resp, err := c.get(ctx, query, engine)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := httpx.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("serpapi %s: %w", engine, err)
	}
	var out searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("serpapi %s: decode: %w", engine, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("serpapi %s: %s", engine, out.Error)
	}
	results := out.ImagesResults
	if len(results) > c.cfg.MaxResults {
		results = results[:c.cfg.MaxResults]
	}
	for _, r := range results {
		if u := r.DirectURL(); u != "" {
			return u, nil
		}
	}
	return "", nil
}

// ValidateKey runs one cheap search. A 2xx answer means the key works; 401 and
// 403 mean it does not. Anything else is returned as an error.
func (c *Client) ValidateKey(ctx context.Context) (bool, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return false, nil
	}
	ctx, cancel := ctxutil.WithOptionalTimeout(ctx, c.cfg.ValidateTimeout)
	defer cancel()

	resp, err := c.get(ctx, validationQuery, validationEngine)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.log.Warn("search key rejected", "status", resp.StatusCode)
		return false, nil
	default:
		return false, &httpx.StatusError{StatusCode: resp.StatusCode}
	}
}

func (c *Client) get(ctx context.Context, query, engine string) (*http.Response, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", engine)
	params.Set("ijn", "0")
	params.Set("api_key", c.cfg.APIKey)
	endpoint := c.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.log.Debug("serpapi request", "engine", engine, "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("serpapi %s: %w", engine, err)
	}
	return resp, nil
}
