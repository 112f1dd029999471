package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultWatchPageBase = "https://www.youtube.com"
	maxWatchPageBytes    = 4 << 20
)

// PageScraper reads a video title from the public watch page.
type PageScraper struct {
	baseURL    string
	httpClient *http.Client
}

// NewPageScraper returns a scraper. An empty baseURL targets youtube.com.
func NewPageScraper(baseURL string, client *http.Client) *PageScraper {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultWatchPageBase
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &PageScraper{baseURL: baseURL, httpClient: client}
}

// VideoTitle implements TitleSource using og:title, then the document title.
func (s *PageScraper) VideoTitle(ctx context.Context, videoID string) (string, error) {
	endpoint := s.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("watch page: new request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) subman")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page: http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return "", fmt.Errorf("watch page: parse html: %w", err)
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title = strings.TrimSpace(title); title != "" {
			return title, nil
		}
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = strings.TrimSpace(strings.TrimSuffix(title, "- YouTube"))
	if title == "" || title == "YouTube" {
		return "", ErrNoTitle
	}
	return title, nil
}
