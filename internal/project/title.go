package project

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultTitleTimeout bounds a page-title fetch; naming an entry must not
// hang an add behind a slow site.
const DefaultTitleTimeout = time.Second

// titleUserAgent mimics a desktop browser; some sites serve bare pages to
// unknown agents.
const titleUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// TitleFetcher resolves a URL to its page title, used to name entries
// added by link alone.
type TitleFetcher struct {
	client *http.Client
}

// NewTitleFetcher creates a TitleFetcher with the given request timeout.
// A zero timeout uses DefaultTitleTimeout.
func NewTitleFetcher(timeout time.Duration) *TitleFetcher {
	if timeout <= 0 {
		timeout = DefaultTitleTimeout
	}
	return &TitleFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Title fetches the URL and returns the text of its <title> element.
// Returns an empty string, without error, when the page has no title.
func (f *TitleFetcher) Title(ctx context.Context, url string) (string, error) {
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", titleUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch title: unexpected status %s", resp.Status)
	}

	return extractTitle(resp), nil
}

// extractTitle streams the response body through the HTML tokenizer until
// the first <title> element's text, avoiding a full document parse.
func extractTitle(resp *http.Response) string {
	tokenizer := html.NewTokenizer(resp.Body)
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				if title := strings.TrimSpace(string(tokenizer.Text())); title != "" {
					return title
				}
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

// EntryName picks the display name for a new entry: the explicit name if
// given, a fetched page title for URLs, or the link's inferred name.
func EntryName(ctx context.Context, name string, link Link, fetcher *TitleFetcher) string {
	if name != "" {
		return name
	}
	if link.Kind() == KindURL && fetcher != nil {
		if title, err := fetcher.Title(ctx, link.String()); err == nil && title != "" {
			return title
		}
	}
	return link.InferName()
}
