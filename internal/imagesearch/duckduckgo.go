// internal/imagesearch/duckduckgo.go
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/httpclient"
)

// duckduckgoProvider queries the DuckDuckGo instant-answer API. Keyless,
// so it sits last in the chain as the free fallback.
type duckduckgoProvider struct {
	client *httpclient.Client
}

func (p *duckduckgoProvider) Name() string { return "duckduckgo" }

func (p *duckduckgoProvider) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("no_html", "1")
	params.Add("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", "https://api.duckduckgo.com/?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "outfit-advisor/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Image         string `json:"Image"`
		RelatedTopics []struct {
			Icon struct {
				URL string `json:"URL"`
			} `json:"Icon"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", err
	}

	if img := absoluteDDGURL(apiResponse.Image); usableURL(img) {
		return img, nil
	}
	for _, topic := range apiResponse.RelatedTopics {
		if img := absoluteDDGURL(topic.Icon.URL); usableURL(img) {
			return img, nil
		}
	}

	return "", errors.NewImageLookupMissError(query)
}

// Instant-answer image paths are relative to duckduckgo.com.
func absoluteDDGURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return "https://duckduckgo.com" + path
}
