// internal/imagesearch/unsplash.go
package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/httpclient"
)

// unsplashProvider queries the Unsplash search API. Requires an access key.
type unsplashProvider struct {
	accessKey string
	client    *httpclient.Client
}

func (p *unsplashProvider) Name() string { return "unsplash" }

func (p *unsplashProvider) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", "5")

	req, err := http.NewRequestWithContext(ctx, "GET", "https://api.unsplash.com/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+p.accessKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unsplash returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Results []struct {
			URLs struct {
				Small   string `json:"small"`
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", err
	}

	for _, result := range apiResponse.Results {
		if usableURL(result.URLs.Small) {
			return result.URLs.Small, nil
		}
		if usableURL(result.URLs.Regular) {
			return result.URLs.Regular, nil
		}
	}

	return "", errors.NewImageLookupMissError(query)
}
