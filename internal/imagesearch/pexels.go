// internal/imagesearch/pexels.go
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

// pexelsProvider queries the Pexels photo API. Requires an API key.
type pexelsProvider struct {
	apiKey string
	client *httpclient.Client
}

func (p *pexelsProvider) Name() string { return "pexels" }

func (p *pexelsProvider) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("per_page", "5")

	req, err := http.NewRequestWithContext(ctx, "GET", "https://api.pexels.com/v1/search?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pexels returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Photos []struct {
			Src struct {
				Medium string `json:"medium"`
				Large  string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", err
	}

	for _, photo := range apiResponse.Photos {
		if usableURL(photo.Src.Medium) {
			return photo.Src.Medium, nil
		}
		if usableURL(photo.Src.Large) {
			return photo.Src.Large, nil
		}
	}

	return "", errors.NewImageLookupMissError(query)
}
