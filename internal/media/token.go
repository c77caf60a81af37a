package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TokenClient fetches the short-lived media-join credential from the
// coordination API.
type TokenClient struct {
	BaseURL string
	Client  *http.Client
}

func NewTokenClient(baseURL string) *TokenClient {
	return &TokenClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *TokenClient) Fetch(ctx context.Context, classID string) (JoinCredential, error) {
	var cred JoinCredential

	url := fmt.Sprintf("%s/v1/classes/%s/token", c.BaseURL, classID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return cred, err
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return cred, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return cred, fmt.Errorf("token endpoint returned status %d", res.StatusCode)
	}

	var body struct {
		Token       string `json:"token"`
		ChannelName string `json:"channelName"`
		UID         string `json:"uid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return cred, fmt.Errorf("decoding token response: %w", err)
	}

	cred.Token = body.Token
	cred.ChannelName = body.ChannelName
	cred.UID = body.UID
	return cred, nil
}
