package classroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/edutalksorg/liveclass/internal/data"
)

var ErrSessionNotFound = errors.New("session not found")

// Service is the REST collaborator that owns the Session entity. The
// engine only caches what it fetches; transient failures surface to the
// user and the human reloads, there is no retry loop here.
type Service interface {
	FetchSession(ctx context.Context, id string) (*data.Class, error)
	MarkStarted(ctx context.Context, id string) error
	MarkEnded(ctx context.Context, id string) error
}

// HTTPService talks to the coordination API in cmd/api.
type HTTPService struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPService(baseURL string) *HTTPService {
	return &HTTPService{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPService) FetchSession(ctx context.Context, id string) (*data.Class, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/classes/%s", s.BaseURL, id), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrSessionNotFound
	default:
		return nil, fmt.Errorf("class endpoint returned status %d", res.StatusCode)
	}

	var body struct {
		Class data.Class `json:"class"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding class response: %w", err)
	}
	return &body.Class, nil
}

func (s *HTTPService) MarkStarted(ctx context.Context, id string) error {
	return s.post(ctx, fmt.Sprintf("%s/v1/classes/%s/started", s.BaseURL, id))
}

func (s *HTTPService) MarkEnded(ctx context.Context, id string) error {
	return s.post(ctx, fmt.Sprintf("%s/v1/classes/%s/ended", s.BaseURL, id))
}

func (s *HTTPService) post(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	res, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrSessionNotFound
	default:
		return fmt.Errorf("class endpoint returned status %d", res.StatusCode)
	}
}
