package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/services/logging"
	"go.uber.org/zap"
)

var ErrHandleNotFound = errors.New("codeforces handle not found")

// Profile is the subset of the user.info response the handle-proof gate needs.
type Profile struct {
	Handle    string `json:"handle"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProfileOracle confirms handle ownership by reporting the profile's current
// last name. Implemented by Client; mocked in tests.
type ProfileOracle interface {
	LastName(ctx context.Context, handle string) (string, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Service
}

type userInfoResponse struct {
	Status  string    `json:"status"`
	Comment string    `json:"comment"`
	Result  []Profile `json:"result"`
}

func NewClient(cfg *config.CodeforcesConfig, logger *logging.Service) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// NewClientWithHTTPClient injects a custom client, used by tests.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client, logger *logging.Service) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) UserInfo(ctx context.Context, handle string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/api/user.info?handles=%s", c.baseURL, url.QueryEscape(handle))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user.info request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("codeforces user.info request failed",
			zap.Error(err),
			zap.String("handle", handle))
		return nil, fmt.Errorf("codeforces request failed: %w", err)
	}
	defer resp.Body.Close()

	var body userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode user.info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "OK" {
		if body.Comment != "" {
			c.logger.Warn("codeforces user.info rejected",
				zap.String("handle", handle),
				zap.String("comment", body.Comment))
			return nil, fmt.Errorf("%w: %s", ErrHandleNotFound, body.Comment)
		}
		return nil, fmt.Errorf("codeforces returned status %q (http %d)", body.Status, resp.StatusCode)
	}

	if len(body.Result) == 0 {
		return nil, ErrHandleNotFound
	}

	return &body.Result[0], nil
}

func (c *Client) LastName(ctx context.Context, handle string) (string, error) {
	profile, err := c.UserInfo(ctx, handle)
	if err != nil {
		return "", err
	}
	return profile.LastName, nil
}
