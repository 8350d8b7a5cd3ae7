package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"autopostq/internal/errors"
	"autopostq/internal/models"
)

// Client is the consumer-side boundary to the autopost queue API.
type Client interface {
	ListAutoposts(ctx context.Context, opts ListOptions) (*ListResponse, error)
	CreateAutopost(ctx context.Context, req CreateAutopostRequest) (*models.Autopost, error)
	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*models.Autopost, error)
	PublishAutopost(ctx context.Context, id int64, publishedAt time.Time) (*models.Autopost, error)
	ReleaseDue(ctx context.Context, releaseUntil time.Time) ([]models.Autopost, error)
}

// ListOptions filters and paginates the queue listing.
type ListOptions struct {
	Status string
	Cursor int64
	Limit  int
}

// ListResponse is one page of entries with the cursor for the next page.
type ListResponse struct {
	Autoposts  []models.Autopost `json:"autoposts"`
	NextCursor *int64            `json:"nextCursor"`
}

// CreateAutopostRequest enqueues a generic autopost.
type CreateAutopostRequest struct {
	OwnerID           string         `json:"ownerId,omitempty"`
	Body              string         `json:"body"`
	Mood              string         `json:"mood,omitempty"`
	ScheduledAt       time.Time      `json:"scheduledAt"`
	MediaURL          string         `json:"mediaUrl,omitempty"`
	PosterURL         string         `json:"posterUrl,omitempty"`
	DurationSeconds   *int           `json:"durationSeconds,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Audience          string         `json:"audience,omitempty"`
	Hashtags          []string       `json:"hashtags,omitempty"`
	CallToActionLabel string         `json:"callToActionLabel,omitempty"`
	CallToActionURL   string         `json:"callToActionUrl,omitempty"`
}

// CreateCampaignRequest enqueues a sponsored campaign entry.
type CreateCampaignRequest struct {
	CreativeType      string   `json:"creativeType"`
	Title             string   `json:"title"`
	Summary           string   `json:"summary"`
	Body              string   `json:"body,omitempty"`
	Inspirations      []string `json:"inspirations,omitempty"`
	Hashtags          []string `json:"hashtags,omitempty"`
	AssetURL          string   `json:"assetUrl,omitempty"`
	PosterURL         string   `json:"posterUrl,omitempty"`
	MediaURL          string   `json:"mediaUrl,omitempty"`
	DurationSeconds   *int     `json:"durationSeconds,omitempty"`
	DelaySeconds      *int     `json:"delaySeconds,omitempty"`
	Audience          string   `json:"audience,omitempty"`
	CallToActionLabel string   `json:"callToActionLabel,omitempty"`
	CallToActionURL   string   `json:"callToActionUrl,omitempty"`
	BrandName         string   `json:"brandName,omitempty"`
	CampaignID        string   `json:"campaignId,omitempty"`
	Objective         string   `json:"objective,omitempty"`
	Sentiment         any      `json:"sentiment,omitempty"`
}

type queueClient struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewClient creates a queue API client. A nil httpClient gets a 30 second
// timeout default.
func NewClient(baseURL string, httpClient *http.Client, logger *logrus.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &queueClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

func (c *queueClient) ListAutoposts(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Cursor > 0 {
		query.Set("cursor", strconv.FormatInt(opts.Cursor, 10))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	endpoint := c.baseURL + "/api/autoposts"
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var response ListResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	if response.Autoposts == nil {
		response.Autoposts = []models.Autopost{}
	}
	return &response, nil
}

func (c *queueClient) CreateAutopost(ctx context.Context, req CreateAutopostRequest) (*models.Autopost, error) {
	var response struct {
		Autopost *models.Autopost `json:"autopost"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/autoposts", req, &response); err != nil {
		return nil, err
	}
	return response.Autopost, nil
}

func (c *queueClient) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*models.Autopost, error) {
	var response struct {
		Autopost *models.Autopost `json:"autopost"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/autoposts/creative", req, &response); err != nil {
		return nil, err
	}
	return response.Autopost, nil
}

func (c *queueClient) PublishAutopost(ctx context.Context, id int64, publishedAt time.Time) (*models.Autopost, error) {
	payload := map[string]any{"publishedAt": publishedAt.UTC().Format(time.RFC3339)}
	endpoint := fmt.Sprintf("%s/api/autoposts/%d/publish", c.baseURL, id)

	var response struct {
		Autopost *models.Autopost `json:"autopost"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &response); err != nil {
		return nil, err
	}
	return response.Autopost, nil
}

func (c *queueClient) ReleaseDue(ctx context.Context, releaseUntil time.Time) ([]models.Autopost, error) {
	payload := map[string]any{"releaseUntil": releaseUntil.UTC().Format(time.RFC3339)}

	var response struct {
		Autoposts []models.Autopost `json:"autoposts"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/autoposts/release-due", payload, &response); err != nil {
		return nil, err
	}
	if response.Autoposts == nil {
		response.Autoposts = []models.Autopost{}
	}
	return response.Autoposts, nil
}

func (c *queueClient) do(ctx context.Context, method, endpoint string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.WrapRetryable(err, errors.ErrCodeQueueAPI, "queue API request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return errors.Wrap(err, errors.ErrCodeQueueAPI, "failed to decode queue API response")
	}
	return nil
}

// decodeError surfaces the API's {error} message; server-side failures are
// marked retryable.
func (c *queueClient) decodeError(resp *http.Response) error {
	message := fmt.Sprintf("queue API returned status %d", resp.StatusCode)

	var apiError struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiError); err == nil && apiError.Error != "" {
		message = apiError.Error
	}

	appErr := errors.New(errors.ErrCodeQueueAPI, message).
		WithContext("status_code", resp.StatusCode)
	if resp.StatusCode >= 500 {
		appErr.Retryable = true
	}
	return appErr
}
