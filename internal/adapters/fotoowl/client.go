package fotoowl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"echoo/internal/domain"
)

// Client calls the FotoOwl face-matching API. It is constructed with its
// configuration and injected into the registration service, so tests can
// substitute a fake provider.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	listTimeout    time.Duration
	logger         *slog.Logger
}

// NewClient returns a FotoOwl client. requestTimeout bounds the selfie
// submission (upload plus provider-side processing); listTimeout bounds
// image-list queries.
func NewClient(baseURL string, httpClient *http.Client, requestTimeout, listTimeout time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:        baseURL,
		httpClient:     httpClient,
		requestTimeout: requestTimeout,
		listTimeout:    listTimeout,
		logger:         logger,
	}
}

type requestEnvelope struct {
	OK   bool `json:"ok"`
	Data struct {
		RequestID   int64   `json:"request_id"`
		RequestKey  string  `json:"request_key"`
		RedirectURL *string `json:"redirect_url"`
	} `json:"data"`
}

type imageListEnvelope struct {
	OK   bool `json:"ok"`
	Data struct {
		ImageList []json.RawMessage `json:"image_list"`
	} `json:"data"`
}

// CreateRequest uploads the selfie at filePath as a multipart form together
// with the event id and key, and returns the provider's correlation
// identifiers.
func (c *Client) CreateRequest(ctx context.Context, eventID int64, eventKey, filePath string) (*domain.MatchRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open selfie file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("event_id", strconv.FormatInt(eventID, 10)); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("key", eventKey); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/open/request", pr)
	if err != nil {
		return nil, fmt.Errorf("create provider request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: submit selfie to provider: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", domain.ErrInvalidInput, resp.StatusCode)
	}

	var envelope requestEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode provider response: %v", domain.ErrInvalidInput, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("%w: provider returned error response", domain.ErrInvalidInput)
	}
	if envelope.Data.RequestID == 0 || envelope.Data.RequestKey == "" {
		return nil, fmt.Errorf("%w: provider response missing request_id or request_key", domain.ErrInvalidInput)
	}

	return &domain.MatchRequest{
		RequestID:   envelope.Data.RequestID,
		RequestKey:  envelope.Data.RequestKey,
		RedirectURL: envelope.Data.RedirectURL,
	}, nil
}

// ImageList returns the matched images for a registration, in provider
// order. Malformed entries are skipped with a warning; a malformed top-level
// envelope is fatal to the call.
func (c *Client) ImageList(ctx context.Context, eventID int64, page, pageSize int, eventKey string, requestID int64, requestKey string) ([]domain.ProviderImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("event_id", strconv.FormatInt(eventID, 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	params.Set("key", eventKey)
	params.Set("request_id", strconv.FormatInt(requestID, 10))
	params.Set("request_key", requestKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/open/event/image-list?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create provider request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch image list from provider: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", domain.ErrInvalidInput, resp.StatusCode)
	}

	var envelope imageListEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode provider response: %v", domain.ErrInvalidInput, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("%w: provider returned error response", domain.ErrInvalidInput)
	}

	images := make([]domain.ProviderImage, 0, len(envelope.Data.ImageList))
	for _, raw := range envelope.Data.ImageList {
		var img domain.ProviderImage
		if err := json.Unmarshal(raw, &img); err != nil {
			c.logger.Warn("skipping malformed provider image entry", "err", err)
			continue
		}
		if img.ID == 0 {
			c.logger.Warn("skipping provider image entry without id", "name", img.Name)
			continue
		}
		images = append(images, img)
	}
	return images, nil
}
