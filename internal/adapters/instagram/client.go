package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"echoo/internal/domain"
)

const apiHost = "instagram-scraper-stable-api.p.rapidapi.com"

// Client fetches recent posts for an instagram profile through the scraper
// API. Fetching is best-effort everywhere it is used; callers log failures
// and move on.
type Client struct {
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(apiKey string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{apiKey: apiKey, httpClient: httpClient, timeout: timeout}
}

type postsResponse struct {
	Posts []struct {
		Node struct {
			Code    string          `json:"code"`
			TakenAt *int64          `json:"taken_at"`
			Caption json.RawMessage `json:"caption"`
		} `json:"node"`
	} `json:"posts"`
}

// FetchPosts returns up to amount posts for the profile URL. Posts without a
// code are skipped; caption and timestamp are optional.
func (c *Client) FetchPosts(ctx context.Context, profileURL string, amount int) ([]*domain.InstaPost, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("username_or_url", profileURL)
	form.Set("amount", strconv.Itoa(amount))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://"+apiHost+"/get_ig_user_posts.php", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-rapidapi-host", apiHost)
	req.Header.Set("x-rapidapi-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch instagram posts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram api returned status: %d", resp.StatusCode)
	}

	var data postsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode instagram response: %w", err)
	}

	posts := make([]*domain.InstaPost, 0, len(data.Posts))
	for _, p := range data.Posts {
		if p.Node.Code == "" {
			continue
		}
		post := &domain.InstaPost{
			Code:               p.Node.Code,
			InstagramCreatedAt: p.Node.TakenAt,
		}
		if caption := extractCaption(p.Node.Caption); caption != "" {
			post.Caption = &caption
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// extractCaption handles both caption shapes the API returns: a plain string
// or an object with a text field.
func extractCaption(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Text
	}
	return ""
}
