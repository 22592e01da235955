// Package facebook cross-posts reports to the public Facebook page
// through the Graph API.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trackback/internal/config"
	"trackback/internal/middleware"
	"trackback/internal/models"
	"trackback/internal/observability"

	"github.com/hashicorp/go-retryablehttp"
)

const graphBaseURL = "https://graph.facebook.com/v22.0"

// leveledSlog adapts slog for retryablehttp. Intermediate failures are
// logged at WARN since the client retries them.
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Info(msg, keysAndValues...)
}

func (l leveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

// Client publishes page posts through the Graph API.
type Client struct {
	baseURL   string
	token     string
	clientURL string
	http      *http.Client
}

// NewClient builds a Graph API client with retrying transport. Returns
// nil when no page access token is configured.
func NewClient(cfg *config.Config) *Client {
	if cfg.FacebookToken == "" {
		return nil
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: middleware.Logger})

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:   graphBaseURL,
		token:     cfg.FacebookToken,
		clientURL: cfg.ClientURL,
		http:      httpClient,
	}
}

type graphResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
	Error  *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Publish cross-posts a report to the page. Posts with images go to
// /me/photos with the first image; text-only posts go to /me/feed.
// Returns the ID of the created page post.
func (c *Client) Publish(ctx context.Context, post *models.Post) (string, error) {
	caption := BuildCaption(post, c.clientURL)

	form := url.Values{}
	form.Set("access_token", c.token)

	var endpoint string
	if len(post.Images) > 0 {
		endpoint = c.baseURL + "/me/photos"
		form.Set("url", post.Images[0])
		form.Set("caption", caption)
	} else {
		endpoint = c.baseURL + "/me/feed"
		form.Set("message", caption)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		observability.FacebookPublishes.WithLabelValues("failure").Inc()
		return "", models.NewInternalError(fmt.Errorf("facebook publish failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.FacebookPublishes.WithLabelValues("failure").Inc()
		return "", models.NewInternalError(err)
	}

	var parsed graphResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		observability.FacebookPublishes.WithLabelValues("failure").Inc()
		return "", models.NewInternalError(fmt.Errorf("unexpected facebook response: %w", err))
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		observability.FacebookPublishes.WithLabelValues("failure").Inc()
		message := "facebook publish rejected"
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		return "", models.NewInternalError(fmt.Errorf("facebook publish failed: %s (status %d)", message, resp.StatusCode))
	}

	// Photo uploads report the page post under post_id.
	pagePostID := parsed.PostID
	if pagePostID == "" {
		pagePostID = parsed.ID
	}

	observability.FacebookPublishes.WithLabelValues("success").Inc()
	return pagePostID, nil
}

// BuildCaption renders the page post text for a report.
func BuildCaption(post *models.Post, clientURL string) string {
	var b strings.Builder

	if post.Kind == models.KindFound {
		b.WriteString("✅ FOUND ITEM ✅\n\n")
	} else {
		b.WriteString("🚨 LOST ITEM ALERT 🚨\n\n")
	}

	b.WriteString(post.Title)
	b.WriteString("\n\n")

	if post.Location != "" {
		fmt.Fprintf(&b, "📍 Location: %s\n", post.Location)
	}
	if !post.Date.IsZero() {
		fmt.Fprintf(&b, "📅 Date: %s\n", post.Date.Format("2 January 2006"))
	}
	if post.Color != "" {
		fmt.Fprintf(&b, "🎨 Color: %s\n", post.Color)
	}
	if post.Description != "" {
		b.WriteString("\n")
		b.WriteString(post.Description)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if post.Kind == models.KindFound {
		b.WriteString("Is this yours? Claim it on TrackBack: ")
	} else {
		b.WriteString("Seen this item? Report it on TrackBack: ")
	}
	fmt.Fprintf(&b, "%s/posts/%d", clientURL, post.ID)

	return b.String()
}
