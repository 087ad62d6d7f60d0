package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://rasp.rea.ru/"

const (
	suggestionsPath = "/Schedule/SearchBarSuggestions"
	cardPath        = "/Schedule/ScheduleCard"
	detailsPath     = "/Schedule/GetDetailsById"
)

type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
}

// Client talks to the schedule site the same way its own frontend does:
// XHR requests for the search suggestions, the weekly card and the lesson
// details popup.
type Client struct {
	Logger *zap.Logger
	http   *resty.Client
	base   string
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	http := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("Referer", base+"/").
		SetRetryCount(cfg.Retries).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	if cfg.RetryWait > 0 {
		http.SetRetryWaitTime(cfg.RetryWait)
	}

	return &Client{Logger: logger, http: http, base: base}
}

type suggestion struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Normalize resolves the exact group key through the search suggestions.
// Any failure leaves the selection unchanged.
func (c *Client) Normalize(ctx context.Context, selection string) string {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("searchFor", selection).
		Get(suggestionsPath)
	if err != nil {
		c.Logger.Warn("Normalize", zap.String("selection", selection), zap.Error(err))
		return selection
	}
	if resp.IsError() {
		c.Logger.Warn("Normalize", zap.String("selection", selection), zap.Int("status", resp.StatusCode()))
		return selection
	}

	var items []suggestion
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		c.Logger.Warn("Normalize: bad suggestions payload", zap.String("selection", selection), zap.Error(err))
		return selection
	}

	for _, item := range items {
		if strings.EqualFold(item.Key, selection) {
			return item.Key
		}
	}
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item.Name), selection) {
			if item.Key != "" {
				return item.Key
			}
			return strings.TrimSpace(item.Name)
		}
	}
	return selection
}

// Card downloads the HTML schedule card of a selection. week <= 0 asks for
// the current week.
func (c *Client) Card(ctx context.Context, selection string, week int) (string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("selection", selection)
	if week > 0 {
		req.SetQueryParam("weekNum", strconv.Itoa(week))
	}

	resp, err := req.Get(cardPath)
	if err != nil {
		return "", fmt.Errorf("fetch schedule card: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch schedule card: %s", resp.Status())
	}

	c.Logger.Debug("Card", zap.String("selection", selection), zap.Int("week", week), zap.Int("bytes", len(resp.Body())))
	return resp.String(), nil
}

// Details downloads the details popup of a single lesson.
func (c *Client) Details(ctx context.Context, elementID string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", elementID).
		Get(detailsPath)
	if err != nil {
		return "", fmt.Errorf("fetch details %s: %w", elementID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch details %s: %s", elementID, resp.Status())
	}
	return resp.String(), nil
}

var selectionRe = regexp.MustCompile(`[?&]q=([^&#]+)`)

// SelectionFromURL returns the "q" parameter of a schedule page URL,
// percent-decoded. A literal "+" is kept and a broken escape leaves the raw
// value.
func SelectionFromURL(raw string) string {
	m := selectionRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	q, err := url.PathUnescape(m[1])
	if err != nil {
		q = m[1]
	}
	return strings.TrimSpace(q)
}
