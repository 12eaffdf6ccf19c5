package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Endpoint paths on the scoring service.
const (
	PathStructure      = "/structure"
	PathAnalyze        = "/analyze"
	PathScoreEssay     = "/score_essay"
	PathParseRubric    = "/parse_rubric"
	PathStructurePDF   = "/structure_pdf"
	PathAnalyzePDF     = "/analyze_pdf"
	PathScoreEssayPDF  = "/score_essay_pdf"
	PathParseRubricPDF = "/parse_rubric_pdf"
)

// Client talks to the scoring service over HTTP.
type Client struct {
	baseURL    string
	client     *http.Client
	logger     *zap.Logger
	timeout    time.Duration
	hasTimeout bool
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it. The timeout
// applies to a copy of any client passed with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.hasTimeout = true
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasTimeout {
		client := *c.client
		client.Timeout = c.timeout
		c.client = &client
	}
	return c
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type textRequest struct {
	Text string `json:"text"`
}

type analyzeRequest struct {
	Text   string   `json:"text"`
	Rubric []string `json:"rubric"`
}

type scoreRequest struct {
	EssayText string `json:"essay_text"`
	RubricID  string `json:"rubric_id"`
}

type parseRubricRequest struct {
	RubricText string `json:"rubric_text"`
}

type parseRubricResponse struct {
	RubricID string `json:"rubric_id"`
}

// Structure splits essay text into sections.
func (c *Client) Structure(ctx context.Context, text string) ([]Section, error) {
	var sections []Section
	if err := c.postJSON(ctx, PathStructure, textRequest{Text: text}, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Analyze scores essay text against a list of criteria.
func (c *Client) Analyze(ctx context.Context, text string, criteria []string) ([]Match, error) {
	if criteria == nil {
		criteria = []string{}
	}
	var wire []wireMatch
	if err := c.postJSON(ctx, PathAnalyze, analyzeRequest{Text: text, Rubric: criteria}, &wire); err != nil {
		return nil, err
	}
	return normalizeMatches(wire), nil
}

// RegisterRubric stores rubric text on the service and returns its id.
func (c *Client) RegisterRubric(ctx context.Context, rubricText string) (string, error) {
	var resp parseRubricResponse
	if err := c.postJSON(ctx, PathParseRubric, parseRubricRequest{RubricText: rubricText}, &resp); err != nil {
		return "", err
	}
	return rubricIDFrom(PathParseRubric, resp)
}

// ScoreEssay scores essay text against a registered rubric.
func (c *Client) ScoreEssay(ctx context.Context, essayText, rubricID string) ([]Match, error) {
	var wire []wireMatch
	if err := c.postJSON(ctx, PathScoreEssay, scoreRequest{EssayText: essayText, RubricID: rubricID}, &wire); err != nil {
		return nil, err
	}
	return normalizeMatches(wire), nil
}

func rubricIDFrom(path string, resp parseRubricResponse) (string, error) {
	id := strings.TrimSpace(resp.RubricID)
	if id == "" {
		return "", fmt.Errorf("%s: response missing rubric_id", path)
	}
	return id, nil
}

func (c *Client) postJSON(ctx context.Context, path string, request any, out any) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", path, err)
	}
	return c.send(ctx, path, "application/json", payload, out)
}

func (c *Client) send(ctx context.Context, path, contentType string, payload []byte, out any) error {
	started := time.Now()
	body, status, err := c.post(ctx, path, contentType, payload)
	if err != nil {
		c.logger.Debug("scoring request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s: %w", path, err)
	}
	c.logger.Debug("scoring request",
		zap.String("path", path),
		zap.Int("status", status),
		zap.Int("bytes", len(payload)),
		zap.Duration("elapsed", time.Since(started)),
	)
	if status < 200 || status > 299 {
		return decodeHTTPError(path, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, contentType string, payload []byte) ([]byte, int, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
