package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/justyntemme/tome-t/pkg/models"
)

// Client is the HTTP client for the Tome server API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the server root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request makes a GET request to the API
func (c *Client) request(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	// Folder listings put book paths in the URL path, so escape it
	target := c.baseURL + (&url.URL{Path: path}).EscapedPath()
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	return c.httpClient.Do(req)
}

// parseResponse reads and unmarshals the response body
func parseResponse[T any](resp *http.Response) (T, error) {
	var result T
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}

	if resp.StatusCode >= 400 {
		return result, statusError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}

// statusError builds an error from a failed response, preferring the
// server's {"error": "..."} message when present
func statusError(code int, body []byte) error {
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return &StatusError{Code: code, Message: strings.TrimSpace(string(body))}
	}
	return &StatusError{Code: code, Message: errResp.Error}
}

// StatusError is returned for non-success HTTP responses
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// drain closes a response whose body is not needed, turning failures into errors
func drain(resp *http.Response) error {
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, body)
	}
	return nil
}

// Library methods

// ListBooks returns one page of a listing endpoint (/api/all, /api/root/..., /api/search)
func (c *Client) ListBooks(ctx context.Context, endpoint string, sort models.SortKey, order models.SortOrder, page int, q string) (*models.BooksResponse, error) {
	params := url.Values{}
	params.Set("sort", string(sort))
	params.Set("order", string(order))
	params.Set("page", strconv.Itoa(page))
	params.Set("q", q)

	resp, err := c.request(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return parseResponse[*models.BooksResponse](resp)
}

// Book stream methods

// PageURL builds the URL of a single rendered page image
func (c *Client) PageURL(format, path string, page int) string {
	params := url.Values{}
	params.Set("path", path)
	params.Set("page", strconv.Itoa(page))
	return c.baseURL + "/book/" + format + "?" + params.Encode()
}

// PageCount returns the total number of pages of a paginated book
func (c *Client) PageCount(ctx context.Context, format, path string) (int, error) {
	params := url.Values{}
	params.Set("path", path)

	resp, err := c.request(ctx, "/book/"+format+"/pages", params)
	if err != nil {
		return 0, err
	}
	result, err := parseResponse[models.PagesResponse](resp)
	if err != nil {
		return 0, err
	}
	// A response without a usable count is treated as a single page
	if result.Pages < 1 {
		return 1, nil
	}
	return result.Pages, nil
}

// PageImage fetches the image bytes of one page (1-based)
func (c *Client) PageImage(ctx context.Context, format, path string, page int) ([]byte, string, error) {
	return c.fetchImage(ctx, c.PageURL(format, path, page))
}

// ErrNoCover is returned for entries the server has no cover for
var ErrNoCover = errors.New("no cover")

// CoverURL builds the URL of a cover image from an entry's cover path
func (c *Client) CoverURL(cover string) string {
	return c.baseURL + (&url.URL{Path: "/cover/" + strings.TrimPrefix(cover, "/")}).EscapedPath()
}

// Cover fetches the cover image of a listing entry
func (c *Client) Cover(ctx context.Context, cover string) ([]byte, string, error) {
	if strings.Trim(cover, "/") == "" {
		return nil, "", ErrNoCover
	}
	return c.fetchImage(ctx, c.CoverURL(cover))
}

// fetchImage downloads image bytes and their content type
func (c *Client) fetchImage(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 400 {
		return nil, "", statusError(resp.StatusCode, data)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// EPUB downloads the raw EPUB archive
func (c *Client) EPUB(ctx context.Context, path string) ([]byte, error) {
	params := url.Values{}
	params.Set("path", path)

	resp, err := c.request(ctx, "/book/epub", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

// Tracking methods

// Access notifies the server that a book was opened
func (c *Client) Access(ctx context.Context, path string) error {
	params := url.Values{}
	params.Set("path", path)

	resp, err := c.request(ctx, "/api/access", params)
	if err != nil {
		return err
	}
	return drain(resp)
}

// Progress persists the reading position and progress fraction
func (c *Client) Progress(ctx context.Context, path, position string, progress float64) error {
	params := url.Values{}
	params.Set("path", path)
	params.Set("position", position)
	params.Set("progress", strconv.FormatFloat(progress, 'f', -1, 64))

	resp, err := c.request(ctx, "/api/progress", params)
	if err != nil {
		return err
	}
	return drain(resp)
}
