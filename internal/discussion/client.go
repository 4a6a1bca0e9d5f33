package discussion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/domain"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/tidwall/gjson"
)

// APIKeyHeader carries the shared service key on every request.
const APIKeyHeader = "X-Edx-Api-Key"

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Client errors
var (
	ErrUserNotFound    = errors.New("discussion user not found")
	ErrInvalidResponse = errors.New("invalid discussion service response")
)

// RequestError is returned for non-2xx responses from the discussion service.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("discussion service %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Unwrap lets callers test for ErrUserNotFound on 404 responses.
func (e *RequestError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	return nil
}

// PaginatedResult is one page of a paginated collection.
type PaginatedResult struct {
	Collection  []domain.Thread
	Page        int
	NumPages    int
	ThreadCount int
}

// Client talks to the discussion service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the service rooted at baseURL, e.g.
// "http://forum:4567/api/v1".
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// Relative paths resolve under the base only when it ends in a slash.
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) builder() *requests.Builder {
	return requests.
		URL(c.baseURL).
		Client(c.httpClient).
		Header(APIKeyHeader, c.apiKey).
		Param("request_id", uuid.NewString()).
		Accept("application/json")
}

// SubscribedThreads fetches one page of the threads userID follows in a course.
func (c *Client) SubscribedThreads(
	ctx context.Context,
	userID int64,
	courseID string,
	page int,
) (*PaginatedResult, error) {
	path := fmt.Sprintf("users/%d/subscribed_threads", userID)

	var body string
	err := c.builder().
		Path(path).
		Param("course_id", courseID).
		Param("page", strconv.Itoa(page)).
		AddValidator(c.checkStatus(http.MethodGet, path)).
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch subscribed threads for user %d: %w", userID, err)
	}

	return parsePaginatedThreads(body)
}

// checkStatus turns non-2xx responses into a *RequestError.
func (c *Client) checkStatus(method, path string) requests.ResponseHandler {
	return func(res *http.Response) error {
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return nil
		}
		var snippet string
		_ = requests.ToString(&snippet)(res)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return &RequestError{
			Method:     method,
			URL:        c.baseURL + path,
			StatusCode: res.StatusCode,
			Body:       snippet,
		}
	}
}

// parsePaginatedThreads reads a paginated thread collection. Missing page
// fields default to a single page; a missing collection is empty.
func parsePaginatedThreads(body string) (*PaginatedResult, error) {
	if !gjson.Valid(body) {
		return nil, ErrInvalidResponse
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return nil, ErrInvalidResponse
	}

	result := &PaginatedResult{
		Page:        intOr(doc.Get("page"), 1),
		NumPages:    intOr(doc.Get("num_pages"), 1),
		ThreadCount: int(doc.Get("thread_count").Int()),
		Collection:  []domain.Thread{},
	}

	doc.Get("collection").ForEach(func(_, item gjson.Result) bool {
		if id := item.Get("id").String(); id != "" {
			result.Collection = append(result.Collection, domain.Thread{ID: id})
		}
		return true
	})

	return result, nil
}

func intOr(r gjson.Result, def int) int {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return int(r.Int())
}

// SubscribedThreadIDs drains every page of the user's subscriptions in a course.
func (c *Client) SubscribedThreadIDs(
	ctx context.Context,
	userID int64,
	courseID string,
) (map[string]struct{}, error) {
	log := logger.FromContext(ctx)
	ids := make(map[string]struct{})

	page, numPages := 0, 1
	for page < numPages {
		result, err := c.SubscribedThreads(ctx, userID, courseID, page+1)
		if err != nil {
			return nil, err
		}
		for _, thread := range result.Collection {
			ids[thread.ID] = struct{}{}
		}

		// A service that does not advance the page would loop forever.
		if result.Page <= page {
			return nil, fmt.Errorf("%w: page %d did not advance past %d", ErrInvalidResponse, result.Page, page)
		}
		page, numPages = result.Page, result.NumPages
	}

	log.Debug("fetched subscribed threads",
		"user_id", userID,
		"course_id", courseID,
		"pages", page,
		"thread_count", len(ids))
	return ids, nil
}

// IsSubscribed reports whether userID follows threadID.
func (c *Client) IsSubscribed(
	ctx context.Context,
	userID int64,
	courseID string,
	threadID string,
) (bool, error) {
	ids, err := c.SubscribedThreadIDs(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	_, ok := ids[threadID]
	return ok, nil
}
