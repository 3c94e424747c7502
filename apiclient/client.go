package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/site-admin-console/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout  = 15 * time.Second
	maxErrorBodyLen = 64 << 10
	maxErrorMsgLen  = 200
)

// Client talks to the content REST API. Authenticated requests take their
// bearer token from the token store; the refresh credential travels as an
// HTTP-only cookie kept in the client's cookie jar.
type Client struct {
	baseURL *url.URL
	tokens  *token.Store
	logger  zerolog.Logger

	timeout   time.Duration
	transport http.RoundTripper

	public *http.Client
	authed *http.Client
}

type Option func(*Client)

// WithTransport replaces the underlying round tripper (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, tokens *token.Store, options ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid API base URL %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid API base URL %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:   u,
		tokens:    tokens,
		logger:    log.Logger,
		timeout:   defaultTimeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range options {
		opt(c)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "error creating cookie jar")
	}

	base := &loggingTransport{base: c.transport, logger: c.logger}
	c.public = &http.Client{
		Transport: base,
		Jar:       jar,
		Timeout:   c.timeout,
	}
	c.authed = &http.Client{
		Transport: &oauth2.Transport{Source: tokens.TokenSource(), Base: base},
		Jar:       jar,
		Timeout:   c.timeout,
	}
	return c, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.baseURL.String(), "/")
}

type apiRequest struct {
	method        string
	path          string
	queryParams   map[string]string
	reqBodyObj    interface{}
	authenticated bool
	// bearer, when set, is sent as-is on the public client instead of asking
	// the token store at send time.
	bearer  string
	respObj interface{}
}

func (c *Client) executeAPIRequest(ctx context.Context, apiReq apiRequest) error {
	var reqBodyReader io.Reader
	if apiReq.reqBodyObj != nil {
		reqBodyBytes, err := json.Marshal(apiReq.reqBodyObj)
		if err != nil {
			return errors.Wrap(err, "error marshaling request body")
		}
		reqBodyReader = bytes.NewReader(reqBodyBytes)
	}

	ref, err := url.Parse(apiReq.path)
	if err != nil {
		return errors.Wrapf(err, "invalid request path %q", apiReq.path)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(apiReq.queryParams) > 0 {
		q := u.Query()
		for k, v := range apiReq.queryParams {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, apiReq.method, u.String(), reqBodyReader)
	if err != nil {
		return errors.Wrapf(err, "error creating request %s %s", apiReq.method, apiReq.path)
	}
	req.Header.Set("Accept", "application/json")
	if reqBodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiReq.bearer != "" && !apiReq.authenticated {
		req.Header.Set("Authorization", "Bearer "+apiReq.bearer)
	}

	httpClient := c.public
	if apiReq.authenticated {
		httpClient = c.authed
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "error invoking API %s %s", apiReq.method, apiReq.path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, apiReq.path)
	}

	if apiReq.respObj == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(apiReq.respObj); err != nil && err != io.EOF {
		return errors.Wrapf(err, "error unmarshaling response body of %s %s", apiReq.method, apiReq.path)
	}
	return nil
}

// newAPIError builds an APIError from a failed response. The body is expected
// to be {"message": "..."}; anything else is used verbatim as the message.
func newAPIError(resp *http.Response, path string) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Path:       path,
		sentinel:   sentinelForStatus(resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return apiErr
	}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorMsgLen {
			msg = msg[:maxErrorMsgLen] + "..."
		}
		apiErr.Message = msg
	}
	return apiErr
}
