// Package api is a thin client for the three WeCom endpoints used by
// wxnotify: access token retrieval, message send and temporary media upload.
//
// It builds requests, checks the HTTP status and decodes JSON. It does not
// interpret the platform errcode; callers decide what a non-zero code means.
// Errors never contain the corp secret or the access token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/bft-labs/wxnotify/pkg/log"
)

// DefaultBaseURL is the public WeCom API host.
const DefaultBaseURL = "https://qyapi.weixin.qq.com"

const (
	tokenEndpoint  = "/cgi-bin/gettoken"
	sendEndpoint   = "/cgi-bin/message/send"
	uploadEndpoint = "/cgi-bin/media/upload"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTPClient abstracts HTTP request execution.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Status is the error envelope present in every platform response.
type Status struct {
	ErrCode *int   `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// OK reports whether the response carried errcode 0.
// A missing errcode is not OK.
func (s Status) OK() bool {
	return s.ErrCode != nil && *s.ErrCode == 0
}

// Code returns the errcode, or -1 when the field was missing.
func (s Status) Code() int {
	if s.ErrCode == nil {
		return -1
	}
	return *s.ErrCode
}

// TokenResponse is the body returned by the gettoken endpoint.
type TokenResponse struct {
	Status
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// SendResponse is the body returned by the message send endpoint.
type SendResponse struct {
	Status
	InvalidUser    string `json:"invaliduser"`
	InvalidParty   string `json:"invalidparty"`
	InvalidTag     string `json:"invalidtag"`
	UnlicensedUser string `json:"unlicenseduser"`
	MsgID          string `json:"msgid"`
	ResponseCode   string `json:"response_code"`

	// Raw is the undecoded response body.
	Raw json.RawMessage `json:"-"`
}

// UploadResponse is the body returned by the media upload endpoint.
type UploadResponse struct {
	Status
	Type      string `json:"type"`
	MediaID   string `json:"media_id"`
	CreatedAt string `json:"created_at"`
}

// Client calls the platform endpoints rooted at a base URL.
type Client struct {
	baseURL string
	http    HTTPClient
	logger  log.Logger
}

// New creates a Client. An empty baseURL means DefaultBaseURL.
func New(baseURL string, httpc HTTPClient, logger log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpc,
		logger:  logger,
	}
}

// GetToken requests an access token for the corp id / secret pair.
func (c *Client) GetToken(ctx context.Context, corpID, secret string) (TokenResponse, error) {
	var resp TokenResponse

	q := url.Values{}
	q.Set("corpid", corpID)
	q.Set("corpsecret", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(tokenEndpoint, q), nil)
	if err != nil {
		return resp, scrub(fmt.Errorf("create request: %w", err), secret)
	}

	body, err := c.do(req)
	if err != nil {
		return resp, scrub(err, secret)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("decode token response: %w", err)
	}
	return resp, nil
}

// SendMessage posts an encoded message body.
func (c *Client) SendMessage(ctx context.Context, accessToken string, payload []byte) (SendResponse, error) {
	var resp SendResponse

	q := url.Values{}
	q.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(sendEndpoint, q), bytes.NewReader(payload))
	if err != nil {
		return resp, scrub(fmt.Errorf("create request: %w", err), accessToken)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return resp, scrub(err, accessToken)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("decode send response: %w", err)
	}
	resp.Raw = json.RawMessage(body)
	return resp, nil
}

// Upload describes one file to upload as temporary media.
type Upload struct {
	// MediaType is the platform media type ("file", "image", "voice", "video").
	MediaType string
	// Filename is reported in the Content-Disposition of the file part.
	Filename string
	// Boundary is the multipart boundary; it must be unique per request.
	Boundary string
	Content  io.Reader
}

// UploadMedia posts a single file part as multipart/form-data.
func (c *Client) UploadMedia(ctx context.Context, accessToken string, u Upload) (UploadResponse, error) {
	var resp UploadResponse

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if u.Boundary != "" {
		if err := writer.SetBoundary(u.Boundary); err != nil {
			return resp, fmt.Errorf("set boundary: %w", err)
		}
	}

	// CreateFormFile declares the part as application/octet-stream.
	part, err := writer.CreateFormFile("media", u.Filename)
	if err != nil {
		return resp, fmt.Errorf("create media part: %w", err)
	}
	if _, err := io.Copy(part, u.Content); err != nil {
		return resp, fmt.Errorf("write media part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return resp, fmt.Errorf("finalize multipart: %w", err)
	}

	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("type", u.MediaType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(uploadEndpoint, q), &buf)
	if err != nil {
		return resp, scrub(fmt.Errorf("create request: %w", err), accessToken)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return resp, scrub(err, accessToken)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return resp, fmt.Errorf("decode upload response: %w", err)
	}
	return resp, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	return c.baseURL + path + "?" + q.Encode()
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("platform response",
		log.String("method", req.Method),
		log.String("path", req.URL.Path),
		log.Int("status", resp.StatusCode),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%s %s: server returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

// scrubbedError hides credentials that net/http embeds in *url.Error.
type scrubbedError struct {
	err      error
	scrubber *strings.Replacer
}

func (se *scrubbedError) Error() string { return se.scrubber.Replace(se.err.Error()) }

func (se *scrubbedError) Unwrap() error { return se.err }

func scrub(err error, secrets ...string) error {
	var pairs []string
	for _, s := range secrets {
		if s == "" {
			continue
		}
		pairs = append(pairs, s, "[REDACTED]")
		// Query values appear escaped inside URLs.
		if esc := url.QueryEscape(s); esc != s {
			pairs = append(pairs, esc, "[REDACTED]")
		}
	}
	if len(pairs) == 0 {
		return err
	}
	return &scrubbedError{err: err, scrubber: strings.NewReplacer(pairs...)}
}
