package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	chunkBufferSize = 32 * 1024
	maxErrorBody    = 4 * 1024
)

// Client talks to the Domains Lab backend
type Client struct {
	config  *Config
	baseURL *url.URL

	// client honours Config.Timeout; stream has no overall timeout because
	// an upload stays open for as long as the backend is processing domains.
	client *http.Client
	stream *http.Client
}

func New(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, newErrorWithCause(ErrTypeConfiguration, "configure", "invalid base URL", err)
	}

	c := &Client{
		config:  config,
		baseURL: baseURL,
		client:  &http.Client{Timeout: config.Timeout},
		stream:  &http.Client{},
	}
	if config.HTTPClient != nil {
		c.client = config.HTTPClient
		c.stream = config.HTTPClient
	}

	return c, nil
}

// BaseURL returns the backend base URL the client was configured with
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Upload posts the domains file as multipart field domainsFile and feeds
// every chunk of the streamed response body to onChunk, in arrival order.
// It returns once the body is exhausted.
func (c *Client) Upload(ctx context.Context, fileName, fileType string, content io.Reader, onChunk func(string)) error {
	const op = "upload"

	body, contentType := multipartBody(fileName, fileType, content)
	defer func() { _ = body.Close() }()

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", nil, body)
	if err != nil {
		return newErrorWithCause(ErrTypeNetwork, op, "failed to create request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.stream.Do(req)
	if err != nil {
		return newErrorWithCause(ErrTypeNetwork, op, "upload request failed", err).withRequest(req)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(op, resp).withRequest(req)
	}

	if err := readChunks(resp.Body, onChunk); err != nil {
		return newErrorWithCause(ErrTypeNetwork, op, "error reading upload stream", err).withRequest(req)
	}

	return nil
}

// Search asks the backend for records matching keyword and returns the
// result locator of the generated file.
func (c *Client) Search(ctx context.Context, keyword string) (string, error) {
	const op = "search"

	query := url.Values{}
	query.Set("keyword", keyword)

	req, err := c.newRequest(ctx, http.MethodGet, "/search", query, http.NoBody)
	if err != nil {
		return "", newErrorWithCause(ErrTypeNetwork, op, "failed to create request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", newErrorWithCause(ErrTypeNetwork, op, "search request failed", err).withRequest(req)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", responseError(op, resp).withRequest(req)
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", newErrorWithCause(ErrTypeDecode, op, "failed to decode search response", err).withRequest(req)
	}
	if result.FilePath == "" {
		return "", newError(ErrTypeDecode, op, "search response has no filepath").withRequest(req)
	}

	return result.FilePath, nil
}

// Download fetches the artifact behind a result locator
func (c *Client) Download(ctx context.Context, locator string) ([]byte, error) {
	const op = "download"

	query := url.Values{}
	query.Set("file", locator)

	req, err := c.newRequest(ctx, http.MethodGet, "/download", query, http.NoBody)
	if err != nil {
		return nil, newErrorWithCause(ErrTypeNetwork, op, "failed to create request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newErrorWithCause(ErrTypeNetwork, op, "download request failed", err).withRequest(req)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(op, resp).withRequest(req)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newErrorWithCause(ErrTypeNetwork, op, "error reading download body", err).withRequest(req)
	}

	return data, nil
}

// List returns every processed domain record known to the backend
func (c *Client) List(ctx context.Context) ([]DomainRecord, error) {
	const op = "list"

	req, err := c.newRequest(ctx, http.MethodGet, "/list", nil, http.NoBody)
	if err != nil {
		return nil, newErrorWithCause(ErrTypeNetwork, op, "failed to create request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newErrorWithCause(ErrTypeNetwork, op, "list request failed", err).withRequest(req)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(op, resp).withRequest(req)
	}

	var records []DomainRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, newErrorWithCause(ErrTypeDecode, op, "failed to decode list response", err).withRequest(req)
	}

	return records, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL.JoinPath(path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}

	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	return req, nil
}

func (e *Error) withRequest(req *http.Request) *Error {
	e.RequestID = req.Header.Get(requestIDHeader)
	return e
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody streams the form through a pipe so large domain lists are
// never buffered whole. The file part carries fileType as its Content-Type
// (application/octet-stream when empty), like a browser form upload.
func multipartBody(fileName, fileType string, content io.Reader) (io.ReadCloser, string) {
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(UploadField), quoteEscaper.Replace(fileName)))
	header.Set("Content-Type", fileType)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

// readChunks hands each read of r to fn as text. A multi-byte UTF-8
// sequence split across reads is carried over to the next chunk.
func readChunks(r io.Reader, fn func(string)) error {
	buf := make([]byte, chunkBufferSize)
	var pending []byte

	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			complete, rest := splitUTF8(pending)
			if len(complete) > 0 && fn != nil {
				fn(string(complete))
			}
			pending = append(pending[:0], rest...)
		}
		if err == io.EOF {
			if len(pending) > 0 && fn != nil {
				fn(string(pending))
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// splitUTF8 separates a trailing incomplete rune from b
func splitUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return b[:i], b[i:]
		}
		break
	}
	return b, nil
}

// responseError turns a non-success response into an *Error carrying the
// server payload: either {"error": "..."} JSON or the plain text written by
// http.Error.
func responseError(op string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(body))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			message = payload.Error
		case payload.Message != "":
			message = payload.Message
		}
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	e := newError(classifyStatus(resp.StatusCode), op, message)
	e.StatusCode = resp.StatusCode
	return e
}

func classifyStatus(code int) ErrorType {
	switch {
	case code == http.StatusNotFound:
		return ErrTypeNotFound
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return ErrTypeValidation
	default:
		return ErrTypeServer
	}
}
