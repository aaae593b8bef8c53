package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cleartag/cleartag/internal/models"
)

// ErrScanFailed is wrapped by every error Scan returns. Callers are not
// expected to tell transport, status and decoding failures apart.
var ErrScanFailed = errors.New("scan failed")

const (
	// DefaultQuality is the JPEG quality used for uploaded frames
	DefaultQuality = 90
	// FormField is the multipart field the server reads the image from
	FormField = "file"
	// UploadFilename is the filename sent with the frame
	UploadFilename = "scan.jpg"
)

// Payload is what a capture produced. A nil Frame means the server does the
// capturing and the request is sent with an empty body.
type Payload struct {
	Frame image.Image
}

// Trigger is the payload of remote-camera stations
func Trigger() Payload {
	return Payload{}
}

// Client posts captures to the scan endpoint
type Client struct {
	endpoint   string
	base       *url.URL
	quality    int
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options configure a Client
type Options struct {
	// Quality of the JPEG encoding, 1-100
	Quality int
	// Timeout of the whole request, zero waits for the transport
	Timeout   time.Duration
	UserAgent string
	Logger    *slog.Logger
}

// NewClient returns a client for the scan endpoint under baseURL
func NewClient(baseURL string, opts Options) (*Client, error) {
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if opts.Quality == 0 {
		opts.Quality = DefaultQuality
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, fmt.Errorf("invalid JPEG quality %d", opts.Quality)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		endpoint:  endpoint,
		base:      base,
		quality:   opts.Quality,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: opts.Logger.With("component", "scan-client"),
	}, nil
}

// Endpoint resolves the /scan URL for a server base URL.
func Endpoint(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: scheme and host are required", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/scan"
	return u.String(), nil
}

// Endpoint returns the URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Scan sends one request and decodes the compliance result. It does not
// retry.
func (c *Client) Scan(ctx context.Context, p Payload) (*models.Result, error) {
	req, err := c.newRequest(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: server returned status %d: %s", ErrScanFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result models.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrScanFailed, err)
	}
	c.resolveImageURL(&result)

	c.logger.Info("Scan complete",
		"kind", result.Kind.String(),
		"status", result.Status().String(),
		"duration", time.Since(start).Round(time.Millisecond))
	return &result, nil
}

// resolveImageURL makes image_url absolute on the scan server. The server
// sends it relative to itself, and kiosk pages are served from another origin.
func (c *Client) resolveImageURL(r *models.Result) {
	if r.Kind != models.KindScored || r.Scored == nil || r.Scored.ImageURL == "" {
		return
	}
	ref, err := url.Parse(r.Scored.ImageURL)
	if err != nil {
		c.logger.Debug("Ignoring unparseable image_url", "image_url", r.Scored.ImageURL, "err", err)
		r.Scored.ImageURL = ""
		return
	}
	r.Scored.ImageURL = c.base.ResolveReference(ref).String()
}

func (c *Client) newRequest(ctx context.Context, p Payload) (*http.Request, error) {
	if p.Frame == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		c.setHeaders(req)
		c.logger.Debug("Sending capture trigger", "endpoint", c.endpoint)
		return req, nil
	}

	body, contentType, err := c.multipartBody(p.Frame)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.setHeaders(req)
	c.logger.Debug("Uploading frame", "endpoint", c.endpoint, "bytes", body.Len())
	return req, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func (c *Client) multipartBody(frame image.Image) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FormField, UploadFilename))
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if err := EncodeJPEG(part, frame, c.quality); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// EncodeJPEG writes img as a JPEG of the given quality
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}
