package acquire

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// HTTP downloads the export from the device's web interface.
type HTTP struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewHTTP creates an HTTP acquirer. Devices commonly serve self-signed
// certificates, so insecureTLS disables verification.
func NewHTTP(timeout time.Duration, insecureTLS bool) *HTTP {
	return &HTTP{
		client: &fasthttp.Client{
			Name:                "joblog",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: 256 << 20,
			TLSConfig:           &tls.Config{InsecureSkipVerify: insecureTLS},
		},
		timeout: timeout,
	}
}

// Acquire fetches req.URL with optional basic auth and saves the body.
func (h *HTTP) Acquire(ctx context.Context, req Request) (string, error) {
	if req.URL == "" {
		return "", &Error{Source: req.Source, Err: fmt.Errorf("no download url")}
	}

	freq := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(freq)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	freq.SetRequestURI(req.URL)
	freq.Header.SetMethod(fasthttp.MethodGet)
	if req.Username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(req.Username + ":" + req.Password))
		freq.Header.Set("Authorization", "Basic "+cred)
	}

	deadline := time.Now().Add(h.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := h.client.DoDeadline(freq, resp, deadline); err != nil {
		return "", &Error{Source: req.Source, Err: fmt.Errorf("download: %w", err)}
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return "", &Error{Source: req.Source, Err: fmt.Errorf("download: unexpected status %d", code)}
	}

	path, err := save(req.Dir, req.FileName, bytes.NewReader(resp.Body()))
	if err != nil {
		return "", &Error{Source: req.Source, Err: err}
	}
	return path, nil
}
