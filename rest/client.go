package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"time"

	"github.com/Shyp/joblog/config"
)

const defaultTimeout = 6500 * time.Millisecond

// Client is a generic Rest client for making HTTP requests.
type Client struct {
	Client *http.Client
	Base   string

	// Debug dumps every request and response to DebugOut. NewClient turns it
	// on when DEBUG_HTTP_TRAFFIC is "true".
	Debug    bool
	DebugOut io.Writer
}

// NewClient returns a new Client. Base is the scheme+domain to hit for all
// requests. By default, the request timeout is set to 6.5 seconds.
func NewClient(base string) *Client {
	return &Client{
		Client:   &http.Client{Timeout: defaultTimeout},
		Base:     base,
		Debug:    os.Getenv("DEBUG_HTTP_TRAFFIC") == "true",
		DebugOut: os.Stderr,
	}
}

// NewRequest creates a new Request for the given path, relative to the
// client's Base.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Add("User-Agent", fmt.Sprintf("joblog-go/v%s", config.Version))
	req.Header.Add("Accept", "application/json")
	if method == "POST" || method == "PUT" {
		req.Header.Add("Content-Type", "application/json; charset=utf-8")
	}
	return req, nil
}

// Do performs the HTTP request. If the HTTP response is in the 2xx range,
// Unmarshal the response body into v, otherwise return an error.
func (c *Client) Do(r *http.Request, v interface{}) error {
	var dump bytes.Buffer
	if c.Debug {
		if bits, err := httputil.DumpRequestOut(r, true); err == nil {
			dump.Write(bits)
		}
	}
	res, err := c.Client.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if c.Debug {
		if bits, err := httputil.DumpResponse(res, true); err == nil {
			dump.Write(bits)
		}
		if _, err := dump.WriteTo(c.DebugOut); err != nil {
			return err
		}
	}
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		rerr := new(Error)
		if err := json.Unmarshal(resBody, rerr); err != nil || rerr.Title == "" {
			return fmt.Errorf("invalid response body: %s", string(resBody))
		}
		rerr.StatusCode = res.StatusCode
		return rerr
	}

	if v == nil {
		return nil
	}
	return json.Unmarshal(resBody, v)
}
