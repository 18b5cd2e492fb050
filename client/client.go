// Package client is a Go client for the joblog GraphQL API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Shyp/joblog/rest"
)

const defaultHTTPTimeout = 6500 * time.Millisecond

var httpClient = &http.Client{Timeout: defaultHTTPTimeout}

// Client talks to the /graphql endpoint of a joblog server.
type Client struct {
	*rest.Client

	Vacancy *VacancyService
}

// NewClient creates a new Client. base is the scheme+host of the server, for
// example "http://localhost:4000".
func NewClient(base string) *Client {
	c := &Client{Client: &rest.Client{
		Client: httpClient,
		Base:   strings.TrimSuffix(base, "/"),
	}}
	c.Vacancy = &VacancyService{client: c}
	return c
}

// Error is one entry of the "errors" member of a GraphQL response.
type Error struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Code returns the "code" extension, for example "STORE_ERROR" or
// "RESOURCE_EXHAUSTED", or the empty string.
func (e *Error) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Errors is returned when the server answers with one or more field errors.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors"`
}

// Do runs query with the given variables and decodes the "data" member of the
// response into v. If the response carries errors, they are returned as
// Errors.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, v interface{}) error {
	b := new(bytes.Buffer)
	if err := json.NewEncoder(b).Encode(request{Query: query, Variables: variables}); err != nil {
		return err
	}
	req, err := c.NewRequest(ctx, "POST", "/graphql", b)
	if err != nil {
		return err
	}
	var resp response
	if err := c.Client.Do(req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return resp.Errors
	}
	if v == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		return fmt.Errorf("client: could not decode response data: %w", err)
	}
	return nil
}
