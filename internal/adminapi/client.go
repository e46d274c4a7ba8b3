package adminapi

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// The admin API serves the events and projects arrays rendered by the site.
// Payloads are opaque here: the proxy relays status and bytes verbatim.

const maxUpstreamBody = 10 << 20

type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Fetch performs an upstream GET for the given path (leading slash included)
// and optional raw query. The caller's context bounds the whole exchange.
func (c *Client) Fetch(ctx context.Context, path, rawQuery string) (Response, error) {
	url := c.baseURL + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("Accept", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return Response{}, err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxUpstreamBody))
	if err != nil {
		return Response{}, err
	}

	ct := res.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}

	return Response{
		Status:      res.StatusCode,
		ContentType: ct,
		Body:        body,
	}, nil
}
