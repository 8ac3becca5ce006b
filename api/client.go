// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/ingrain/core"
	"github.com/poiesic/ingrain/storage"
)

// Client implements storage.JobStore and storage.CollectionStore over the
// HTTP API, so a worker can run on a different host than the queue.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ storage.JobStore        = (*Client)(nil)
	_ storage.CollectionStore = (*Client)(nil)
)

// NewClient creates a queue client for the server at baseURL.
func NewClient(baseURL string) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Enqueue(ctx context.Context, collection string, files []string) (*core.Job, error) {
	var job core.Job
	err := c.do(ctx, http.MethodPost, "/api/queue", EnqueueRequest{Collection: collection, Files: files}, &job)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) Get(ctx context.Context, id string) (*core.Job, error) {
	var job core.Job
	if err := c.do(ctx, http.MethodGet, "/api/queue/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) List(ctx context.Context) ([]*core.Job, error) {
	var jobs []*core.Job
	if err := c.do(ctx, http.MethodGet, "/api/queue", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) ListPending(ctx context.Context) ([]*core.Job, error) {
	var jobs []*core.Job
	if err := c.do(ctx, http.MethodGet, "/api/queue/pending", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) Claim(ctx context.Context, id string) (*core.Job, error) {
	var job core.Job
	if err := c.do(ctx, http.MethodPost, "/api/queue/"+url.PathEscape(id)+"/claim", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) Transition(ctx context.Context, id string, next core.JobStatus, result *core.JobResult) (*core.Job, error) {
	var job core.Job
	req := TransitionRequest{Status: next, Result: result}
	if err := c.do(ctx, http.MethodPost, "/api/queue/"+url.PathEscape(id)+"/transition", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) RequeueStale(ctx context.Context, age time.Duration) ([]string, error) {
	var resp RequeueResponse
	req := RequeueRequest{AgeSeconds: int(age / time.Second)}
	if err := c.do(ctx, http.MethodPost, "/api/queue/requeue", req, &resp); err != nil {
		return nil, err
	}
	return resp.Requeued, nil
}

func (c *Client) CreateCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/api/collections", CollectionRequest{Name: name}, nil)
}

func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/api/collections", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Close is a no-op; the client holds no persistent connections beyond the
// standard transport pool.
func (c *Client) Close() error { return nil }

// do performs one request and decodes the response into out when non-nil.
// Error responses are mapped back onto the store sentinel errors so callers
// behave identically against the local and remote queue.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("queue request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	msg := payload.Error
	switch resp.StatusCode {
	case http.StatusNotFound:
		return storage.ErrNotFound
	case http.StatusConflict:
		switch {
		case strings.Contains(msg, storage.ErrAlreadyClaimed.Error()):
			return storage.ErrAlreadyClaimed
		case strings.Contains(msg, storage.ErrCollectionExists.Error()):
			return storage.ErrCollectionExists
		default:
			return storage.ErrInvalidTransition
		}
	case http.StatusBadRequest:
		switch {
		case strings.Contains(msg, core.ErrNoFiles.Error()):
			return core.ErrNoFiles
		case strings.Contains(msg, core.ErrEmptyCollection.Error()):
			return core.ErrEmptyCollection
		case strings.Contains(msg, core.ErrEmptyFilename.Error()):
			return core.ErrEmptyFilename
		default:
			return fmt.Errorf("queue rejected request: %s", msg)
		}
	default:
		return fmt.Errorf("queue returned %d: %s", resp.StatusCode, msg)
	}
}
