// Package client implements a client for the blog posts HTTP API served by
// package server.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/nicolagi/blogposts/post"
)

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("not found")
)

type options struct {
	address    string
	httpClient *http.Client
}

type Option func(*options)

// WithAddress sets the host:port of the server.
func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithHTTPClient(value *http.Client) Option {
	return func(o *options) {
		o.httpClient = value
	}
}

type Client struct {
	opts options
}

func New(opts ...Option) *Client {
	var c Client
	c.opts.address = "localhost:9999"
	c.opts.httpClient = http.DefaultClient
	for _, o := range opts {
		o(&c.opts)
	}
	return &c
}

func (c *Client) List() ([]post.Post, error) {
	var posts []post.Post
	if err := c.do(http.MethodGet, "/blog-posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) Get(id int64) (post.Post, error) {
	var p post.Post
	err := c.do(http.MethodGet, itemPath(id), nil, &p)
	return p, err
}

// Create sends body as a new post and returns the post as stored.
func (c *Client) Create(body post.Post) (post.Post, error) {
	return c.mutate(http.MethodPost, "/blog-posts", &body)
}

func (c *Client) Replace(id int64, body post.Post) (post.Post, error) {
	return c.mutate(http.MethodPut, itemPath(id), &body)
}

func (c *Client) Patch(id int64, body post.Post) (post.Post, error) {
	return c.mutate(http.MethodPatch, itemPath(id), &body)
}

// Delete removes a post and returns it.
func (c *Client) Delete(id int64) (post.Post, error) {
	return c.mutate(http.MethodDelete, itemPath(id), nil)
}

func (c *Client) mutate(method, path string, body *post.Post) (post.Post, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = post.Marshal(body); err != nil {
			return post.Post{}, err
		}
	}
	var result post.Result
	if err := c.do(method, path, payload, &result); err != nil {
		return post.Post{}, err
	}
	return result.Post, nil
}

func (c *Client) do(method, path string, payload []byte, out interface{}) (err error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	request, err := http.NewRequest(method, "http://"+c.opts.address+path, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := c.opts.httpClient.Do(request)
	if response != nil && response.Body != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}
	if err != nil {
		return err
	}
	body, err := ioutil.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode/100 != 2 {
		// Error bodies are JSON strings.
		var msg string
		if jerr := json.Unmarshal(body, &msg); jerr != nil {
			msg = string(body)
		}
		if response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s %s: %s: %w", method, path, msg, ErrNotFound)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, response.StatusCode, msg)
	}
	return json.Unmarshal(body, out)
}

func itemPath(id int64) string {
	return "/blog-posts/" + strconv.FormatInt(id, 10)
}
