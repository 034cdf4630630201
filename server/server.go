// Package server implements the HTTP interface to a blog.Collection.
//
// Requests are routed on method and path:
//
//	GET    /blog-posts       list all posts
//	GET    /blog-posts/{id}  get one post
//	POST   /blog-posts       create a post
//	PUT    /blog-posts/{id}  replace a post
//	PATCH  /blog-posts/{id}  merge fields into a post
//	DELETE /blog-posts/{id}  delete a post
//
// Anything else is answered with 404 and the JSON string "Not found". All
// bodies are JSON. Unknown ids get 404 and "Blog post not found"; every other
// failure, including a malformed request body, gets 500 and "Internal Server
// Error".
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/nicolagi/blogposts/blog"
	log "github.com/sirupsen/logrus"
)

// DefaultAddress is where the server listens unless told otherwise.
const DefaultAddress = ":9999"

type Option func(*options)

type options struct {
	address string
	posts   *blog.Collection
}

func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithCollection(value *blog.Collection) Option {
	return func(o *options) {
		o.posts = value
	}
}

type Server struct {
	opts options
	ln   net.Listener
	http *http.Server
}

func New(opts ...Option) *Server {
	s := &Server{}
	s.opts.address = DefaultAddress
	for _, o := range opts {
		o(&s.opts)
	}
	s.http = &http.Server{Handler: s}
	return s
}

func (s *Server) Listen() (addr string, err error) {
	s.ln, err = net.Listen("tcp", s.opts.address)
	if err != nil {
		return
	}
	addr = s.ln.Addr().String()
	return
}

// Serve handles requests on the listener set up by Listen. It returns nil once
// Shutdown has been called.
func (s *Server) Serve() error {
	err := s.http.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests to
// complete, or for ctx to be done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFields(log.Fields{
		"op":   r.Method,
		"path": r.URL.Path,
	})
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.WithField("panic", v).Error("Request failed")
			respond(w, logger, http.StatusInternalServerError, internalServerError)
		}
	}()
	s.route(w, r, logger)
}
