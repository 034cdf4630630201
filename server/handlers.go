package server

import (
	"errors"
	"io/ioutil"
	"net/http"

	"github.com/nicolagi/blogposts/blog"
	"github.com/nicolagi/blogposts/post"
	log "github.com/sirupsen/logrus"
)

func (s *Server) list(w http.ResponseWriter, logger *log.Entry) {
	posts := s.opts.posts.All()
	logger.WithField("posts", len(posts)).Debug("Success")
	respond(w, logger, http.StatusOK, posts)
}

func (s *Server) get(w http.ResponseWriter, id float64, logger *log.Entry) {
	logger = logger.WithField("id", id)
	p, err := s.opts.posts.Get(id)
	if s.failed(w, err, "Could not get post", logger) {
		return
	}
	logger.Debug("Success")
	respond(w, logger, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, logger *log.Entry) {
	body, err := readBody(r)
	if s.failed(w, err, "Could not create post", logger) {
		return
	}
	p, err := s.opts.posts.Create(body)
	if s.failed(w, err, "Could not create post", logger) {
		return
	}
	logger.Debug("Success")
	respond(w, logger, http.StatusCreated, post.Result{Message: "Blog post created", Post: p})
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request, id float64, logger *log.Entry) {
	logger = logger.WithField("id", id)
	body, err := readBody(r)
	if s.failed(w, err, "Could not update post", logger) {
		return
	}
	p, err := s.opts.posts.Replace(id, body)
	if s.failed(w, err, "Could not update post", logger) {
		return
	}
	logger.Debug("Success")
	respond(w, logger, http.StatusOK, post.Result{Message: "Blog post updated", Post: p})
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request, id float64, logger *log.Entry) {
	logger = logger.WithField("id", id)
	body, err := readBody(r)
	if s.failed(w, err, "Could not patch post", logger) {
		return
	}
	p, err := s.opts.posts.Patch(id, body)
	if s.failed(w, err, "Could not patch post", logger) {
		return
	}
	logger.Debug("Success")
	respond(w, logger, http.StatusOK, post.Result{Message: "Blog post patched", Post: p})
}

func (s *Server) delete(w http.ResponseWriter, id float64, logger *log.Entry) {
	logger = logger.WithField("id", id)
	p, err := s.opts.posts.Delete(id)
	if s.failed(w, err, "Could not delete post", logger) {
		return
	}
	logger.Debug("Success")
	respond(w, logger, http.StatusOK, post.Result{Message: "Blog post deleted", Post: p})
}

// failed reports whether err is non-nil, in which case it has responded with
// 404 for unknown ids or 500 for anything else.
func (s *Server) failed(w http.ResponseWriter, err error, msg string, logger *log.Entry) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, blog.ErrNotFound) {
		logger.Debug("Not found")
		respond(w, logger, http.StatusNotFound, postNotFound)
		return true
	}
	logger.WithField("err", err).Error(msg)
	respond(w, logger, http.StatusInternalServerError, internalServerError)
	return true
}

// readBody reads the whole request body and parses it once.
func readBody(r *http.Request) (post.Post, error) {
	b, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return post.Post{}, err
	}
	return post.Parse(b)
}
