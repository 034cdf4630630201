package server

import (
	"net/http"

	"github.com/nicolagi/blogposts/post"
	log "github.com/sirupsen/logrus"
)

const (
	notFound            = "Not found"
	postNotFound        = "Blog post not found"
	internalServerError = "Internal Server Error"
)

// respond writes v as the JSON body of a response with the given status.
func respond(w http.ResponseWriter, logger *log.Entry, status int, v interface{}) {
	body, err := post.Marshal(v)
	if err != nil {
		logger.WithField("err", err).Error("Could not encode response")
		status = http.StatusInternalServerError
		body, _ = post.Marshal(internalServerError)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.WithField("err", err).Warn("Failed writing response")
	}
}
