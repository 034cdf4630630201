package server

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
)

const collectionPath = "/blog-posts"

func (s *Server) route(w http.ResponseWriter, r *http.Request, logger *log.Entry) {
	path := r.URL.EscapedPath()
	item := strings.HasPrefix(path, collectionPath+"/")
	switch {
	case r.Method == http.MethodGet && path == collectionPath:
		s.list(w, logger)
	case r.Method == http.MethodGet && item:
		s.get(w, pathID(path), logger)
	case r.Method == http.MethodPost && path == collectionPath:
		s.create(w, r, logger)
	case r.Method == http.MethodPut && item:
		s.replace(w, r, pathID(path), logger)
	case r.Method == http.MethodPatch && item:
		s.patch(w, r, pathID(path), logger)
	case r.Method == http.MethodDelete && item:
		s.delete(w, pathID(path), logger)
	default:
		logger.Debug("No route")
		respond(w, logger, http.StatusNotFound, notFound)
	}
}

// pathID extracts the id from an item path: the segment after /blog-posts/,
// up to the next slash if any.
func pathID(path string) float64 {
	segment := strings.TrimPrefix(path, collectionPath+"/")
	if i := strings.IndexByte(segment, '/'); i != -1 {
		segment = segment[:i]
	}
	return parseInt(segment)
}

// parseInt reads an integer from the start of s, ignoring leading white space
// and anything after the digits. A "0x" prefix selects hexadecimal. If s does
// not start with a number the result is NaN, which never equals any post id.
func parseInt(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	n := 0
	for n < len(s) && isDigit(s[n], base) {
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	var (
		v   float64
		err error
	)
	if base == 16 {
		v, err = strconv.ParseFloat("0x"+s[:n]+"p0", 64)
	} else {
		v, err = strconv.ParseFloat(s[:n], 64)
	}
	if err != nil {
		// Only overflow is possible here.
		return sign * math.Inf(1)
	}
	return sign * v
}

func isDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f', base == 16 && c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}
