package exporter

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	logIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	logIDLength   = 12
)

// logIDSource hands out request identifiers from a shared *rand.Rand, which
// is not safe for concurrent use on its own.
type logIDSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (s *logIDSource) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sb strings.Builder
	sb.Grow(logIDLength)
	for i := 0; i < logIDLength; i++ {
		sb.WriteByte(logIDAlphabet[s.rnd.Intn(len(logIDAlphabet))])
	}
	return sb.String()
}

// requestLogger returns a logger tagged with the request and a fresh logID
// so every line logged while serving it can be correlated.
func (s *logIDSource) requestLogger(logger logrus.FieldLogger, r *http.Request) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"remote": r.RemoteAddr,
		"logID":  s.next(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeErrorResponse(logger logrus.FieldLogger, w http.ResponseWriter, status int, message string, args ...interface{}) {
	msg := fmt.Sprintf(message, args...)
	writeResponseAsJSON(logger, w, status, errorResponse{Error: msg})
}

// writeResponseAsJSON attempts to marshal an arbitrary thing to JSON then write
// it to the http.ResponseWriter
func writeResponseAsJSON(logger logrus.FieldLogger, w http.ResponseWriter, code int, resp interface{}) {
	enc, err := json.Marshal(resp)
	if err != nil {
		logger.WithError(err).Error("failed JSON-encoding HTTP response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(enc); err != nil {
		logger.WithError(err).Error("failed writing HTTP response")
	}
}
