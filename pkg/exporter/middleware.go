package exporter

import (
	"crypto/subtle"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type requestLogger struct {
	logrus.FieldLogger
}

func (l *requestLogger) Print(v ...interface{}) {
	l.FieldLogger.Info(v...)
}

// instrument wraps a handler with request count and latency metrics labeled
// by handler name.
func (m *httpMetrics) instrument(name string, next http.HandlerFunc) http.Handler {
	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), next),
	)
}

// Credentials is the key pair a caller must present to reach authenticated
// endpoints.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK
}

func basicAuth(logger logrus.FieldLogger, realm string, creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || !creds.match(username, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
				writeErrorResponse(logger, w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
