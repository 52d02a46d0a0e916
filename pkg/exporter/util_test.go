package exporter

import (
	"math/rand"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogIDSource(t *testing.T) {
	src := &logIDSource{rnd: rand.New(rand.NewSource(1))}

	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := src.next()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 400, "log IDs should not repeat")
	for id := range seen {
		assert.Len(t, id, logIDLength)
		for _, c := range id {
			assert.Contains(t, logIDAlphabet, string(c))
		}
	}
}

func TestRequestLoggerFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	src := &logIDSource{rnd: rand.New(rand.NewSource(1))}

	req := httptest.NewRequest("GET", "/metrics?debug=1", nil)
	src.requestLogger(logger, req).Info("served")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.Fields{
		"method": "GET",
		"path":   "/metrics",
		"remote": req.RemoteAddr,
		"logID":  entry.Data["logID"],
	}, entry.Data)
	assert.Len(t, entry.Data["logID"], logIDLength)
}
