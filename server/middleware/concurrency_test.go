package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestConcurrencyLimiter_SerializesRequests(t *testing.T) {
	e := echo.New()
	cl := NewConcurrencyLimiter(1)

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	release := make(chan struct{})

	e.POST("/write", func(echo.Context) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		<-release

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}, cl.Middleware())

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/write", nil)
			e.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
}

func TestConcurrencyLimiter_Defaults(t *testing.T) {
	cl := NewConcurrencyLimiter(0)
	assert.NotNil(t, cl.sem)
}
