package bakalari

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestConcurrentFetchSharesOneLogin(t *testing.T) {
	var logins int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			atomic.AddInt64(&logins, 1)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok",
				"expires_in":   3600,
			})
		case "/api/3/classes":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"Classes": []ClassRecord{},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:  srv.URL,
		Username: "svc",
		Password: "secret",
		Timeout:  5 * time.Second,
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.FetchClasses(context.Background()); err != nil {
				t.Errorf("fetch classes: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&logins); got != 1 {
		t.Fatalf("expected a single login, got %d", got)
	}
}

func TestAuthenticateRequiresBaseURL(t *testing.T) {
	client := NewClient(Config{})
	if err := client.Authenticate(context.Background()); err == nil {
		t.Fatal("expected an error for empty base URL")
	}
}
