package extapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainsync "qualisync/internal/domain/sync"
)

func testClient(baseURL string) *client {
	return newClient(Config{
		BaseURL:         baseURL,
		Token:           "test-token",
		PageSize:        2,
		RetryAttempts:   3,
		BackoffInitial:  time.Millisecond,
		BackoffMax:      5 * time.Millisecond,
		RateLimitQuota:  100000,
		RateLimitWindow: time.Hour,
	})
}

func cursorFetch(c *client, path string) pageFunc {
	return func(ctx context.Context, cursor string) (page, error) {
		pageURL := c.endpoint(path)
		if cursor != "" {
			pageURL = cursor
		}
		var env struct {
			Values []json.RawMessage `json:"values"`
			Next   string            `json:"next"`
		}
		if err := c.getJSON(ctx, pageURL, &env); err != nil {
			return page{}, err
		}
		return page{Values: env.Values, Next: env.Next}, nil
	}
}

func TestEachPageWalksAllPagesInOrder(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprintf(w, `{"values":[1,2],"next":%q}`, server.URL+"/items?page=2")
		case "2":
			fmt.Fprint(w, `{"values":[3]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)
	var got []int
	err := c.eachPage(context.Background(), cursorFetch(c, "/items"), func(raw json.RawMessage) error {
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		got = append(got, n)
		return nil
	})
	if err != nil {
		t.Fatalf("eachPage() error = %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("eachPage() records = %v, want [1 2 3]", got)
	}
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "upstream broken", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"values":[1]}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	pg, err := c.fetchPage(context.Background(), cursorFetch(c, "/items"), "")
	if err != nil {
		t.Fatalf("fetchPage() error = %v", err)
	}
	if requests != 3 {
		t.Fatalf("fetchPage() made %d requests, want 3", requests)
	}
	if len(pg.Values) != 1 {
		t.Fatalf("fetchPage() values = %d, want 1", len(pg.Values))
	}
}

func TestFetchPageGivesUpAfterRetryBudget(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.fetchPage(context.Background(), cursorFetch(c, "/items"), "")

	var transient *domainsync.TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("fetchPage() error = %v, want TransientError", err)
	}
	if requests != 3 {
		t.Fatalf("fetchPage() made %d requests, want 3 (retry budget)", requests)
	}
}

func TestFetchPageAbortsOnClientError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "no such workspace", http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(server.URL)
	_, err := c.fetchPage(context.Background(), cursorFetch(c, "/items"), "")

	var api *domainsync.APIError
	if !errors.As(err, &api) {
		t.Fatalf("fetchPage() error = %v, want APIError", err)
	}
	if api.StatusCode != http.StatusNotFound {
		t.Fatalf("APIError.StatusCode = %d, want 404", api.StatusCode)
	}
	if requests != 1 {
		t.Fatalf("fetchPage() made %d requests, want 1 (no retry on 4xx)", requests)
	}
}

func TestFetchPageRateLimitDoesNotConsumeRetryBudget(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// More consecutive 429s than the transient retry budget allows.
		if requests <= 4 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"values":[1]}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	pg, err := c.fetchPage(context.Background(), cursorFetch(c, "/items"), "")
	if err != nil {
		t.Fatalf("fetchPage() error = %v", err)
	}
	if requests != 5 {
		t.Fatalf("fetchPage() made %d requests, want 5", requests)
	}
	if len(pg.Values) != 1 {
		t.Fatalf("fetchPage() values = %d, want 1", len(pg.Values))
	}
}

func TestGetJSONSendsBearerToken(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := testClient(server.URL)
	var out struct{}
	if err := c.getJSON(context.Background(), c.endpoint("/me"), &out); err != nil {
		t.Fatalf("getJSON() error = %v", err)
	}
	if auth != "Bearer test-token" {
		t.Fatalf("Authorization header = %q", auth)
	}
}
