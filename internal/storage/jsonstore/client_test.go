package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
)

// testClient собирает клиент, направленный на тестовый HTTP-сервер.
func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	parsed, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(parsed.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return NewClient(Config{Host: host, Port: port})
}

func TestConfig_BaseURL(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 3000}
	if got := cfg.BaseURL(); got != "http://localhost:3000" {
		t.Errorf("expected http://localhost:3000, got %s", got)
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.Get(context.Background(), "products/missing", nil)
	if !domain.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestClient_Post_Conflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.Post(context.Background(), "products", map[string]any{"name": "Keyboard"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestClient_Get_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, err := c.Get(context.Background(), "products", nil)
	if !domain.IsUnavailable(err) {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := testClient(t, srv)
	srv.Close()

	_, err := c.Get(context.Background(), "products", nil)
	if !domain.IsUnavailable(err) {
		t.Errorf("expected unavailable on refused connection, got %v", err)
	}
}

func TestClient_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Даже ошибочный статус означает, что бэкенд жив.
		w.WriteHeader(http.StatusInternalServerError)
	}))
	c := testClient(t, srv)

	if !c.Probe(context.Background(), time.Second) {
		t.Error("expected probe to succeed while the server is up")
	}

	srv.Close()
	if c.Probe(context.Background(), time.Second) {
		t.Error("expected probe to fail after the server is gone")
	}
}

func TestClient_GetWithMeta_Envelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("_page"); got != "2" {
			t.Errorf("expected _page=2, got %q", got)
		}
		if got := r.URL.Query().Get("_per_page"); got != "10" {
			t.Errorf("expected _per_page=10, got %q", got)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"1"},{"id":"2"}],"items":23,"pages":3}`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	data, meta, err := c.GetWithMeta(context.Background(), "products", &storage.Query{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("get with meta: %v", err)
	}
	if !meta.HasTotal || meta.Total != 23 {
		t.Errorf("expected total 23, got %+v", meta)
	}

	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %d", len(docs))
	}
}

func TestClient_GetWithMeta_HeaderFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Total-Count", "42")
		_, _ = w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, meta, err := c.GetWithMeta(context.Background(), "products", &storage.Query{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("get with meta: %v", err)
	}
	if !meta.HasTotal || meta.Total != 42 {
		t.Errorf("expected total 42 from header, got %+v", meta)
	}
}

func TestClient_GetWithMeta_Unpaginated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"1"}]`))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	_, meta, err := c.GetWithMeta(context.Background(), "products", nil)
	if err != nil {
		t.Fatalf("get with meta: %v", err)
	}
	if meta.HasTotal {
		t.Errorf("expected no total, got %+v", meta)
	}
}

func TestEncodeQuery(t *testing.T) {
	testCases := []struct {
		name  string
		query *storage.Query
		want  url.Values
	}{
		{name: "nil query", query: nil, want: url.Values{}},
		{
			name:  "filters only",
			query: &storage.Query{Filters: map[string]string{"category": "peripherals", "price_gte": "50"}},
			want:  url.Values{"category": {"peripherals"}, "price_gte": {"50"}},
		},
		{
			name:  "pagination",
			query: &storage.Query{Page: 2, Limit: 10},
			want:  url.Values{"_page": {"2"}, "_per_page": {"10"}},
		},
		{
			name:  "descending sort",
			query: &storage.Query{Sort: &storage.Sort{Field: "createdAt", Desc: true}},
			want:  url.Values{"_sort": {"-createdAt"}},
		},
		{
			name:  "ascending sort",
			query: &storage.Query{Sort: &storage.Sort{Field: "price"}},
			want:  url.Values{"_sort": {"price"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := url.ParseQuery(encodeQuery(tc.query))
			if err != nil {
				t.Fatalf("parse encoded query: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for key, want := range tc.want {
				if got.Get(key) != want[0] {
					t.Errorf("param %s: expected %s, got %s", key, want[0], got.Get(key))
				}
			}
		})
	}
}
