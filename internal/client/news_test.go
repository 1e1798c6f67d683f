// ABOUTME: Tests for the news search endpoint and article helpers
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchNews_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/news/" {
			t.Errorf("expected path /auth/news/, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("expected q=golang, got %s", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "10" {
			t.Errorf("expected pageSize=10, got %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		json.NewEncoder(w).Encode(NewsResponse{Articles: []Article{
			{Title: "Go 1.26 released", URL: "https://example.com/go"},
		}})
	}))
	defer server.Close()

	c := New(server.URL)
	c.SetTokenSource(func() string { return "tok" })

	news, err := c.SearchNews(context.Background(), "golang", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(news.Articles) != 1 || news.Articles[0].Title != "Go 1.26 released" {
		t.Errorf("unexpected articles: %+v", news.Articles)
	}
}

func TestSearchNews_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.SearchNews(context.Background(), "golang", 10)
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized failure, got %v", err)
	}
}

func TestSearchNews_DetailMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"detail": "news provider unavailable"})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.SearchNews(context.Background(), "golang", 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	f := AsFailure(err)
	if f.Kind != KindMessage || f.Message != "news provider unavailable" {
		t.Errorf("unexpected failure: %+v", f)
	}
}

func TestSearchNews_DefaultPageSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageSize"); got != "20" {
			t.Errorf("expected default pageSize=20, got %s", got)
		}
		json.NewEncoder(w).Encode(NewsResponse{})
	}))
	defer server.Close()

	c := New(server.URL)
	if _, err := c.SearchNews(context.Background(), "golang", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHeadlines_FetchesAllCategories(t *testing.T) {
	seen := make(chan string, 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL.Query().Get("q")
		json.NewEncoder(w).Encode(NewsResponse{Articles: []Article{{Title: "x"}}})
	}))
	defer server.Close()

	c := New(server.URL)
	results, err := c.Headlines(context.Background(), []string{"technology", "science"}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 category results, got %d", len(results))
	}
	// Results come back in canonical category order
	if results[0].Category != "technology" || results[1].Category != "science" {
		t.Errorf("unexpected order: %s, %s", results[0].Category, results[1].Category)
	}
	close(seen)
	queries := map[string]bool{}
	for q := range seen {
		queries[q] = true
	}
	if !queries["technology news"] || !queries["science news"] {
		t.Errorf("unexpected queries: %v", queries)
	}
}

func TestHeadlines_UnauthorizedFailsBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Headlines(context.Background(), nil, 5)
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized failure, got %v", err)
	}
}

func TestArticleID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"https stripped", "https://example.com/a/b", "example.com%2Fa%2Fb"},
		{"http stripped", "http://example.com/x", "example.com%2Fx"},
		{"no scheme", "example.com/x", "example.com%2Fx"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArticleID(tt.url); got != tt.want {
				t.Errorf("ArticleID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestCategoryQuery(t *testing.T) {
	if got := CategoryQuery("technology"); got != "technology news" {
		t.Errorf("expected technology news, got %s", got)
	}
	if got := CategoryQuery("unknown"); got != "latest news" {
		t.Errorf("expected fallback latest news, got %s", got)
	}
	if got := CategoryQuery(""); got != "latest news" {
		t.Errorf("expected fallback for empty category, got %s", got)
	}
}
