// ABOUTME: News search endpoint of the backend content proxy
// ABOUTME: Bearer-authenticated article retrieval with category presets

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Article is a single news item as returned by the content provider
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	Author      string `json:"author"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// NewsResponse is the article list for a search
type NewsResponse struct {
	Articles []Article `json:"articles"`
}

// Categories the backend understands, in display order
var Categories = []string{
	"general", "business", "technology", "entertainment", "health", "science", "sports",
}

// categoryQueries maps a category to its default search term
var categoryQueries = map[string]string{
	"general":       "latest news",
	"business":      "business news",
	"technology":    "technology news",
	"entertainment": "entertainment news",
	"health":        "health news",
	"science":       "science news",
	"sports":        "sports news",
}

// CategoryQuery returns the search term for a category when the user
// typed no query of their own
func CategoryQuery(category string) string {
	if q, ok := categoryQueries[category]; ok {
		return q
	}
	return "latest news"
}

var schemeRE = regexp.MustCompile(`^https?://`)

// ArticleID derives a stable identifier for an article from its URL,
// scheme stripped and escaped for use as a route parameter
func ArticleID(articleURL string) string {
	if articleURL == "" {
		return ""
	}
	return url.PathEscape(schemeRE.ReplaceAllString(articleURL, ""))
}

// SearchNews queries the backend news proxy. Requires auth.
func (c *Client) SearchNews(ctx context.Context, query string, pageSize int) (*NewsResponse, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSize))

	req, err := c.newRequest(ctx, http.MethodGet, "/auth/news/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &Failure{Kind: KindUnauthorized, Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil || detail.Detail == "" {
			return nil, &Failure{
				Kind:    KindMessage,
				Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
				Status:  resp.StatusCode,
			}
		}
		return nil, &Failure{Kind: KindMessage, Message: detail.Detail, Status: resp.StatusCode}
	}

	var news NewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&news); err != nil {
		return nil, &Failure{Kind: KindNetwork, Message: "invalid response from backend"}
	}
	return &news, nil
}

// CategoryHeadlines holds the top articles for one category
type CategoryHeadlines struct {
	Category string
	Articles []Article
}

// Headlines fetches the top articles for several categories concurrently.
// Results come back in the order of Categories; a 401 on any fetch fails
// the whole batch so the caller can force logout once.
func (c *Client) Headlines(ctx context.Context, categories []string, perCategory int) ([]CategoryHeadlines, error) {
	if len(categories) == 0 {
		categories = Categories
	}

	results := make([]CategoryHeadlines, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, cat := range categories {
		g.Go(func() error {
			news, err := c.SearchNews(gctx, CategoryQuery(cat), perCategory)
			if err != nil {
				return err
			}
			results[i] = CategoryHeadlines{Category: cat, Articles: news.Articles}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return categoryRank(results[i].Category) < categoryRank(results[j].Category)
	})
	return results, nil
}

func categoryRank(cat string) int {
	for i, c := range Categories {
		if c == cat {
			return i
		}
	}
	return len(Categories)
}
