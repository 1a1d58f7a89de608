package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders for discovery results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// SearchParams configures a discovery query.
type SearchParams struct {
	Query string

	// Filters
	CategorySlug string
	InStockOnly  bool
	MinPrice     float64
	MaxPrice     float64 // 0 means no upper bound

	// Pagination
	Limit  int
	Offset int

	SortBy string
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:  20,
		SortBy: SortRelevance,
	}
}

// SearchResult is one page of discovery hits.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is a single matching listing.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a discovery query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
	}
	req.Fields = []string{"title", "author"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// Title matches score highest, then author, then category and description;
// a fuzzy title clause tolerates one typo and a prefix clause supports
// type-ahead.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(q)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)

		categoryMatch := bleve.NewMatchQuery(q)
		categoryMatch.SetField("category")
		categoryMatch.SetBoost(1.0)

		descMatch := bleve.NewMatchQuery(q)
		descMatch.SetField("description")
		descMatch.SetBoost(0.5)

		textQueries := []query.Query{titleMatch, authorMatch, categoryMatch, descMatch}

		// Fuzzy and prefix queries apply to single terms only.
		if !strings.ContainsAny(q, " \t") {
			fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
			fuzzy.SetFuzziness(1)
			fuzzy.SetField("title")
			fuzzy.SetBoost(0.8)
			textQueries = append(textQueries, fuzzy)

			if len(q) >= 2 {
				prefix := bleve.NewPrefixQuery(strings.ToLower(q))
				prefix.SetField("title")
				prefix.SetBoost(0.5)
				textQueries = append(textQueries, prefix)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.CategorySlug != "" {
		cq := bleve.NewTermQuery(params.CategorySlug)
		cq.SetField("category_slug")
		queries = append(queries, cq)
	}

	if params.InStockOnly {
		one := 1.0
		inclusive := true
		sq := bleve.NewNumericRangeInclusiveQuery(&one, nil, &inclusive, nil)
		sq.SetField("quantity")
		queries = append(queries, sq)
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		var minP, maxP *float64
		if params.MinPrice > 0 {
			minP = &params.MinPrice
		}
		if params.MaxPrice > 0 {
			maxP = &params.MaxPrice
		}
		inclusive := true
		pq := bleve.NewNumericRangeInclusiveQuery(minP, maxP, &inclusive, &inclusive)
		pq.SetField("price")
		queries = append(queries, pq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case SortPriceAsc:
		req.SortBy([]string{"price", "-_score"})
	case SortPriceDesc:
		req.SortBy([]string{"-price", "-_score"})
	case SortNewest:
		req.SortBy([]string{"-created_at"})
	default:
		req.SortBy([]string{"-_score"})
	}
}
