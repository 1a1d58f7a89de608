package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookcourier/bookcourier-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/search",
		Summary:     "Search books by title",
		Description: "Case-insensitive title substring match. An empty query returns every book.",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "discoverBooks",
		Method:      http.MethodGet,
		Path:        "/books/discover",
		Summary:     "Discover books",
		Description: "Fuzzy full-text search over title, author, description and category",
		Tags:        []string{"Search"},
	}, s.handleDiscoverBooks)
}

// SearchBooksInput contains parameters for title search.
type SearchBooksInput struct {
	Search string `query:"search" doc:"Title substring"`
	Sort   string `query:"sort" enum:"price_asc,price_desc,newest" doc:"Sort order (default price_asc)"`
}

// DiscoverBooksInput contains parameters for full-text discovery.
type DiscoverBooksInput struct {
	Q        string  `query:"q" doc:"Free text query"`
	Category string  `query:"category" doc:"Category name or slug"`
	InStock  bool    `query:"in_stock" doc:"Only books with copies left"`
	MinPrice float64 `query:"min_price" minimum:"0" doc:"Lowest price"`
	MaxPrice float64 `query:"max_price" minimum:"0" doc:"Highest price; 0 means unbounded"`
	Sort     string  `query:"sort" enum:"relevance,price_asc,price_desc,newest" doc:"Sort order (default relevance)"`
	Limit    int     `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset   int     `query:"offset" minimum:"0" doc:"Results to skip"`
}

// DiscoverResponse is one page of discovery results.
type DiscoverResponse struct {
	Query  string         `json:"query" doc:"Query as searched"`
	Total  uint64         `json:"total" doc:"Total matching books"`
	TookMs int64          `json:"took_ms" doc:"Search time in milliseconds"`
	Books  []BookResponse `json:"books" doc:"Matching books in rank order"`
}

// DiscoverOutput wraps the discover response for Huma.
type DiscoverOutput struct {
	Body DiscoverResponse
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.SearchBooks(ctx, input.Search, input.Sort)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleDiscoverBooks(ctx context.Context, input *DiscoverBooksInput) (*DiscoverOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Q
	params.CategorySlug = input.Category
	params.InStockOnly = input.InStock
	params.MinPrice = input.MinPrice
	params.MaxPrice = input.MaxPrice
	params.Limit = input.Limit
	params.Offset = input.Offset
	if input.Sort != "" {
		params.SortBy = input.Sort
	}

	result, err := s.services.Catalog.Discover(ctx, params)
	if err != nil {
		return nil, err
	}
	return &DiscoverOutput{Body: DiscoverResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Books:  toBookResponses(result.Books),
	}}, nil
}
