package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/category"
	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/id"
	"github.com/bookcourier/bookcourier-server/internal/search"
	"github.com/bookcourier/bookcourier-server/internal/store"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

// BookSearcher runs full-text discovery queries.
type BookSearcher interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
}

// CatalogService handles listing, browsing, and searching books.
type CatalogService struct {
	store     store.Store
	searcher  BookSearcher
	publisher events.Publisher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service. searcher may be nil, in
// which case Discover reports the index as unavailable.
func NewCatalogService(st store.Store, searcher BookSearcher, publisher events.Publisher, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     st,
		searcher:  searcher,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookRequest is a new listing.
type CreateBookRequest struct {
	Title       string          `json:"title" validate:"required,max=300"`
	Author      string          `json:"author" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Category    string          `json:"category" validate:"required,max=100"`
	ImageURL    string          `json:"image" validate:"omitempty,url"`
}

// CreateBook lists a book owned by the caller.
func (s *CatalogService) CreateBook(ctx context.Context, owner Caller, req CreateBookRequest) (*domain.Book, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book id: %w", err)
	}

	book := &domain.Book{
		Record:       domain.Record{ID: bookID},
		Title:        req.Title,
		Author:       req.Author,
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price.Truncate(2),
		Quantity:     req.Quantity,
		Category:     category.Display(req.Category),
		CategorySlug: category.Slugify(req.Category),
		ImageURL:     req.ImageURL,
		Owner:        domain.Party{Name: owner.Name, Email: owner.Email},
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	logFor(ctx, s.logger).Info("Book listed",
		"book_id", book.ID,
		"owner_email", book.Owner.Email,
		"price", book.Price.StringFixed(2),
	)

	publish(ctx, s.publisher, s.logger, events.New(events.TypeBookListed, events.BookListed{
		BookID:     book.ID,
		Title:      book.Title,
		OwnerEmail: book.Owner.Email,
		Price:      book.Price.StringFixed(2),
	}))

	return book, nil
}

// GetBook returns a single listing.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return getBook(ctx, s.store, bookID)
}

// ListBooks returns the catalog, newest first unless sort says otherwise.
// categoryFilter may be a display name or a slug.
func (s *CatalogService) ListBooks(ctx context.Context, sort, categoryFilter string) ([]*domain.Book, error) {
	order, err := parseSort(sort, domain.SortNewest)
	if err != nil {
		return nil, err
	}

	books, err := s.store.ListBooks(ctx, domain.BookFilter{
		CategorySlug: category.Slugify(categoryFilter),
		Sort:         order,
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// ListBooksByOwner returns every listing owned by email.
func (s *CatalogService) ListBooksByOwner(ctx context.Context, email string) ([]*domain.Book, error) {
	if err := s.validator.Var("email", email, "required,email"); err != nil {
		return nil, err
	}

	books, err := s.store.ListBooks(ctx, domain.BookFilter{OwnerEmail: email, Sort: domain.SortNewest})
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	return books, nil
}

// UpdateBookRequest is a partial listing edit. Nil fields are unchanged.
type UpdateBookRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=300"`
	Author      *string          `json:"author" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,min=1,max=100"`
	ImageURL    *string          `json:"image" validate:"omitempty,url"`
}

func (r UpdateBookRequest) toUpdate() domain.BookUpdate {
	return domain.BookUpdate{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
	}
}

// UpdateBook applies a partial edit. Only the owner or an admin may edit.
func (s *CatalogService) UpdateBook(ctx context.Context, caller Caller, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	update := req.toUpdate()
	if update.Empty() {
		return nil, domainerrors.InvalidInput("no fields to update")
	}

	book, err := getBook(ctx, s.store, bookID)
	if err != nil {
		return nil, err
	}

	if !book.OwnedBy(caller.Email) {
		admin, err := isAdmin(ctx, s.store, caller.Email)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, domainerrors.Forbidden("only the owner or an admin can edit this book")
		}
	}

	// Owner fields are not editable, so the check above stays valid inside
	// the transaction.
	book, err = s.store.UpdateBook(ctx, bookID, func(b *domain.Book) error {
		applyBookUpdate(b, update)
		b.Touch()
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found").WithCause(err)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	logFor(ctx, s.logger).Info("Book updated", "book_id", book.ID, "editor_email", caller.Email)
	return book, nil
}

func applyBookUpdate(b *domain.Book, u domain.BookUpdate) {
	if u.Title != nil {
		b.Title = strings.TrimSpace(*u.Title)
	}
	if u.Author != nil {
		b.Author = strings.TrimSpace(*u.Author)
	}
	if u.Description != nil {
		b.Description = strings.TrimSpace(*u.Description)
	}
	if u.Price != nil {
		b.Price = u.Price.Truncate(2)
	}
	if u.Quantity != nil {
		b.Quantity = *u.Quantity
	}
	if u.Category != nil {
		b.Category = category.Display(*u.Category)
		b.CategorySlug = category.Slugify(*u.Category)
	}
	if u.ImageURL != nil {
		b.ImageURL = *u.ImageURL
	}
}

// SearchBooks matches titles by case-insensitive substring. An empty query
// returns the whole catalog. Results are cheapest first by default.
func (s *CatalogService) SearchBooks(ctx context.Context, q, sort string) ([]*domain.Book, error) {
	order, err := parseSort(sort, domain.SortPriceAsc)
	if err != nil {
		return nil, err
	}

	books, err := s.store.ListBooks(ctx, domain.BookFilter{
		TitleContains: strings.TrimSpace(q),
		Sort:          order,
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

// DiscoverResult is one page of full-text hits hydrated from the store.
type DiscoverResult struct {
	Query  string         `json:"query"`
	Total  uint64         `json:"total"`
	TookMs int64          `json:"took_ms"`
	Books  []*domain.Book `json:"books"`
}

// Discover runs a fuzzy full-text query over title, author, and category.
func (s *CatalogService) Discover(ctx context.Context, params search.SearchParams) (*DiscoverResult, error) {
	if s.searcher == nil {
		return nil, domainerrors.Internal("discovery index unavailable")
	}
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	params.CategorySlug = category.Slugify(params.CategorySlug)

	result, err := s.searcher.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search failed")
	}

	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.ID
	}

	// Hits can outlive their rows briefly; GetBooksByIDs skips those.
	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate search hits: %w", err)
	}

	return &DiscoverResult{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Books:  books,
	}, nil
}

func parseSort(raw string, def domain.BookSort) (domain.BookSort, error) {
	if raw == "" {
		return def, nil
	}
	sort := domain.BookSort(strings.ToLower(raw))
	if !sort.Valid() {
		return "", domainerrors.InvalidInputf("invalid sort %q: must be price_asc, price_desc, or newest", raw)
	}
	return sort, nil
}
