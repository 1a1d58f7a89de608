package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/books",
		Summary:     "List books",
		Description: "Returns the catalog, newest first unless sort says otherwise",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/books",
		Summary:       "Create book",
		Description:   "Lists a book owned by the caller. Librarians and admins only.",
		Tags:          []string{"Books"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooksByOwner",
		Method:      http.MethodGet,
		Path:        "/books/user/{email}",
		Summary:     "List books by owner",
		Description: "Returns every book listed by the given email",
		Tags:        []string{"Books"},
	}, s.handleListBooksByOwner)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/books/{id}",
		Summary:     "Update book",
		Description: "Partially updates a listing. Only the owner or an admin may edit.",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listInventory",
		Method:      http.MethodGet,
		Path:        "/my-inventory/{email}",
		Summary:     "List my inventory",
		Description: "Returns the caller's own listings",
		Tags:        []string{"Books"},
		Security:    bearer,
	}, s.handleListInventory)
}

// === DTOs ===

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Sort     string `query:"sort" enum:"price_asc,price_desc,newest" doc:"Sort order (default newest)"`
	Category string `query:"category" doc:"Category name or slug filter"`
}

// BookListOutput wraps a list of books for Huma.
type BookListOutput struct {
	Body []BookResponse
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// CreateBookRequest is the request body for listing a book.
type CreateBookRequest struct {
	Title       string  `json:"title" minLength:"1" maxLength:"300" doc:"Title"`
	Author      string  `json:"author" minLength:"1" maxLength:"200" doc:"Author"`
	Description string  `json:"description,omitempty" maxLength:"5000" doc:"Description"`
	Price       float64 `json:"price" minimum:"0" doc:"Price in major currency units"`
	Quantity    int     `json:"quantity" minimum:"0" doc:"Copies available"`
	Category    string  `json:"category" minLength:"1" maxLength:"100" doc:"Category"`
	Image       string  `json:"image,omitempty" doc:"Cover image URL"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// OwnerEmailInput selects records by owner email.
type OwnerEmailInput struct {
	Email string `path:"email" doc:"Owner email"`
}

// UpdateBookRequest is a partial listing edit. Omitted fields are unchanged.
type UpdateBookRequest struct {
	Title       *string  `json:"title,omitempty" minLength:"1" maxLength:"300"`
	Author      *string  `json:"author,omitempty" minLength:"1" maxLength:"200"`
	Description *string  `json:"description,omitempty" maxLength:"5000"`
	Price       *float64 `json:"price,omitempty" minimum:"0"`
	Quantity    *int     `json:"quantity,omitempty" minimum:"0"`
	Category    *string  `json:"category,omitempty" minLength:"1" maxLength:"100"`
	Image       *string  `json:"image,omitempty"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.ListBooks(ctx, input.Sort, input.Category)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	book, err := s.services.Catalog.CreateBook(ctx, caller, service.CreateBookRequest{
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       domain.PriceFromFloat(b.Price),
		Quantity:    b.Quantity,
		Category:    b.Category,
		ImageURL:    b.Image,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleListBooksByOwner(ctx context.Context, input *OwnerEmailInput) (*BookListOutput, error) {
	books, err := s.services.Catalog.ListBooksByOwner(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &BookListOutput{Body: toBookResponses(books)}, nil
}

func (s *Server) handleListInventory(ctx context.Context, input *OwnerEmailInput) (*BookListOutput, error) {
	return s.handleListBooksByOwner(ctx, input)
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	req := service.UpdateBookRequest{
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Quantity:    b.Quantity,
		Category:    b.Category,
		ImageURL:    b.Image,
	}
	if b.Price != nil {
		price := domain.PriceFromFloat(*b.Price)
		req.Price = &price
	}

	book, err := s.services.Catalog.UpdateBook(ctx, caller, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}
