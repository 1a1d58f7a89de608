package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerWishlistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "addWishlist",
		Method:        http.MethodPost,
		Path:          "/wishlist",
		Summary:       "Add to wishlist",
		Description:   "Saves a book to the caller's wishlist",
		Tags:          []string{"Wishlist"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddWishlist)

	huma.Register(s.api, huma.Operation{
		OperationID: "listWishlist",
		Method:      http.MethodGet,
		Path:        "/wishlist",
		Summary:     "List wishlist",
		Description: "Returns saved books, newest first. Defaults to the caller's own list.",
		Tags:        []string{"Wishlist"},
		Security:    bearer,
	}, s.handleListWishlist)
}

// AddWishlistRequest is the body for saving a book.
type AddWishlistRequest struct {
	BookID string `json:"bookId" minLength:"1" doc:"Book to save"`
}

// AddWishlistInput wraps the add wishlist request for Huma.
type AddWishlistInput struct {
	Body AddWishlistRequest
}

// WishlistOutput wraps one wishlist entry for Huma.
type WishlistOutput struct {
	Body WishlistResponse
}

// ListWishlistInput contains parameters for listing a wishlist.
type ListWishlistInput struct {
	Email string `query:"email" doc:"Wishlist owner (defaults to the caller)"`
}

// WishlistListOutput wraps a list of wishlist entries for Huma.
type WishlistListOutput struct {
	Body []WishlistResponse
}

func (s *Server) handleAddWishlist(ctx context.Context, input *AddWishlistInput) (*WishlistOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Wishlist.Add(ctx, caller, input.Body.BookID)
	if err != nil {
		return nil, err
	}
	return &WishlistOutput{Body: toWishlistResponse(entry)}, nil
}

func (s *Server) handleListWishlist(ctx context.Context, input *ListWishlistInput) (*WishlistListOutput, error) {
	email := input.Email
	if email == "" {
		caller, err := callerFrom(ctx)
		if err != nil {
			return nil, err
		}
		email = caller.Email
	}

	entries, err := s.services.Wishlist.List(ctx, email)
	if err != nil {
		return nil, err
	}

	out := make([]WishlistResponse, len(entries))
	for i, e := range entries {
		out[i] = toWishlistResponse(e)
	}
	return &WishlistListOutput{Body: out}, nil
}
