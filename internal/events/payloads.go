package events

// OrderPlaced is the payload of TypeOrderPlaced.
type OrderPlaced struct {
	OrderID       string `json:"order_id"`
	BookID        string `json:"book_id"`
	CustomerEmail string `json:"customer_email"`
	SellerEmail   string `json:"seller_email"`
	Price         string `json:"price"`
	Remaining     int    `json:"remaining_quantity"`
}

// PaymentConfirmed is the payload of TypePaymentConfirmed.
type PaymentConfirmed struct {
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	BookID        string `json:"book_id"`
	TransactionID string `json:"transaction_id"`
	CustomerEmail string `json:"customer_email"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
}

// BookListed is the payload of TypeBookListed.
type BookListed struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	OwnerEmail string `json:"owner_email"`
	Price      string `json:"price"`
}

// RoleUpdated is the payload of TypeRoleUpdated.
type RoleUpdated struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	ActorEmail string `json:"actor_email,omitempty"`
}
