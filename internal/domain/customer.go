// Package domain holds the data model and error types shared by every
// layer of the CRM client.
package domain

// CustomerDetails are the writable fields of a customer record.
type CustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	Company string `json:"company"`
	Status  string `json:"status"`
}

// Customer is a customer record as returned by the backend.
// Status is an open string enum (Active, Pending, Inactive, ...) — the
// client never restricts the set.
type Customer struct {
	ID int64 `json:"id"`
	CustomerDetails
}

// Contact belongs to exactly one customer.
type Contact struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// Note belongs to exactly one customer, displayed newest first.
type Note struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// CustomerView is the aggregate shown on the detail screen: the customer
// record plus its contacts and notes. The record loads first; contacts and
// notes arrive independently and are merged in.
type CustomerView struct {
	Customer
	Contacts []Contact `json:"contacts"`
	Notes    []Note    `json:"notes"`
}

// CustomerPage is the paged list response from GET /customers.
type CustomerPage struct {
	Data  []Customer `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

// ListQuery carries every parameter of a customer list request.
// Page is 1-based here; the HTTP gateway converts to the backend's 0-based
// paging.
type ListQuery struct {
	Page        int
	Size        int
	Search      string
	SearchField string
	SortBy      string
	SortDir     string
}

// Search field selector values accepted by the backend.
const (
	SearchFieldAll     = "all"
	SearchFieldName    = "name"
	SearchFieldEmail   = "email"
	SearchFieldCompany = "company"
)
