package dto

// APIResponse is the envelope for single-resource responses
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// ListResponse is the envelope for unpaginated collections
type ListResponse struct {
	Success bool        `json:"success" example:"true"`
	Count   int         `json:"count" example:"2"`
	Data    interface{} `json:"data"`
}

// PageRef points at a neighbouring page of a paginated listing
type PageRef struct {
	Page  int `json:"page" example:"2"`
	Limit int `json:"limit" example:"25"`
}

// Pagination carries next/prev page descriptors; both are omitted at the edges
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// PaginatedResponse is the envelope produced by the advanced results middleware
type PaginatedResponse struct {
	Success    bool                     `json:"success" example:"true"`
	Count      int                      `json:"count" example:"25"`
	Pagination Pagination               `json:"pagination"`
	Data       []map[string]interface{} `json:"data"`
}

// EmptyObject renders as {} in delete responses
type EmptyObject struct{}

// NewAPIResponse wraps data in a successful envelope
func NewAPIResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// NewListResponse wraps a collection in a successful envelope with its size
func NewListResponse(data interface{}, count int) ListResponse {
	return ListResponse{Success: true, Count: count, Data: data}
}
