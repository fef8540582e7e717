package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Page is the pagination envelope for list endpoints.
type Page struct {
	Count      int64       `json:"count"`
	TotalPages int64       `json:"total_pages"`
	Results    interface{} `json:"results"`
}

// Paginated builds the {count, total_pages, results} envelope.
func Paginated(count int64, limit int, results interface{}) Page {
	pages := int64(0)
	if limit > 0 {
		pages = (count + int64(limit) - 1) / int64(limit)
	}
	return Page{Count: count, TotalPages: pages, Results: results}
}
