package response

// Response represents a standard API response format
type Response struct {
	Status     string            `json:"status"`      // "success" or "error"
	StatusCode int               `json:"status_code"` // HTTP status code
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"` // field-level validation messages
}

// Paged wraps a page of results with its pagination metadata
type Paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// SuccessWithMessage is Success plus a human-readable outcome message
func SuccessWithMessage(statusCode int, message string, data interface{}) Response {
	resp := Success(statusCode, data)
	resp.Message = message
	return resp
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// ValidationError returns an error response carrying per-field messages
func ValidationError(statusCode int, err string, fields map[string]string) Response {
	resp := Error(statusCode, err)
	resp.Errors = fields
	return resp
}
