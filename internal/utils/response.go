package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// ict is Vietnam time. Every timestamp the API emits uses it.
var ict = time.FixedZone("ICT", 7*3600)

// Response defines the standard API response envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorInfo carries the machine-readable error code.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// NewPagination normalises page and limit (1 and 50 when unset) and derives
// the page count.
func NewPagination(page, limit, totalItems int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	return &Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
}

// Success writes data in the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta:    meta(c),
	})
}

// SuccessWithPagination is Success for one page of a list.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, page, limit, totalItems int) {
	m := meta(c)
	m.Pagination = NewPagination(page, limit, totalItems)
	c.JSON(code, Response{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
		Meta:    m,
	})
}

// Error writes a failure with the given error code, e.g. "EMPTY_CART".
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error:   &ErrorInfo{Code: errCode, Message: message},
		Meta:    meta(c),
	})
}

func meta(c *gin.Context) Meta {
	return Meta{RequestID: RequestID(c), Timestamp: NowISO()}
}

// RequestID returns the id set by the logging middleware. Requests that
// bypassed it get a fresh short id.
func RequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return NewRequestID()
}

// NewRequestID returns an 8 character random id.
func NewRequestID() string {
	return uuid.New().String()[:8]
}

// NowISO returns the current time in ISO 8601 format in Vietnam time (ICT).
func NowISO() string {
	return time.Now().In(ict).Format("2006-01-02T15:04:05+07:00")
}
