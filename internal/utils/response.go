package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultPageLimit is the page size used when a list request gives none.
const DefaultPageLimit = 50

// Response is the envelope every API endpoint answers with.
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

// NewPagination normalises page and limit and counts the pages.
func NewPagination(page, limit, totalItems int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + limit - 1) / limit,
	}
}

// Bounds returns the slice window [start, end) of this page.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.Limit
	if start > p.TotalItems {
		start = p.TotalItems
	}
	end = start + p.Limit
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}

// Success writes a success response.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{Success: true, Code: code, Message: message, Data: data, Meta: newMeta(c)})
}

// SuccessWithPagination writes a success response for one page of a list.
func SuccessWithPagination(c *gin.Context, code int, message string, data interface{}, p Pagination) {
	meta := newMeta(c)
	meta.Pagination = &p
	c.JSON(code, Response{Success: true, Code: code, Message: message, Data: data, Meta: meta})
}

// Error writes an error response with an API error code.
func Error(c *gin.Context, code int, errCode, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Error:   &ErrorInfo{Code: errCode, Message: message},
		Meta:    newMeta(c),
	})
}

func newMeta(c *gin.Context) Meta {
	id := c.GetString("request_id")
	if id == "" {
		id = uuid.New().String()[:8]
	}
	return Meta{RequestID: id, Timestamp: time.Now().Format(time.RFC3339)}
}
