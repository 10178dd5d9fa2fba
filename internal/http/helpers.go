package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
)

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeDuplicateName    = "duplicate_name"
	CodePositionConflict = "position_conflict"
	CodeNotFound         = "not_found"
	CodeInvalidInput     = "invalid_input"
	CodeForeignCategory  = "foreign_category"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns auth.DefaultUserID (0) when auth is disabled.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context, e.g. the conflicting position
}

// ConflictDetails identifies the owner and position of a position conflict.
type ConflictDetails struct {
	Owner    uint `json:"owner"`
	Position int  `json:"position"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeInvalidInput})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondStoreError maps category and book errors to HTTP responses.
// Anything it does not recognise is a 500.
func respondStoreError(c *gin.Context, err error, context string) {
	var conflict *categories.ConstraintViolationError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   conflict.Error(),
			Code:    CodePositionConflict,
			Details: ConflictDetails{Owner: conflict.Owner, Position: conflict.Position},
		})
	case errors.Is(err, categories.ErrDuplicateName):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeDuplicateName})
	case errors.Is(err, categories.ErrNotFound), errors.Is(err, books.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound})
	case errors.Is(err, books.ErrForeignCategory):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeForeignCategory})
	case errors.Is(err, categories.ErrInvalidName),
		errors.Is(err, categories.ErrInvalidPosition),
		errors.Is(err, books.ErrInvalidBook):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
