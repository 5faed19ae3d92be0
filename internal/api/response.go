package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// Options carries the pagination links of a list response
type Options struct {
	Previous string `json:"previous,omitempty"` // Link to the previous page
	Next     string `json:"next,omitempty"`     // Link to the next page
}

// Response is what a handler hands to EndpointResponse
type Response struct {
	Code    int      // HTTP status, 200 when zero
	Message string   // Human readable outcome
	Body    any      // Payload
	Options *Options // Pagination links, list endpoints only
}

// envelope is the JSON shape every successful endpoint writes
type envelope struct {
	Message string   `json:"message"`           // Human readable outcome
	Body    any      `json:"body"`              // Payload
	Options *Options `json:"options,omitempty"` // Pagination links
}

// EndpointResponse writes r as the uniform response envelope
func EndpointResponse(c *gin.Context, r Response) {
	code := r.Code
	if code == 0 {
		code = http.StatusOK // Default status
	}
	c.JSON(code, envelope{Message: r.Message, Body: r.Body, Options: r.Options})
}
