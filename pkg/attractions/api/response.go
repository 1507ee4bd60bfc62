package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/tendant/simple-attractions/pkg/attractions"
)

// errInvalidBody marks request bodies that could not be parsed
var errInvalidBody = errors.New("invalid request body")

// ErrorBody is the stable error envelope returned with 5xx responses
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody under "error"
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse is a response carrying only a message
type MessageResponse struct {
	Message string `json:"message"`
}

// RequestLink describes how to follow up on a response
type RequestLink struct {
	Type string      `json:"type"`
	URL  string      `json:"url"`
	Body interface{} `json:"body,omitempty"`
}

// Links synthesizes resource URLs from the public base URL
type Links struct {
	baseURL string
}

// NewLinks creates link helpers rooted at baseURL, e.g. http://localhost:3002
func NewLinks(baseURL string) Links {
	return Links{baseURL: strings.TrimRight(baseURL, "/")}
}

// Collection is the URL of the attractions collection
func (l Links) Collection() string {
	return l.baseURL + "/attractions/"
}

// Attraction is the URL of a single attraction
func (l Links) Attraction(id string) string {
	return l.Collection() + id
}

// classify maps an error to a stable code and message. Raw details stay in the logs.
func classify(err error) ErrorBody {
	switch {
	case errors.Is(err, attractions.ErrInvalidID):
		return ErrorBody{Code: "invalid_id", Message: "Invalid attraction id"}
	case errors.Is(err, attractions.ErrInvalidUpdate):
		return ErrorBody{Code: "invalid_update", Message: "Invalid update operation"}
	case errors.Is(err, errInvalidBody):
		return ErrorBody{Code: "invalid_body", Message: "Invalid request body"}
	case errors.Is(err, attractions.ErrFileTooLarge):
		return ErrorBody{Code: "file_too_large", Message: "File too large"}
	case errors.Is(err, attractions.ErrUnexpectedFile):
		return ErrorBody{Code: "unexpected_file", Message: "Unexpected file field"}
	case errors.Is(err, attractions.ErrUploadFailed):
		return ErrorBody{Code: "upload_failed", Message: "Upload failed"}
	default:
		return ErrorBody{Code: "internal_error", Message: "Internal server error"}
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, ErrorResponse{Error: classify(err)})
}

func renderMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, MessageResponse{Message: message})
}
