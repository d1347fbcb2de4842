package payload

import "net/http"

// ErrorKind is the external error class a caller sees.
type ErrorKind int

const (
	InternalServerError ErrorKind = iota
	ContentRequestError
)

// ContentError refines ContentRequestError.
type ContentError int

const (
	NoContentError ContentError = iota
	MissingContent
	InvalidContent
)

// ResponseError is the only error that crosses the RPC boundary. Internal detail never
// ends up in it; Detail only repeats what was wrong with the caller's own input.
type ResponseError struct {
	Kind    ErrorKind
	Content ContentError
	Detail  string
}

func NewInternalServerError() *ResponseError {
	return &ResponseError{Kind: InternalServerError}
}

func NewMissingContent() *ResponseError {
	return &ResponseError{Kind: ContentRequestError, Content: MissingContent}
}

// NewInvalidContent reports a request that could not be decoded or failed validation.
func NewInvalidContent(detail string) *ResponseError {
	return &ResponseError{Kind: ContentRequestError, Content: InvalidContent, Detail: detail}
}

// Name is the machine readable tag sent in the response envelope.
func (e *ResponseError) Name() string {
	if e.Kind != ContentRequestError {
		return "InternalServerError"
	}
	switch e.Content {
	case MissingContent:
		return "MissingContent"
	case InvalidContent:
		return "InvalidContent"
	default:
		return "ContentRequestError"
	}
}

// Status is the HTTP status the error is sent with.
func (e *ResponseError) Status() int {
	switch e.Name() {
	case "MissingContent":
		return http.StatusNotFound
	case "InvalidContent", "ContentRequestError":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code is the business code of the response envelope.
func (e *ResponseError) Code() int {
	return e.Status() * 100
}

func (e *ResponseError) Error() string {
	switch e.Name() {
	case "MissingContent":
		return "requested content does not exist"
	case "InvalidContent":
		if e.Detail != "" {
			return "invalid request: " + e.Detail
		}
		return "invalid request"
	case "ContentRequestError":
		return "bad content request"
	default:
		return "internal server error"
	}
}
