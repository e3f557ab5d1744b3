// Package llm provides the wire types exchanged between chat clients, the
// relay and the upstream completion API.
package llm

// ErrorResponse is the body of every error the relay produces.
type ErrorResponse struct {
	Error string `json:"error"`
}
