// Package types holds the wire types of the HTTP API.
package types

type (
	// Error is the envelope for every non-2xx response.
	Error struct {
		Error string `json:"error"`
	}

	// Health is the body of GET /.
	Health struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	// ProcessResponse carries the generated answer for POST /process.
	ProcessResponse struct {
		Response string `json:"response"`
	}
)

func StringError(msg string) Error {
	return Error{Error: msg}
}
