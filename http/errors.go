package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/drivedav"
)

// errorReply is the fixed public rendering of one error class. Messages
// never carry the underlying error, which may name scoped storage paths.
type errorReply struct {
	status  int
	code    string
	message string
}

var internalError = errorReply{http.StatusInternalServerError, "internal_error", "Internal server error"}

var errorReplies = []struct {
	target error
	reply  errorReply
}{
	{drivedav.ErrNotFound, errorReply{http.StatusNotFound, "not_found", "Resource not found"}},
	{drivedav.ErrConflict, errorReply{http.StatusConflict, "conflict", "Request conflicts with the current state of the resource"}},
	{drivedav.ErrPreconditionFailed, errorReply{http.StatusPreconditionFailed, "precondition_failed", "Destination exists and Overwrite is F"}},
	{drivedav.ErrBadRequest, errorReply{http.StatusBadRequest, "bad_request", "Bad request"}},
	{drivedav.ErrInvalidInput, errorReply{http.StatusBadRequest, "bad_request", "Bad request"}},
	{drivedav.ErrForbidden, errorReply{http.StatusForbidden, "forbidden", "Operation not permitted"}},
	{drivedav.ErrUnsupportedMediaType, errorReply{http.StatusUnsupportedMediaType, "unsupported_media_type", "Request body not supported"}},
	{drivedav.ErrUnauthorized, errorReply{http.StatusUnauthorized, "unauthorized", "Authentication required"}},
}

// replyFor maps a gateway error onto its public reply.
func replyFor(err error) errorReply {
	for _, e := range errorReplies {
		if errors.Is(err, e.target) {
			return e.reply
		}
	}
	return internalError
}

// HandleError writes the fixed reply for err's class. The error itself is
// only logged: at error level for 500s, at debug level otherwise.
func HandleError(w http.ResponseWriter, err error) {
	reply := replyFor(err)
	if reply.status == http.StatusInternalServerError {
		slog.Error("request error", "error", err)
	} else {
		slog.Debug("request rejected", "status", reply.status, "error", err)
	}
	WriteError(w, reply.status, reply.code, reply.message)
}

func writeNotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, "not_found", "Resource not found")
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError replies with status code and a JSON error body.
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: errCode, Message: message}); err != nil {
		slog.Error("encode error response", "error", err)
	}
}
