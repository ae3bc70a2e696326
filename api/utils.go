package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ukane-philemon/mentorship/internal/db"
	customerror "github.com/ukane-philemon/mentorship/internal/errors"
)

const (
	statusSuccess = "Success"
	statusFailed  = "FAILED"

	maxBodyBytes = 1 << 20
)

type failedResponse struct {
	Action string `json:"action"`
	Error  string `json:"error"`
}

// handleError writes caller errors in-band with a 200 status. Anything else is
// a server error: it is logged and the client gets a generic error.
func (s *Server) handleError(res http.ResponseWriter, req *http.Request, err error) {
	var malformed *customerror.ErrorMalformedRequest
	var invalid validator.ValidationErrors
	switch {
	case errors.As(err, &invalid):
		writeJSON(res, http.StatusOK, &failedResponse{Action: statusFailed, Error: translateValidationErrors(invalid)})
	case errors.As(err, &malformed), db.IsUserError(err):
		writeJSON(res, http.StatusOK, &failedResponse{Action: statusFailed, Error: userMessage(err)})
	default:
		s.log.Error("SERVER ERROR", "method", req.Method, "path", req.URL.Path, "err", err)
		writeFailed(res, http.StatusInternalServerError, &customerror.ErrorUnknown{})
	}
}

// userMessage strips the invalid request prefix so clients see the bare
// reason, e.g. "Incorrect ROLE Specified".
func userMessage(err error) string {
	return strings.TrimPrefix(err.Error(), db.ErrorInvalidRequest.Error()+": ")
}

func writeFailed(res http.ResponseWriter, status int, err error) {
	writeJSON(res, status, &failedResponse{Action: statusFailed, Error: err.Error()})
}

func writeJSON(res http.ResponseWriter, status int, v interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(v)
}

// decodeBody decodes the JSON request body into v. Decoding errors that wrap
// db.ErrorInvalidRequest are returned as is.
func decodeBody(req *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes)).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrorInvalidRequest):
		return err
	case errors.Is(err, io.EOF):
		return &customerror.ErrorMalformedRequest{Reason: "empty body"}
	default:
		return &customerror.ErrorMalformedRequest{Reason: err.Error()}
	}
}
