package json_utilities

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/rest"
)

var errEncoding = errors.New("error while encoding response")

type httpError struct {
	Error     string
	Timestamp time.Time
}

func newHttpError(err error) *httpError {
	return &httpError{err.Error(), time.Now()}
}

type httpMessage struct {
	Message   string
	Timestamp time.Time
}

func newHttpMessage(message string) *httpMessage {
	return &httpMessage{message, time.Now()}
}

func Created(writer http.ResponseWriter, payload interface{}) {
	encodeJSON(writer, http.StatusCreated, payload)
}

func Ok(writer http.ResponseWriter, payload interface{}) {
	encodeJSON(writer, http.StatusOK, payload)
}

func NotFound(writer http.ResponseWriter, message string) {
	encodeJSON(writer, http.StatusNotFound, newHttpMessage(message))
}

func Unauthorised(writer http.ResponseWriter) {
	writer.Header().Set("WWW-Authenticate", "Bearer")
	writer.WriteHeader(http.StatusUnauthorized)
}

func UnauthorisedWithMessage(writer http.ResponseWriter, message string) {
	writer.Header().Set("WWW-Authenticate", "Bearer")
	encodeJSON(writer, http.StatusUnauthorized, newHttpMessage(message))
}

func Forbidden(writer http.ResponseWriter) {
	encodeJSON(writer, http.StatusForbidden, newHttpMessage("Forbidden"))
}

func BadRequestWithMessage(writer http.ResponseWriter, message string) {
	encodeJSON(writer, http.StatusBadRequest, newHttpMessage(message))
}

// InternalServerError logs the error and hides its details from the caller.
func InternalServerError(writer http.ResponseWriter, request *http.Request, err error) {
	rest.Logger(request).WithError(err).Error("internal server error")
	encodeJSON(writer, http.StatusInternalServerError, newHttpMessage("Internal Server Error"))
}

func ValidationError(writer http.ResponseWriter, err error) {
	encodeJSON(writer, http.StatusBadRequest, newHttpError(err))
}

// Error answers with the status matching the kind of err, see package failure.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	message, known := failure.Message(err)
	switch {
	case !known:
		InternalServerError(writer, request, err)
	case errors.Is(err, failure.ErrBadRequest):
		BadRequestWithMessage(writer, message)
	case errors.Is(err, failure.ErrUnauthorized):
		UnauthorisedWithMessage(writer, message)
	case errors.Is(err, failure.ErrNotFound):
		NotFound(writer, message)
	default:
		InternalServerError(writer, request, err)
	}
}

func encodeJSON(writer http.ResponseWriter, status int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		// headers are already out, only the body can signal the issue
		_ = json.NewEncoder(writer).Encode(newHttpError(errEncoding))
	}
}

// DecodeValidate decodes the request's JSON body, rejecting unknown fields, and validates the result.
func DecodeValidate[T Validator](request *http.Request) (data T, err error) {
	var decoder = json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&data); err != nil {
		return data, err
	}
	return data, data.Validate()
}

type Validator interface {
	Validate() error
}
