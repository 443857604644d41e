package errs

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// JSON error responses for the /v1 API. Bodies are {"error": message}.

func ErrorResponse(w http.ResponseWriter, status int, message interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	js, err := json.Marshal(map[string]interface{}{"error": message})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(js)
}

func ServerErrorResponse(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func NotFoundResponse(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(w, http.StatusNotFound, "the requested resource could not be found")
}

func MethodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, http.StatusMethodNotAllowed, fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}

func BadRequestResponse(w http.ResponseWriter, err error) {
	ErrorResponse(w, http.StatusBadRequest, err.Error())
}

// FailedValidationResponse reports field errors as an object.
func FailedValidationResponse(w http.ResponseWriter, fields map[string]string) {
	ErrorResponse(w, http.StatusUnprocessableEntity, fields)
}

func RateLimitExceededResponse(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func InvalidCredentialsResponse(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusUnauthorized, "invalid authentication credentials")
}

func InvalidAuthenticationTokenResponse(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	ErrorResponse(w, http.StatusUnauthorized, "invalid or missing authentication token")
}

func AuthenticationRequiredResponse(w http.ResponseWriter) {
	ErrorResponse(w, http.StatusUnauthorized, "you must be authenticated to access this resource")
}
