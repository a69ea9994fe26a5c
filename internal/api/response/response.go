package response

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ResponseError struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func SuccessJSON(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// ErrorJSON 依 service 的 Reason 決定 http status
func ErrorJSON(w http.ResponseWriter, err error) {
	reason := service.ReasonOf(err)
	status := StatusForReason(reason)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError && err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, ResponseError{
		Code:    status,
		Reason:  reason.String(),
		Message: msg,
	})
}

// BadRequestJSON is for input rejected before reaching a service.
func BadRequestJSON(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ResponseError{
		Code:    http.StatusBadRequest,
		Reason:  "BAD_REQUEST",
		Message: message,
	})
}

func StatusForReason(r service.Reason) int {
	switch r {
	case service.ReasonOK:
		return http.StatusOK
	case service.ReasonUnknownItem, service.ReasonOrderNotFound:
		return http.StatusNotFound
	case service.ReasonEmptyCart:
		return http.StatusConflict
	case service.ReasonInvalidDraft, service.ReasonInvalidPayment:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
