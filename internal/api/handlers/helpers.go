package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"supply-route-service/internal/api/dto"
	"supply-route-service/internal/domain"
	"supply-route-service/internal/services"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object with no unknown fields. An empty
// body is accepted when allowEmpty is set and leaves v untouched.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// notificationStatus maps a notification code to the HTTP status returned
// with it.
func notificationStatus(code string) int {
	switch code {
	case services.CodeRouteCreated, services.CodeMessageSent:
		return http.StatusOK
	case services.CodeValidation:
		return http.StatusBadRequest
	case services.CodeSessionNotFound, services.CodeSupplyNotFound:
		return http.StatusNotFound
	case services.CodeSuperseded:
		return http.StatusConflict
	case services.CodeNoFeasibleSupply:
		return http.StatusUnprocessableEntity
	case services.CodeProviderError, services.CodeMessagingError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeNotification(w http.ResponseWriter, r *http.Request, n domain.Notification) {
	writeJSON(w, r, notificationStatus(n.Code), dto.NewNotificationResponse(n))
}

// writeDomainError answers errors returned by non-pipeline operations.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, r, http.StatusBadRequest, ve.Reason)
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, r, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrSupplyNotFound):
		writeError(w, r, http.StatusNotFound, "supply location not found")
	default:
		log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
