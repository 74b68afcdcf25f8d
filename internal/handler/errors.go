package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/i18n"
)

// errBadBody marks a request body that could not be decoded. It is mapped
// to 400 before the service layer is reached.
var errBadBody = errors.New("invalid request body")

// ErrorResponse is the JSON body of every non-2xx response.
// Error is localized from the request's Accept-Language header.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// writeError renders err as an ErrorResponse. notFound is the message used
// for domain.ErrNotFound; an empty value falls back to a generic one.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	p := s.loc.Printer(r.Header.Get("Accept-Language"))

	var (
		maxErr *http.MaxBytesError
		verr   *domain.ValidationError
	)
	switch {
	case errors.As(err, &maxErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: p.Sprintf(i18n.MsgBodyTooLarge), Code: "body_too_large",
		})
	case errors.Is(err, errBadBody):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgInvalidBody), Code: "invalid_body",
		})
	case errors.As(err, &verr):
		details := make([]domain.FieldError, len(verr.Fields))
		for i, fe := range verr.Fields {
			fe.Message = i18n.FieldMessage(p, fe)
			details[i] = fe
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgInvalidData), Code: "validation_error", Details: details,
		})
	case errors.Is(err, domain.ErrCarMissing):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgCarMissing), Code: "precondition_failed",
		})
	case errors.Is(err, domain.ErrCarUnavailable):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgCarUnavailable), Code: "precondition_failed",
		})
	case errors.Is(err, domain.ErrPrecondition):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgInvalidData), Code: "precondition_failed",
		})
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = i18n.MsgNotFound
		}
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: p.Sprintf(notFound), Code: "not_found",
		})
	case errors.Is(err, domain.ErrUsernameTaken):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgUsernameTaken), Code: "conflict",
		})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: p.Sprintf(i18n.MsgConflict), Code: "conflict",
		})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: p.Sprintf(i18n.MsgLoginRequired), Code: "unauthenticated",
		})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error: p.Sprintf(i18n.MsgAdminRequired), Code: "forbidden",
		})
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: p.Sprintf(i18n.MsgInternal), Code: "internal_error",
		})
	}
}

// writeJSON encodes v with the given status. Encoding errors are ignored:
// the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v. A missing, malformed or
// mistyped body is reported as errBadBody; an oversized one keeps its
// *http.MaxBytesError so writeError can answer 413.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", errBadBody)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
