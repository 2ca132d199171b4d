package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("json encode", zap.Error(err))
	}
}

// Fail answers r according to err's Kind.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := As(err)
	if !ok {
		ae = &AppError{Kind: KindInternal, Status: http.StatusInternalServerError, Err: err}
	}

	switch ae.Kind {
	case KindNotFound:
		http.Redirect(w, r, "/404", ae.Status)
	case KindUnauthenticated:
		http.Redirect(w, r, "/login?redirectTo="+url.QueryEscape(r.URL.Path), ae.Status)
	case KindValidation:
		JSON(w, ae.Status, map[string]any{"errors": ae.Message, "fields": ae.Fields})
	case KindOwnershipViolation, KindForbidden:
		JSON(w, ae.Status, map[string]string{"errors": ae.Message})
	default:
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(ae.Err))
		JSON(w, http.StatusInternalServerError,
			map[string]string{"errors": http.StatusText(http.StatusInternalServerError)})
	}
}
