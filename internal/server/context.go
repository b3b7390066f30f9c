package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/qbank/internal/bank"
)

type contextKey string

const kindContextKey contextKey = "bank_kind"

// kindCtx resolves the {kind} URL parameter and rejects unknown kinds.
func kindCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "kind")
		kind, ok := bank.LookupKind(name)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_request", "unknown item kind "+strconv.Quote(name))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), kindContextKey, kind)))
	})
}

func kindFromContext(ctx context.Context) bank.Kind {
	kind, _ := ctx.Value(kindContextKey).(bank.Kind)
	return kind
}
