package api

import (
	"context"
	"net/http"
	"strings"
)

// AccountHeader carries the caller's account identifier, set by the identity layer in front
const AccountHeader = "X-Account-ID"

const maxAccountIDLength = 128

type accountKey struct{}

func requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := strings.TrimSpace(r.Header.Get(AccountHeader))
		if accountID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+AccountHeader+" header")
			return
		}
		if len(accountID) > maxAccountIDLength {
			writeError(w, http.StatusBadRequest, "account id too long")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey{}, accountID)))
	})
}

func accountFrom(ctx context.Context) string {
	accountID, _ := ctx.Value(accountKey{}).(string)
	return accountID
}
