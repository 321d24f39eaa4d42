package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/response"
)

// timeTokenWindow is how long a generated time token stays valid.
const timeTokenWindow = 5 * time.Minute

// APIKeyMiddleware guards internal endpoints (price refresh triggers, secret
// settings) with a static API key plus a short-lived HMAC time token, so a
// leaked request cannot be replayed indefinitely. The expected key is read
// from the INTERNAL_API_KEY environment variable.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusInternalServerError, "authentication failure", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "authentication failure", "Missing API key")
			return
		}
		if !hmac.Equal([]byte(apiKey), []byte(expected)) {
			response.RespondError(w, http.StatusUnauthorized, "authentication failure", "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "authentication failure", "Missing Time token")
			return
		}
		if !verifyTimeToken(expected, timeToken) {
			response.RespondError(w, http.StatusUnauthorized, "authentication failure", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken creates a token of the form "<unix>.<hmac(unix, key)>"
// valid for the token window.
func GenerateTimeToken(apiKey string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	return ts + "." + signTimestamp(apiKey, ts)
}

func verifyTimeToken(apiKey, token string) bool {
	ts, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}

	age := time.Since(time.Unix(unix, 0))
	if age < -timeTokenWindow || age > timeTokenWindow {
		return false
	}

	return hmac.Equal([]byte(sig), []byte(signTimestamp(apiKey, ts)))
}

func signTimestamp(apiKey, ts string) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	fmt.Fprint(mac, ts)
	return hex.EncodeToString(mac.Sum(nil))
}
