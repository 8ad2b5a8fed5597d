package exchange

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": msg,
	})
}

func writeSubmitError(w http.ResponseWriter, err error) {
	var se *submitError
	if errors.As(err, &se) {
		body := map[string]any{
			"success": false,
			"message": se.msg,
		}
		if se.remaining != "" {
			body["remainingTime"] = se.remaining
		}
		writeJSON(w, se.status, body)
		return
	}
	if writeIfRateLimited(w, err) {
		return
	}
	writeMessage(w, http.StatusInternalServerError, "failed to submit album recommendation")
}

// writeIfRateLimited converts an exhausted-retries rate-limit error into a
// 429 with a Retry-After hint. Reports whether it handled the error.
func writeIfRateLimited(w http.ResponseWriter, err error) bool {
	var rl *rateLimitError
	if !errors.As(err, &rl) {
		return false
	}
	if rl.retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(rl.retryAfter.Seconds())))
	}
	writeMessage(w, http.StatusTooManyRequests, "spotify API rate limit exceeded. try again later.")
	return true
}

// clientIP trusts X-Real-IP first, then the first X-Forwarded-For hop, then
// the connection peer.
func clientIP(r *http.Request) string {
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		return strings.TrimSpace(strings.SplitN(xf, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
