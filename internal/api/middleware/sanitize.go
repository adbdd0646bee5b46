package middleware

import (
	"net/http"
	"strings"

	"github.com/comunavision/backend/internal/util"
)

// maxLoggedLen bounds header and path values in log output.
const maxLoggedLen = 200

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-api-token":         {},
	"x-access-token":      {},
	"x-auth-token":        {},
	"x-api-secret":        {},
	"x-forwarded-for":     {},
}

// SanitizeHeaders copies request headers for logging, redacting credential
// carriers and stripping control characters from the rest.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	out := make(map[string][]string, len(h))
	for name, vals := range h {
		if _, ok := sensitiveHeaders[strings.ToLower(name)]; ok {
			out[name] = []string{"<redacted>"}
			continue
		}
		cleaned := make([]string, 0, len(vals))
		for _, v := range vals {
			cleaned = append(cleaned, truncate(util.SanitizeForLog(v)))
		}
		out[name] = cleaned
	}
	return out
}

// SanitizePath prepares a request path for logging. The query string is
// dropped entirely; it may carry filter payloads.
func SanitizePath(p string) string {
	if i := strings.Index(p, "?"); i != -1 {
		p = p[:i]
	}
	return truncate(util.SanitizeForLog(p))
}

func truncate(s string) string {
	if len(s) > maxLoggedLen {
		return s[:maxLoggedLen]
	}
	return s
}
