package probe

import (
	"fmt"
	"net/http"
	"strings"
)

// statusDetails maps HTTP status codes to explanations a human reviewing
// the report can act on without re-investigating the URL by hand.
var statusDetails = map[int]string{
	400: "Bad request - the server rejected the request as malformed.",
	401: "Authentication required - the resource is behind a login or credential check.",
	404: "Page not found - the resource does not exist at this URL.",
	410: "Gone - the resource was removed permanently and deliberately.",
	429: "Rate limited - the server is throttling requests from this client.",
	451: "Unavailable for legal reasons - the content is blocked in this jurisdiction.",
	500: "Internal server error - the site failed while handling the request.",
	502: "Bad gateway - an upstream server returned an invalid response.",
	503: "Service unavailable - the server is overloaded or down for maintenance.",
	504: "Gateway timeout - an upstream server did not respond in time.",
}

const forbiddenDetail = "Access forbidden - realistic causes: bot/WAF detection, " +
	"geo-restriction, an authentication or session requirement, IP blocking, " +
	"or a cookie consent wall."

// StatusDetail returns the diagnostic explanation for a failing HTTP
// status. The 403 explanation additionally flags Cloudflare-style edge
// protection when the response headers give it away.
func StatusDetail(status int, header http.Header) string {
	if status == http.StatusForbidden {
		detail := forbiddenDetail
		if isCloudflare(header) {
			detail = "Cloudflare edge protection intercepted the request. " + detail
		}
		return detail
	}

	if detail, ok := statusDetails[status]; ok {
		return detail
	}

	switch {
	case status >= 400 && status < 500:
		return fmt.Sprintf("Client error %d - the server rejected the request.", status)
	case status >= 500 && status < 600:
		return fmt.Sprintf("Server error %d - the site failed to handle the request.", status)
	}
	return ""
}

// isCloudflare detects Cloudflare's edge by its characteristic headers
func isCloudflare(header http.Header) bool {
	if header == nil {
		return false
	}
	if header.Get("cf-ray") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(header.Get("Server")), "cloudflare")
}
