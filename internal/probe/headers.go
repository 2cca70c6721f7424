package probe

import (
	"net/http"
	"net/url"
)

// Header sets that mimic a real browser. Servers behind bot filters treat
// bare client UAs as scripted traffic, so even the primary attempt
// presents as desktop Chrome.
const (
	primaryUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	escalationUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// UserAgent returns the user agent presented on primary attempts, for
// collaborators that identify themselves the same way (robots.txt checks).
func UserAgent() string {
	return primaryUserAgent
}

// setPrimaryHeaders applies the baseline browser header set
func setPrimaryHeaders(req *http.Request) {
	req.Header.Set("User-Agent", primaryUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "max-age=0")
}

// setEscalationHeaders applies the elaborate header set used for the 403
// retry: everything the primary set sends, plus the fetch-metadata and
// client-hint headers a modern browser includes, and a Referer derived
// from the URL's own origin so the request looks like in-site navigation.
func setEscalationHeaders(req *http.Request) {
	setPrimaryHeaders(req)
	req.Header.Set("User-Agent", escalationUserAgent)
	req.Header.Set("DNT", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Sec-CH-UA", `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`)
	req.Header.Set("Sec-CH-UA-Mobile", "?0")
	req.Header.Set("Sec-CH-UA-Platform", `"Windows"`)

	if origin := originOf(req.URL); origin != "" {
		req.Header.Set("Referer", origin+"/")
	}
}

func originOf(u *url.URL) string {
	if u == nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
