// Package util holds the small shared pieces of network plumbing.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc creates a proxy selection function. Explicit proxy URLs win
// over the environment; with neither set, standard env handling applies.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
