// Package probe performs reachability checks of external URLs and turns
// raw HTTP outcomes into structured, human-actionable diagnostics.
package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/avsol/linkrot/internal/model"
	"github.com/avsol/linkrot/internal/util"
)

// escalationDelay is the pause before the 403 retry, so the second attempt
// does not look like a scripted burst.
const escalationDelay = 500 * time.Millisecond

// sleepFunc is the delay function used before escalation (injectable for tests)
var sleepFunc = time.Sleep

var errTooManyRedirects = errors.New("too many redirects")

// headFallbackStatuses are HEAD responses that signal the server rejects
// or mishandles HEAD; the check is reissued as GET.
var headFallbackStatuses = map[int]bool{
	http.StatusForbidden:          true,
	http.StatusMethodNotAllowed:   true,
	http.StatusNotImplemented:     true,
	http.StatusServiceUnavailable: true,
}

// Prober performs one reachability check per URL. Every code path returns
// a structured outcome; the prober never returns an error to its caller.
type Prober struct {
	client       *http.Client
	insecure     *http.Client
	timeout      time.Duration
	maxRedirects int
}

// Options configures a Prober
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	HTTPProxy    string
	HTTPSProxy   string
}

// New creates a prober from the HTTP configuration
func New(cfg Options) *Prober {
	proxy := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)

	transport := &http.Transport{Proxy: proxy}
	insecureTransport := transport.Clone()
	insecureTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errTooManyRedirects
		}
		return nil
	}

	return &Prober{
		client: &http.Client{
			Transport:     transport,
			Timeout:       cfg.Timeout,
			CheckRedirect: checkRedirect,
		},
		insecure: &http.Client{
			Transport:     insecureTransport,
			Timeout:       cfg.Timeout,
			CheckRedirect: checkRedirect,
		},
		timeout:      cfg.Timeout,
		maxRedirects: maxRedirects,
	}
}

// response is the part of an HTTP response the prober keeps: only status
// and headers matter, the body is discarded without a full download.
type response struct {
	status int
	header http.Header
}

// Check probes one URL and classifies the outcome. The ladder is:
// HEAD with browser headers, GET when the server mishandles HEAD, one
// escalated cookie-session retry on 403, and a verification-bypassed GET
// on TLS failures. Transport errors are classified by cause.
func (p *Prober) Check(ctx context.Context, rawURL string) model.ProbeOutcome {
	if skipScheme(rawURL) {
		return model.ProbeOutcome{
			OK:     true,
			Reason: "Skipped - not HTTP",
			Detail: "The scheme cannot be verified over HTTP.",
		}
	}

	resp, err := p.do(ctx, p.client, http.MethodHead, rawURL, setPrimaryHeaders)
	if err == nil && headFallbackStatuses[resp.status] {
		resp, err = p.do(ctx, p.client, http.MethodGet, rawURL, setPrimaryHeaders)
	}
	if err != nil {
		return p.classifyTransport(ctx, rawURL, err)
	}

	if resp.status == http.StatusForbidden {
		if outcome, ok := p.escalate(ctx, rawURL); ok {
			return outcome
		}
	}

	return classifyStatus(resp)
}

// do issues one request and keeps only status and headers. GET bodies are
// drained a bounded amount before close so keep-alive connections stay
// reusable without downloading the content.
func (p *Prober) do(ctx context.Context, client *http.Client, method, rawURL string, applyHeaders func(*http.Request)) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	_, _ = io.CopyN(io.Discard, resp.Body, 32<<10)
	_ = resp.Body.Close()

	return &response{status: resp.StatusCode, header: resp.Header}, nil
}

// escalate retries a 403 once with a fresh cookie-carrying session and the
// full browser-emulation header set. Strictly best effort: any error or
// non-success status leaves the original 403 standing, so the second
// return value reports whether the escalated outcome should be used.
func (p *Prober) escalate(ctx context.Context, rawURL string) (model.ProbeOutcome, bool) {
	sleepFunc(escalationDelay)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return model.ProbeOutcome{}, false
	}
	// Fresh session per URL: cookies set during the retry's own redirects
	// persist within this attempt and are discarded afterwards.
	session := &http.Client{
		Transport:     p.client.Transport,
		Jar:           jar,
		Timeout:       p.timeout,
		CheckRedirect: p.client.CheckRedirect,
	}

	resp, err := p.do(ctx, session, http.MethodGet, rawURL, setEscalationHeaders)
	if err != nil {
		return model.ProbeOutcome{}, false
	}
	if resp.status >= 200 && resp.status < 400 {
		return model.ProbeOutcome{
			OK:         true,
			StatusCode: resp.status,
			Reason:     "OK (enhanced retry)",
			Detail:     "Initial 403 cleared after retrying with a cookie session and full browser emulation.",
		}, true
	}
	return model.ProbeOutcome{}, false
}

// classifyStatus derives the verdict from the final HTTP response
func classifyStatus(resp *response) model.ProbeOutcome {
	switch {
	case resp.status >= 200 && resp.status < 300:
		return model.ProbeOutcome{OK: true, StatusCode: resp.status, Reason: "OK"}
	case resp.status >= 300 && resp.status < 400:
		// Redirects are followed, so this fires only for unusual terminal
		// 3xx responses without a usable Location.
		return model.ProbeOutcome{OK: true, StatusCode: resp.status, Reason: "OK (Redirect)"}
	default:
		return model.ProbeOutcome{
			OK:         false,
			StatusCode: resp.status,
			Reason:     fmt.Sprintf("HTTP %d", resp.status),
			Detail:     StatusDetail(resp.status, resp.header),
		}
	}
}

// classifyTransport turns a request error (no HTTP response obtained) into
// a structured outcome with a cause-specific diagnostic.
func (p *Prober) classifyTransport(ctx context.Context, rawURL string, err error) model.ProbeOutcome {
	if isTLSError(err) {
		return p.retryInsecure(ctx, rawURL, err)
	}

	if errors.Is(err, errTooManyRedirects) {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "Too many redirects",
			Detail: fmt.Sprintf("Redirect chain exceeded %d hops; likely a redirect loop.", p.maxRedirects),
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(err.Error(), "no such host") {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "DNS error",
			Detail: "Name resolution failed - the host does not exist or DNS is unreachable.",
		}
	}

	if strings.Contains(err.Error(), "connection refused") {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "Connection refused",
			Detail: "The host answered the network but nothing is listening on the port.",
		}
	}

	if strings.Contains(err.Error(), "no route to host") {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "No route to host",
			Detail: "No network path to the host is available.",
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "Timeout",
			Detail: fmt.Sprintf("No response within %v.", p.timeout),
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "Connection error",
			Detail: "The connection failed: " + truncate(err.Error(), 120),
		}
	}

	return model.ProbeOutcome{
		OK:     false,
		Reason: "Unexpected error",
		Detail: truncate(err.Error(), 120),
	}
}

// retryInsecure reattempts a TLS-failed URL with certificate verification
// disabled. A success is reported as reachable with an SSL warning so the
// report still records that verification had to be bypassed.
func (p *Prober) retryInsecure(ctx context.Context, rawURL string, tlsErr error) model.ProbeOutcome {
	resp, err := p.do(ctx, p.insecure, http.MethodGet, rawURL, setPrimaryHeaders)
	if err != nil {
		return model.ProbeOutcome{
			OK:     false,
			Reason: "SSL error",
			Detail: "TLS handshake failed, possibly an expired, self-signed, or mismatched certificate: " + truncate(tlsErr.Error(), 120),
		}
	}

	if resp.status >= 200 && resp.status < 400 {
		return model.ProbeOutcome{
			OK:         true,
			StatusCode: resp.status,
			Reason:     "OK (SSL Warning)",
			Detail:     "Reachable only with certificate verification bypassed: " + truncate(tlsErr.Error(), 120),
		}
	}

	return model.ProbeOutcome{
		OK:         false,
		StatusCode: resp.status,
		Reason:     fmt.Sprintf("HTTP %d (SSL Warning)", resp.status),
		Detail:     StatusDetail(resp.status, resp.header) + " Certificate verification was also bypassed for this check.",
	}
}

// skipScheme reports whether the URL uses a scheme that is always treated
// as valid. Classification filters these already; this is a final guard.
func skipScheme(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "mailto", "tel", "javascript":
		return true
	}
	return false
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	if errors.As(err, &hostnameErr) {
		return true
	}
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &invalidErr) {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "certificate") || strings.Contains(msg, "tls:")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
