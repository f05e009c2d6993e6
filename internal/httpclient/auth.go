package httpclient

import (
	"io"
	"net/http"
	"sync"

	"github.com/artifactrelay/connector/internal/descriptor"
)

// basicAuthTransport adds HTTP Basic Auth non-preemptively (spec.md section
// 4.1: "credentials realm from endpoint (non-preemptive)"): the first
// request to a host goes out bare, and credentials are only attached once
// that host has actually challenged this client with a 401, mirroring the
// ntlmssp.Negotiator wrapping style in proxy.go.
type basicAuthTransport struct {
	inner    http.RoundTripper
	username string
	password string

	mu         sync.Mutex
	challenged map[string]bool
}

// WithBasicAuth wraps client's transport to add non-preemptive Basic Auth
// for creds. A nil creds, or one with both fields empty, returns client
// unchanged.
func WithBasicAuth(client *http.Client, creds *descriptor.Credentials) *http.Client {
	if client == nil || creds == nil || (creds.Username == "" && creds.Password == "") {
		return client
	}
	client.Transport = &basicAuthTransport{
		inner:      client.Transport,
		username:   creds.Username,
		password:   creds.Password,
		challenged: make(map[string]bool),
	}
	return client
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.wasChallenged(req.URL.Host) {
		authed := req.Clone(req.Context())
		authed.SetBasicAuth(t.username, t.password)
		return t.inner.RoundTrip(authed)
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	t.markChallenged(req.URL.Host)

	body, ok := replayableBody(req)
	if !ok {
		return resp, nil
	}
	resp.Body.Close()

	retry := req.Clone(req.Context())
	retry.Body = body
	retry.SetBasicAuth(t.username, t.password)
	return t.inner.RoundTrip(retry)
}

// replayableBody returns a fresh body reader for a retry, or ok=false when
// the request has a body that can't be reopened (no GetBody set). A
// bodyless request (GET, HEAD) is always replayable.
func replayableBody(req *http.Request) (io.ReadCloser, bool) {
	if req.Body == nil || req.ContentLength == 0 {
		return nil, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (t *basicAuthTransport) wasChallenged(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.challenged[host]
}

func (t *basicAuthTransport) markChallenged(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.challenged[host] = true
}
