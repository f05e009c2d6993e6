package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/artifactrelay/connector/internal/descriptor"
)

func TestWithBasicAuthNilCredsReturnsClientUnchanged(t *testing.T) {
	client := &http.Client{}
	if got := WithBasicAuth(client, nil); got != client {
		t.Fatal("WithBasicAuth(client, nil) should return client unchanged")
	}
	if got := WithBasicAuth(client, &descriptor.Credentials{}); got != client {
		t.Fatal("WithBasicAuth(client, empty creds) should return client unchanged")
	}
}

func TestBasicAuthTransportIsNonPreemptive(t *testing.T) {
	var requests []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		if _, _, ok := r.BasicAuth(); !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="artifacts"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := WithBasicAuth(&http.Client{}, &descriptor.Credentials{Username: "u", Password: "p"})

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 after the transport retries the challenge", resp.StatusCode)
	}
	if len(requests) != 2 {
		t.Fatalf("server saw %d requests, want 2 (bare probe + authed retry)", len(requests))
	}
	if _, _, ok := requests[0].BasicAuth(); ok {
		t.Error("first request carried Basic Auth, want it sent bare (non-preemptive)")
	}
	if _, _, ok := requests[1].BasicAuth(); !ok {
		t.Error("retry request did not carry Basic Auth")
	}

	// A second request to the same host should go out preemptively, since
	// this host already challenged the client once.
	resp2, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	resp2.Body.Close()
	if len(requests) != 3 {
		t.Fatalf("server saw %d requests after second call, want 3 (no second 401 round trip)", len(requests))
	}
	if _, _, ok := requests[2].BasicAuth(); !ok {
		t.Error("request after a known challenge should carry Basic Auth preemptively")
	}
}

func TestBasicAuthTransportReplaysBodyOnChallengeRetry(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := WithBasicAuth(&http.Client{}, &descriptor.Credentials{Username: "u", Password: "p"})

	const payload = "hello sidecar"
	req, err := http.NewRequest(http.MethodPut, srv.URL, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.ContentLength = int64(len(payload))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(payload)), nil
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(bodies) != 2 || bodies[0] != payload || bodies[1] != payload {
		t.Fatalf("bodies = %#v, want both attempts to carry %q", bodies, payload)
	}
}
