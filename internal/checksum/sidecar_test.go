package checksum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artifactrelay/connector/internal/descriptor"
)

func digesterFor(t *testing.T, data string) *Digester {
	t.Helper()
	d := NewDigester()
	if _, err := d.Write([]byte(data)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return d
}

func TestVerifySidecarMatch(t *testing.T) {
	digest := digesterFor(t, "artifact contents")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/app.tar.gz.sha1" {
			w.Write([]byte(digest.SHA1Hex()))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	verdict := Verify(context.Background(), srv.Client(), srv.URL+"/app.tar.gz", digest, descriptor.PolicyStrict)
	if verdict.Outcome != descriptor.OutcomeOK {
		t.Fatalf("Outcome = %s, want OK", verdict.Outcome)
	}
	if verdict.Corrupted {
		t.Error("Corrupted = true, want false on a match")
	}
}

func TestVerifyMismatchStrictFails(t *testing.T) {
	digest := digesterFor(t, "artifact contents")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/app.tar.gz.sha1" {
			w.Write([]byte("0000000000000000000000000000000000000000"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	verdict := Verify(context.Background(), srv.Client(), srv.URL+"/app.tar.gz", digest, descriptor.PolicyStrict)
	if verdict.Outcome != descriptor.OutcomeChecksumMismatch {
		t.Fatalf("Outcome = %s, want ChecksumMismatch", verdict.Outcome)
	}
	if _, ok := verdict.Err.(*descriptor.ChecksumFailureError); !ok {
		t.Fatalf("Err = %T, want *ChecksumFailureError", verdict.Err)
	}
}

func TestVerifyMismatchWarnDowngrades(t *testing.T) {
	digest := digesterFor(t, "artifact contents")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/app.tar.gz.sha1" {
			w.Write([]byte("0000000000000000000000000000000000000000"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	verdict := Verify(context.Background(), srv.Client(), srv.URL+"/app.tar.gz", digest, descriptor.PolicyWarn)
	if verdict.Outcome != descriptor.OutcomeOK {
		t.Fatalf("Outcome = %s, want OK (WARN downgrades)", verdict.Outcome)
	}
	if !verdict.Corrupted {
		t.Error("Corrupted = false, want true under WARN mismatch")
	}
}

func TestVerifyFallsBackToMD5(t *testing.T) {
	digest := digesterFor(t, "artifact contents")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app.tar.gz.sha1":
			http.NotFound(w, r)
		case "/app.tar.gz.md5":
			w.Write([]byte(digest.MD5Hex()))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	verdict := Verify(context.Background(), srv.Client(), srv.URL+"/app.tar.gz", digest, descriptor.PolicyStrict)
	if verdict.Outcome != descriptor.OutcomeOK {
		t.Fatalf("Outcome = %s, want OK via md5 fallback", verdict.Outcome)
	}
	if verdict.SidecarExt != ".md5" {
		t.Errorf("SidecarExt = %s, want .md5", verdict.SidecarExt)
	}
}

func TestVerifyUnavailableStrictFails(t *testing.T) {
	digest := digesterFor(t, "artifact contents")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	verdict := Verify(context.Background(), srv.Client(), srv.URL+"/app.tar.gz", digest, descriptor.PolicyStrict)
	if verdict.Outcome != descriptor.OutcomeChecksumUnavailable {
		t.Fatalf("Outcome = %s, want ChecksumUnavailable", verdict.Outcome)
	}
}

func TestVerifyIgnorePolicySkipsFetch(t *testing.T) {
	digest := digesterFor(t, "artifact contents")
	verdict := Verify(context.Background(), http.DefaultClient, "http://unreachable.invalid/app.tar.gz", digest, descriptor.PolicyIgnore)
	if verdict.Outcome != descriptor.OutcomeOK {
		t.Fatalf("Outcome = %s, want OK under IGNORE without any request", verdict.Outcome)
	}
}
