package checksum

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/artifactrelay/connector/internal/descriptor"
)

// Verdict is the result of the VERIFY phase's decision table (spec.md
// section 4.3).
type Verdict struct {
	// Outcome is OutcomeOK unless Policy is STRICT and verification failed.
	Outcome descriptor.Outcome
	Err     error

	// Corrupted is true when a mismatch or unavailability was downgraded
	// to a soft CORRUPTED event under WARN policy.
	Corrupted bool

	// SidecarBody is the raw bytes of whichever sidecar matched, so the
	// caller can best-effort write it next to the final destination.
	SidecarBody []byte
	SidecarExt  string // ".sha1" or ".md5"
}

// Verify fetches url+".sha1" then url+".md5" and compares against the
// streaming digest, applying the policy-driven decision table:
//
//	sidecar present & match    -> OK
//	sidecar present & mismatch -> STRICT: ChecksumMismatch / WARN: Corrupted+OK
//	no sidecar at all          -> STRICT: ChecksumUnavailable / WARN: Corrupted+OK
func Verify(ctx context.Context, client *http.Client, url string, digest *Digester, policy descriptor.ChecksumPolicy) Verdict {
	if policy == descriptor.PolicyIgnore {
		return Verdict{Outcome: descriptor.OutcomeOK}
	}

	if body, ext, expected, ok := fetchSidecar(ctx, client, url+".sha1", ".sha1"); ok {
		return decide(policy, url, expected, digest.SHA1Hex(), body, ext)
	}
	if body, ext, expected, ok := fetchSidecar(ctx, client, url+".md5", ".md5"); ok {
		return decide(policy, url, expected, digest.MD5Hex(), body, ext)
	}

	if policy == descriptor.PolicyStrict {
		return Verdict{Outcome: descriptor.OutcomeChecksumUnavailable, Err: &descriptor.ChecksumUnavailableError{Path: url}}
	}
	return Verdict{Outcome: descriptor.OutcomeOK, Corrupted: true}
}

func decide(policy descriptor.ChecksumPolicy, path, expected, actual string, body []byte, ext string) Verdict {
	if equalHex(expected, actual) {
		return Verdict{Outcome: descriptor.OutcomeOK, SidecarBody: body, SidecarExt: ext}
	}
	if policy == descriptor.PolicyStrict {
		return Verdict{
			Outcome: descriptor.OutcomeChecksumMismatch,
			Err:     &descriptor.ChecksumFailureError{Path: path, Expected: expected, Actual: actual},
		}
	}
	return Verdict{Outcome: descriptor.OutcomeOK, Corrupted: true}
}

// fetchSidecar issues a GET for sidecarURL. ok is false when the sidecar
// doesn't exist (non-200) or the body couldn't be read.
func fetchSidecar(ctx context.Context, client *http.Client, sidecarURL, ext string) (body []byte, sidecarExt string, hexDigest string, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sidecarURL, nil)
	if err != nil {
		return nil, "", "", false
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", "", false
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", "", false
	}
	return raw, ext, strings.TrimSpace(string(raw)), true
}

// equalHex compares two hex digests case-insensitively, trimming whitespace.
func equalHex(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return strings.EqualFold(a, b)
}
