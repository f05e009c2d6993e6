// Package descriptor defines the connector's data model: the remote
// endpoint, the transfer descriptor variants, and the per-descriptor
// state machine (spec.md section 3).
package descriptor

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// acceptedSchemes is the set of URL schemes the connector accepts (spec.md section 6).
var acceptedSchemes = map[string]bool{
	"http":      true,
	"https":     true,
	"dav":       true,
	"dav:http":  true,
	"dav:https": true,
}

// RemoteEndpoint is the immutable description of the remote repository.
type RemoteEndpoint struct {
	URL         string // absolute URL, scheme in acceptedSchemes
	ContentType string // must equal "default"
	Credentials *Credentials
	Proxy       *ProxySpec
}

// Credentials carries a non-preemptive auth realm for the HTTP client.
type Credentials struct {
	Username string
	Password string
}

// ProxySpec carries proxy configuration for the HTTP client.
type ProxySpec struct {
	Mode     string // "", "no-proxy", "system", "basic", "ntlm"
	Host     string
	Port     int
	User     string
	Password string
	NoProxy  string
	Warmup   bool
}

// Validate checks the endpoint per spec.md section 4.1, returning
// NoConnectorError on failure.
func (e *RemoteEndpoint) Validate() error {
	if e.ContentType != "default" {
		return &NoConnectorError{Reason: fmt.Sprintf("unsupported content-type %q", e.ContentType)}
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return &NoConnectorError{Reason: "invalid endpoint URL: " + err.Error()}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		// Support bare "dav:" prefixes that net/url doesn't parse as a scheme.
		scheme = strings.ToLower(strings.SplitN(e.URL, ":", 2)[0])
	}
	if !acceptedSchemes[scheme] {
		return &NoConnectorError{Reason: fmt.Sprintf("unsupported scheme %q", scheme)}
	}
	return nil
}

// ChecksumPolicy controls how the GET worker's VERIFY phase handles a
// missing or mismatched sidecar digest (spec.md glossary).
type ChecksumPolicy int

const (
	// PolicyStrict fails the transfer on any mismatch or unavailability.
	PolicyStrict ChecksumPolicy = iota
	// PolicyWarn emits a CORRUPTED event and accepts the file regardless.
	PolicyWarn
	// PolicyIgnore skips verification entirely.
	PolicyIgnore
)

// Kind distinguishes the four descriptor variants (spec.md section 3).
type Kind int

const (
	ArtifactGet Kind = iota
	MetadataGet
	ArtifactPut
	MetadataPut
)

func (k Kind) IsGet() bool { return k == ArtifactGet || k == MetadataGet }
func (k Kind) IsPut() bool { return k == ArtifactPut || k == MetadataPut }

// State is the descriptor's lifecycle position (spec.md section 3/4.8).
type State int

const (
	StateNew State = iota
	StateActive
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateActive:
		return "ACTIVE"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal result set exactly once when State becomes DONE.
type Outcome int

const (
	OutcomeUnset Outcome = iota
	OutcomeOK
	OutcomeNotFound
	OutcomeAuthDenied
	OutcomeIOError
	OutcomeChecksumMismatch
	OutcomeChecksumUnavailable
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeNotFound:
		return "NotFound"
	case OutcomeAuthDenied:
		return "AuthDenied"
	case OutcomeIOError:
		return "IoError"
	case OutcomeChecksumMismatch:
		return "ChecksumMismatch"
	case OutcomeChecksumUnavailable:
		return "ChecksumUnavailable"
	case OutcomeCancelled:
		return "Cancelled"
	default:
		return "Unset"
	}
}

// Descriptor is a caller-owned transfer request. The engine borrows it for
// the duration of one batch and writes State/Outcome/Err; it must not be
// reused across batches (spec.md section 3 "Lifecycle").
type Descriptor struct {
	Kind Kind

	// RelativePath is the path on the remote, as produced by the external
	// layout function. Opaque to the connector beyond URL-joining it.
	RelativePath string

	// LocalPath is the destination for Get, the source for Put.
	LocalPath string

	// ExistenceCheck, for Get only: issue a HEAD and skip body fetch.
	ExistenceCheck bool

	// Policy applies to Get only.
	Policy ChecksumPolicy

	mu      sync.Mutex
	state   State
	outcome Outcome
	err     error
}

// State returns the descriptor's current lifecycle state.
func (d *Descriptor) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Outcome returns the terminal outcome. Only meaningful once State()==StateDone.
func (d *Descriptor) Outcome() Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outcome
}

// Err returns the error associated with a non-OK outcome, if any.
func (d *Descriptor) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// MarkActive transitions NEW->ACTIVE. Called once by the worker before its
// first I/O.
func (d *Descriptor) MarkActive() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateNew {
		d.state = StateActive
	}
}

// Finalize transitions ACTIVE->DONE exactly once, recording outcome/err.
// Subsequent calls are no-ops (spec.md invariant 3, the idempotent latch).
func (d *Descriptor) Finalize(outcome Outcome, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateDone {
		return
	}
	d.state = StateDone
	d.outcome = outcome
	d.err = err
}
