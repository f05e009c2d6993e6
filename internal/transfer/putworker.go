package transfer

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/artifactrelay/connector/internal/checksum"
	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/events"
	"github.com/artifactrelay/connector/internal/httpclient"
	"github.com/artifactrelay/connector/internal/urlutil"
)

// putWorker drives one ArtifactPut/MetadataPut descriptor through
// SEND -> SIDECAR (spec.md section 4.4).
type putWorker struct {
	deps Deps
	d    *descriptor.Descriptor
	id   string
}

func newPutWorker(deps Deps, d *descriptor.Descriptor) *putWorker {
	return &putWorker{deps: deps, d: d, id: newTransferID()}
}

func (w *putWorker) run(ctx context.Context) {
	w.d.MarkActive()
	w.publish(events.Initiated, nil)

	remoteURL := urlutil.BuildURL(urlutil.NormalizeScheme(w.deps.Endpoint.URL), w.d.RelativePath)

	size, sendErr := w.send(ctx, remoteURL)
	if sendErr != nil {
		w.fail(classifyPutErr(sendErr), sendErr)
		return
	}

	// Sidecar uploads are attempted regardless of their outcome; the
	// parent PUT's terminal signal is deferred until they're attempted
	// (spec.md section 4.4), but a sidecar failure never fails the parent.
	w.sendSidecars(ctx, remoteURL, size)

	w.d.Finalize(descriptor.OutcomeOK, nil)
	w.publish(events.Succeeded, nil)
}

// send streams the local file as the PUT body and returns its size. The
// size is passed on to sendSidecars, which does not use it.
func (w *putWorker) send(ctx context.Context, remoteURL string) (int64, error) {
	info, err := os.Stat(w.d.LocalPath)
	if err != nil {
		return 0, descriptor.NewTransferFailed(w.d.LocalPath, err)
	}

	file, err := os.Open(w.d.LocalPath)
	if err != nil {
		return 0, descriptor.NewTransferFailed(w.d.LocalPath, err)
	}
	defer file.Close()

	progress := &progressReader{r: file, total: info.Size(), onRead: w.reportUploadProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, remoteURL, progress)
	if err != nil {
		return 0, descriptor.NewTransferFailed(remoteURL, err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("User-Agent", w.deps.Config.UserAgentOrDefault())
	// GetBody lets an auth retry (non-preemptive Basic Auth challenge) or a
	// whole-request retry reopen the file rather than replay a drained reader.
	req.GetBody = func() (io.ReadCloser, error) {
		f, err := os.Open(w.d.LocalPath)
		if err != nil {
			return nil, err
		}
		return &progressReadCloser{progressReader: progressReader{r: f, total: info.Size(), onRead: w.reportUploadProgress}, closer: f}, nil
	}

	resp, err := w.deps.Client.Do(req)
	if err != nil {
		return 0, descriptor.NewTransferFailed(remoteURL, err)
	}
	defer resp.Body.Close()

	if descriptor.ClassifyStatus(resp.StatusCode) != descriptor.OutcomeOK {
		return 0, descriptor.ErrorForStatus(remoteURL, resp.StatusCode)
	}
	return info.Size(), nil
}

func (w *putWorker) reportUploadProgress(n int, total int64) {
	w.publish(events.Progressed, func(ev *events.TransferEvent) {
		ev.BytesDelta = int64(n)
		ev.BytesTotal = total
	})
}

// sendSidecars computes SHA-1 and MD5 of the local file and PUTs each as a
// best-effort hex-string upload to url+ext, retried with the same
// classification-driven backoff as a whole-request retry (spec.md section
// 4.4: "best-effort because some remotes reject unknown extensions" - a
// sidecar still deserves a few attempts before being given up on).
func (w *putWorker) sendSidecars(ctx context.Context, remoteURL string, _ int64) {
	sha1Hex, md5Hex, err := w.localDigests()
	if err != nil {
		w.deps.Logger.Warnf("transfer %s: failed to compute sidecar digests: %v", w.id, err)
		return
	}

	maxRetries, initialDelay, maxDelay := w.deps.Config.RetryConfig()
	for _, pair := range []struct {
		ext  string
		body string
	}{{".sha1", sha1Hex}, {".md5", md5Hex}} {
		ext, body := pair.ext, pair.body
		err := httpclient.ExecuteWithRetry(ctx, httpclient.RetryConfig{
			MaxRetries:   maxRetries,
			InitialDelay: initialDelay,
			MaxDelay:     maxDelay,
		}, func() error {
			return w.putSidecar(ctx, remoteURL+ext, body)
		})
		if err != nil {
			w.deps.Logger.Warnf("transfer %s: sidecar upload %s failed: %v", w.id, ext, err)
		}
	}
}

func (w *putWorker) localDigests() (sha1Hex, md5Hex string, err error) {
	f, err := os.Open(w.d.LocalPath)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	digest := checksum.NewDigester()
	if _, err := io.Copy(digest, f); err != nil {
		return "", "", err
	}
	return digest.SHA1Hex(), digest.MD5Hex(), nil
}

func (w *putWorker) putSidecar(ctx context.Context, url, hexBody string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, newStringReader(hexBody))
	if err != nil {
		return err
	}
	req.ContentLength = int64(len(hexBody))
	req.Header.Set("User-Agent", w.deps.Config.UserAgentOrDefault())
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(newStringReader(hexBody)), nil
	}

	resp, err := w.deps.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if descriptor.ClassifyStatus(resp.StatusCode) != descriptor.OutcomeOK {
		return descriptor.ErrorForStatus(url, resp.StatusCode)
	}
	return nil
}

func (w *putWorker) fail(outcome descriptor.Outcome, err error) {
	w.d.Finalize(outcome, err)
	w.publish(events.Failed, func(ev *events.TransferEvent) { ev.Err = err })
}

func (w *putWorker) publish(kind events.Kind, mutate func(*events.TransferEvent)) {
	ev := events.TransferEvent{Kind: kind, TransferID: w.id, Path: w.d.RelativePath}
	if mutate != nil {
		mutate(&ev)
	}
	w.deps.Bus.Publish(ev)
}

func classifyPutErr(err error) descriptor.Outcome {
	switch err.(type) {
	case *descriptor.ResourceNotFoundError:
		return descriptor.OutcomeNotFound
	case *descriptor.AuthDeniedError:
		return descriptor.OutcomeAuthDenied
	default:
		return descriptor.OutcomeIOError
	}
}

// progressReader wraps an io.Reader, invoking onRead after each successful
// Read so the caller can publish PROGRESSED events while streaming the
// upload body.
type progressReader struct {
	r      io.Reader
	total  int64
	onRead func(n int, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.onRead != nil {
		p.onRead(n, p.total)
	}
	return n, err
}

// progressReadCloser adapts progressReader to io.ReadCloser for GetBody,
// which must hand back a closable body on every replay.
type progressReadCloser struct {
	progressReader
	closer io.Closer
}

func (p *progressReadCloser) Close() error { return p.closer.Close() }

func newStringReader(s string) io.Reader { return &stringReader{s: s} }

type stringReader struct {
	s   string
	pos int
}

func (r *stringReader) Read(buf []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(buf, r.s[r.pos:])
	r.pos += n
	return n, nil
}
