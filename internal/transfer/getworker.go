package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/artifactrelay/connector/internal/checksum"
	"github.com/artifactrelay/connector/internal/constants"
	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/events"
	"github.com/artifactrelay/connector/internal/httpclient"
	"github.com/artifactrelay/connector/internal/tempfile"
	"github.com/artifactrelay/connector/internal/urlutil"
)

const readChunkSize = 32 * 1024

// getWorker drives one ArtifactGet/MetadataGet descriptor through
// CLAIM -> FETCH -> VERIFY -> COMMIT -> CLEANUP (spec.md section 4.3).
type getWorker struct {
	deps Deps
	d    *descriptor.Descriptor
	id   string
}

func newGetWorker(deps Deps, d *descriptor.Descriptor) *getWorker {
	return &getWorker{deps: deps, d: d, id: newTransferID()}
}

func (w *getWorker) run(ctx context.Context) {
	w.d.MarkActive()
	w.publish(events.Initiated, nil)

	remoteURL := urlutil.BuildURL(urlutil.NormalizeScheme(w.deps.Endpoint.URL), w.d.RelativePath)

	if w.d.ExistenceCheck && w.d.LocalPath == "" {
		w.runExistenceCheck(ctx, remoteURL)
		return
	}

	resumeAllowed := !w.deps.Config.DisableResumable
	handle, err := w.deps.Registry.Claim(w.id, w.d.LocalPath, resumeAllowed, w.deps.Config.DisableResumable)
	if err != nil {
		w.fail(descriptor.OutcomeIOError, descriptor.NewTransferFailed(w.d.LocalPath, err))
		return
	}

	outcome, ferr, digest := w.fetch(ctx, remoteURL, handle)
	if outcome != descriptor.OutcomeOK {
		handle.Release(true)
		w.fail(outcome, ferr)
		return
	}

	if w.d.Policy != descriptor.PolicyIgnore {
		verdict := checksum.Verify(ctx, w.deps.Client, remoteURL, digest, w.d.Policy)
		if verdict.Outcome != descriptor.OutcomeOK {
			handle.Release(true)
			w.fail(verdict.Outcome, verdict.Err)
			return
		}
		if verdict.Corrupted {
			w.publish(events.Corrupted, nil)
		}
		if verdict.SidecarBody != nil {
			w.writeSidecarBestEffort(verdict)
		}
	}

	if err := w.deps.Processor.Commit(handle.PartialPath, w.d.LocalPath); err != nil {
		handle.Release(true)
		w.fail(descriptor.OutcomeIOError, descriptor.NewTransferFailed(w.d.LocalPath, err))
		return
	}
	handle.Release(false)

	w.d.Finalize(descriptor.OutcomeOK, nil)
	w.publish(events.Succeeded, nil)
}

func (w *getWorker) runExistenceCheck(ctx context.Context, remoteURL string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, remoteURL, nil)
	if err != nil {
		w.fail(descriptor.OutcomeIOError, descriptor.NewTransferFailed(remoteURL, err))
		return
	}
	req.Header.Set("User-Agent", w.deps.Config.UserAgentOrDefault())
	resp, err := w.deps.Client.Do(req)
	if err != nil {
		w.fail(descriptor.OutcomeIOError, descriptor.NewTransferFailed(remoteURL, err))
		return
	}
	resp.Body.Close()

	outcome := descriptor.ClassifyStatus(resp.StatusCode)
	if outcome != descriptor.OutcomeOK {
		w.fail(outcome, descriptor.ErrorForStatus(remoteURL, resp.StatusCode))
		return
	}
	w.d.Finalize(descriptor.OutcomeOK, nil)
	w.publish(events.Succeeded, nil)
}

// fetch runs FETCH: issue the (possibly ranged) GET, stream the body into
// the partial file, retrying up to constants.MaxResumeRetries times on a
// mid-stream I/O error without deleting the partial.
func (w *getWorker) fetch(ctx context.Context, remoteURL string, handle *tempfile.Handle) (descriptor.Outcome, error, *checksum.Digester) {
	digest := checksum.NewDigester()
	if w.d.Policy == descriptor.PolicyIgnore {
		digest = nil
	}

	file, err := os.OpenFile(handle.PartialPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return descriptor.OutcomeIOError, descriptor.NewTransferFailed(w.d.LocalPath, err), nil
	}
	defer file.Close()

	offset := handle.Length
	_, initialDelay, maxDelay := w.deps.Config.RetryConfig()

	attempt := 0
	for {
		client := w.deps.Client
		if offset > 0 {
			client = w.deps.RangeClient
		}

		resp, reqErr := w.issueGet(ctx, client, remoteURL, offset)
		if reqErr != nil {
			return descriptor.OutcomeIOError, descriptor.NewTransferFailed(remoteURL, reqErr), nil
		}

		status := resp.StatusCode
		outcome := descriptor.ClassifyStatus(status)
		if outcome != descriptor.OutcomeOK {
			resp.Body.Close()
			return outcome, descriptor.ErrorForStatus(remoteURL, status), nil
		}

		acceptRange := acceptsRange(resp)
		writeOffset := int64(0)
		if acceptRange {
			writeOffset = offset
		}

		newOffset, streamErr := w.streamBody(resp, file, writeOffset, digest)
		resp.Body.Close()

		if streamErr == nil {
			return descriptor.OutcomeOK, nil, digest
		}

		if httpclient.ClassifyError(streamErr) == httpclient.ErrorTypeFatal {
			return descriptor.OutcomeIOError, descriptor.NewTransferFailed(remoteURL, streamErr), nil
		}
		if attempt >= constants.MaxResumeRetries {
			return descriptor.OutcomeIOError, descriptor.NewTransferFailed(remoteURL, streamErr), nil
		}
		attempt++
		if w.deps.Config.DisableResumable {
			// No Range requests: the retry re-fetches the whole body from 0.
			offset = 0
			if digest != nil {
				digest = checksum.NewDigester()
			}
		} else {
			offset = newOffset
		}
		backoff := httpclient.CalculateBackoff(attempt, initialDelay, maxDelay)
		w.deps.Logger.Debugf("transfer %s: resuming after mid-stream error (attempt %d, wait %s): %v", w.id, attempt, backoff, streamErr)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return descriptor.OutcomeCancelled, &descriptor.CancelledError{}, nil
		}
	}
}

// streamBody copies resp.Body into file starting at writeOffset, feeding
// digest and publishing PROGRESSED events per chunk. Returns the offset
// reached so far (useful to the caller as the next resume point) and any
// read error other than io.EOF.
func (w *getWorker) streamBody(resp *http.Response, file *os.File, writeOffset int64, digest *checksum.Digester) (int64, error) {
	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	buf := make([]byte, readChunkSize)
	cumulative := writeOffset

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.WriteAt(buf[:n], cumulative); werr != nil {
				return cumulative, werr
			}
			cumulative += int64(n)
			if digest != nil {
				digest.Write(buf[:n])
			}
			w.publish(events.Progressed, func(ev *events.TransferEvent) {
				ev.BytesDelta = int64(n)
				ev.BytesTotal = total
			})
		}
		if readErr != nil {
			if isEOF(readErr) {
				return cumulative, nil
			}
			return cumulative, readErr
		}
	}
}

func (w *getWorker) issueGet(ctx context.Context, client *http.Client, remoteURL string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", w.deps.Config.UserAgentOrDefault())
	if !w.deps.Config.UseCache {
		req.Header.Set("Pragma", "no-cache")
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	return client.Do(req)
}

func (w *getWorker) writeSidecarBestEffort(verdict checksum.Verdict) {
	dst := w.d.LocalPath + verdict.SidecarExt
	if err := os.WriteFile(dst, verdict.SidecarBody, 0o644); err != nil {
		w.deps.Logger.Warnf("transfer %s: failed to persist sidecar %s: %v", w.id, dst, err)
	}
}

func (w *getWorker) fail(outcome descriptor.Outcome, err error) {
	w.d.Finalize(outcome, err)
	w.publish(events.Failed, func(ev *events.TransferEvent) { ev.Err = err })
}

func (w *getWorker) publish(kind events.Kind, mutate func(*events.TransferEvent)) {
	ev := events.TransferEvent{Kind: kind, TransferID: w.id, Path: w.d.LocalPath}
	if mutate != nil {
		mutate(&ev)
	}
	w.deps.Bus.Publish(ev)
}

func acceptsRange(resp *http.Response) bool {
	cr := resp.Header.Get("Content-Range")
	return cr != "" && cr != "none"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
