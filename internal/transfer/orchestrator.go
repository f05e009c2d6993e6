// Package transfer implements the batch orchestrator and the GET/PUT
// worker state machines described in spec.md sections 4.2, 4.3, and 4.4.
package transfer

import (
	"context"
	"net/http"
	"sync"

	"github.com/artifactrelay/connector/internal/config"
	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/events"
	"github.com/artifactrelay/connector/internal/fileops"
	"github.com/artifactrelay/connector/internal/httpclient"
	"github.com/artifactrelay/connector/internal/logging"
	"github.com/artifactrelay/connector/internal/tempfile"
)

// Deps bundles the collaborators every worker needs. The orchestrator owns
// none of their lifetimes: the HTTP clients, registry, bus, logger, and
// processor are supplied by the connector facade that constructed this
// orchestrator.
type Deps struct {
	Endpoint    *descriptor.RemoteEndpoint
	Config      *config.SessionConfig
	Client      *http.Client // plain/optimized client, compression enabled
	RangeClient *http.Client // ranged-GET client, compression disabled
	Registry    *tempfile.Registry
	Bus         *events.Bus
	Logger      *logging.Logger
	Processor   fileops.Processor
}

// Orchestrator dispatches one worker per descriptor and blocks the caller
// until every descriptor in the batch is terminal (spec.md section 4.2).
type Orchestrator struct {
	deps Deps
}

// New creates an orchestrator over the given dependencies.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Run dispatches gets and puts concurrently and waits for all of them to
// reach State=DONE. On context cancellation it finalizes every descriptor
// not yet DONE with OutcomeCancelled and returns ctx.Err() without waiting
// further; workers already in flight are allowed to keep draining their
// network I/O in the background (spec.md section 5).
func (o *Orchestrator) Run(ctx context.Context, gets, puts []*descriptor.Descriptor) error {
	all := make([]*descriptor.Descriptor, 0, len(gets)+len(puts))
	all = append(all, gets...)
	all = append(all, puts...)
	if len(all) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(len(all))

	for _, d := range gets {
		d := d
		go func() {
			defer wg.Done()
			newGetWorker(o.deps, d).run(ctx)
		}()
	}
	for _, d := range puts {
		d := d
		go func() {
			defer wg.Done()
			newPutWorker(o.deps, d).run(ctx)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		for _, d := range all {
			d.Finalize(descriptor.OutcomeCancelled, &descriptor.CancelledError{})
		}
		return ctx.Err()
	}
}
