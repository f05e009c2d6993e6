// Package connector implements the Connector facade described in spec.md
// section 4.1: the single entry point a caller constructs once per remote
// endpoint and reuses across Get/Put batches.
package connector

import (
	"context"
	"net/http"
	"sync"

	"github.com/artifactrelay/connector/internal/config"
	"github.com/artifactrelay/connector/internal/constants"
	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/events"
	"github.com/artifactrelay/connector/internal/fileops"
	"github.com/artifactrelay/connector/internal/httpclient"
	"github.com/artifactrelay/connector/internal/logging"
	"github.com/artifactrelay/connector/internal/tempfile"
	"github.com/artifactrelay/connector/internal/transfer"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// Connector is the session-scoped facade over one remote endpoint. It owns
// the HTTP clients, the partial-file registry, and the event bus; batches
// run through its orchestrator one at a time relative to each other's
// cancellation, but Get and Put may both be in flight concurrently.
type Connector struct {
	endpoint *descriptor.RemoteEndpoint
	cfg      *config.SessionConfig
	logger   *logging.Logger

	client      *http.Client
	rangeClient *http.Client
	retrying    *retryablehttp.Client

	registry  *tempfile.Registry
	bus       *events.Bus
	processor fileops.Processor

	orchestrator *transfer.Orchestrator

	mu     sync.Mutex
	closed bool
}

// NewConnector validates endpoint and builds a Connector ready to run
// batches. A nil fileProcessor defaults to fileops.DefaultProcessor; a nil
// logger defaults to a no-op logger (spec.md section 4.1).
func NewConnector(endpoint *descriptor.RemoteEndpoint, cfg *config.SessionConfig, fileProcessor fileops.Processor, logger *logging.Logger) (*Connector, error) {
	if endpoint == nil {
		return nil, &descriptor.NoConnectorError{Reason: "nil endpoint"}
	}
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &config.SessionConfig{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if fileProcessor == nil {
		fileProcessor = fileops.DefaultProcessor{}
	}

	client, err := httpclient.CreateOptimizedClient(cfg, endpoint.Proxy, endpoint.URL)
	if err != nil {
		return nil, &descriptor.NoConnectorError{Reason: "building http client: " + err.Error()}
	}
	rangeClient, err := httpclient.CreateRangeClient(cfg, endpoint.Proxy, endpoint.URL)
	if err != nil {
		return nil, &descriptor.NoConnectorError{Reason: "building range http client: " + err.Error()}
	}

	// Non-preemptive: credentials are only ever attached after the remote
	// has actually challenged this client with a 401 (spec.md section 4.1).
	client = httpclient.WithBasicAuth(client, endpoint.Credentials)
	rangeClient = httpclient.WithBasicAuth(rangeClient, endpoint.Credentials)

	// retryablehttp drives whole-request retries for requests that aren't
	// the GET worker's own resume loop (section 4.3 already retries a
	// mid-stream break by resuming at an offset; this client retries a
	// request that never got a response at all - DNS hiccups, connection
	// refused, TLS handshake failures - and, under DefaultRetryPolicy, a
	// 429 or 5xx response other than 501, before a worker ever sees them).
	maxRetries, initialDelay, maxDelay := cfg.RetryConfig()
	retrying := retryablehttp.NewClient()
	retrying.HTTPClient = client
	retrying.Logger = nil
	retrying.RetryMax = maxRetries
	retrying.RetryWaitMin = initialDelay
	retrying.RetryWaitMax = maxDelay
	retrying.CheckRetry = retryablehttp.DefaultRetryPolicy

	registry := tempfile.NewRegistry()
	bus := events.NewBus(constants.EventBusDefaultBuffer)

	c := &Connector{
		endpoint:    endpoint,
		cfg:         cfg,
		logger:      logger,
		client:      client,
		rangeClient: rangeClient,
		retrying:    retrying,
		registry:    registry,
		bus:         bus,
		processor:   fileProcessor,
	}

	// Non-ranged requests (plain GET, HEAD, PUT, sidecar fetches) go through
	// retryablehttp so a connection that never produced a response gets
	// retried before any worker sees it; ranged GETs keep using the plain
	// rangeClient because the GET worker's own resume loop already owns
	// retry for a stream that broke mid-transfer.
	c.orchestrator = transfer.New(transfer.Deps{
		Endpoint:    endpoint,
		Config:      cfg,
		Client:      retrying.StandardClient(),
		RangeClient: rangeClient,
		Registry:    registry,
		Bus:         bus,
		Logger:      logger,
		Processor:   fileProcessor,
	})

	return c, nil
}

// Subscribe returns a channel of every transfer event published across all
// batches run by this connector, until Close.
func (c *Connector) Subscribe() <-chan events.TransferEvent {
	return c.bus.Subscribe()
}

// Get runs a batch of downloads (artifacts and metadata) and blocks until
// every descriptor is DONE, per spec.md section 4.2. Either slice may be
// nil.
func (c *Connector) Get(ctx context.Context, artifactDownloads, metadataDownloads []*descriptor.Descriptor) error {
	if err := c.checkOpen("Get"); err != nil {
		return err
	}
	return c.orchestrator.Run(ctx, append(append([]*descriptor.Descriptor{}, artifactDownloads...), metadataDownloads...), nil)
}

// Put runs a batch of uploads (artifacts and metadata) and blocks until
// every descriptor is DONE. Either slice may be nil.
func (c *Connector) Put(ctx context.Context, artifactUploads, metadataUploads []*descriptor.Descriptor) error {
	if err := c.checkOpen("Put"); err != nil {
		return err
	}
	return c.orchestrator.Run(ctx, nil, append(append([]*descriptor.Descriptor{}, artifactUploads...), metadataUploads...))
}

func (c *Connector) checkOpen(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &descriptor.IllegalStateError{Op: op}
	}
	return nil
}

// Close releases the event bus and idle connections. Idempotent, safe to
// call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.bus.Close()
	c.client.CloseIdleConnections()
	c.rangeClient.CloseIdleConnections()
	return nil
}
