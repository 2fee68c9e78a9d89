package pagedata

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultErrorHandle is the handle a resolver reports when no route matched.
const DefaultErrorHandle = "_error"

// Producer names used in logs and metrics.
const (
	ProducerAppData  = "setupAppData"
	ProducerPageData = "setupPageData"
	ProducerNotFound = "onNotFound"
)

// Keys of the flattened result.
const (
	KeyAppData  = "appData"
	KeyPageData = "pageData"
	KeyHandle   = "handle"
)

const tracerName = "github.com/louisbranch/pageloader/internal/pagedata"

// Events is the bundle of lifecycle callbacks and routing metadata resolved
// for one navigation.
type Events struct {
	SetupAppData  Producer
	SetupPageData Producer
	OnNotFound    Producer
	// Handle identifies the route handler that matched. Empty means no match.
	Handle string
	// Extra fields are passed through to the Result unchanged.
	Extra map[string]any
}

// Resolver builds the Events bundle for the given call arguments.
type Resolver func(ctx context.Context, args ...any) (Events, error)

// Loader runs the producers selected for a call and returns their results.
type Loader func(ctx context.Context, args ...any) (Result, error)

// Result is the outcome of one load. A nil AppData or PageData means the
// producer was not run.
type Result struct {
	AppData  Data
	PageData Data
	Handle   string
	Extra    map[string]any
	// NotFound is the wrapped not-found probe result; nil when the probe did
	// not run.
	NotFound Data
}

// Map flattens the result into {appData, pageData, handle, ...extra}. Data
// that was not loaded is omitted. Extra keys are applied last.
func (r Result) Map() map[string]any {
	out := make(map[string]any, len(r.Extra)+3)
	if r.AppData != nil {
		out[KeyAppData] = r.AppData
	}
	if r.PageData != nil {
		out[KeyPageData] = r.PageData
	}
	out[KeyHandle] = r.Handle
	for key, value := range r.Extra {
		out[key] = value
	}
	return out
}

// MarshalJSON encodes the flattened form returned by Map.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// Option configures Orchestrate.
type Option func(*orchestrator)

// WithErrorHandle sets the handle that means "no route matched". Blank
// values keep DefaultErrorHandle.
func WithErrorHandle(handle string) Option {
	return func(o *orchestrator) {
		if handle = strings.TrimSpace(handle); handle != "" {
			o.errorHandle = handle
		}
	}
}

// WithLogger sets the logger used to report captured producer failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *orchestrator) {
		o.logger = logger
	}
}

// WithMetrics records loads on m.
func WithMetrics(m *Metrics) Option {
	return func(o *orchestrator) {
		o.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

type orchestrator struct {
	resolve     Resolver
	errorHandle string
	logger      zerolog.Logger
	metrics     *Metrics
	tracer      trace.Tracer
}

// Orchestrate returns a Loader that resolves the Events for each call and
// runs the matching producers.
//
// Matched handles always load app and page data concurrently. For unmatched
// handles (empty, or equal to the error handle) the not-found probe runs
// first and data is loaded only when its "error404" value is truthy.
// Resolver errors are returned as is; producer failures never are.
func Orchestrate(resolve Resolver, opts ...Option) Loader {
	o := &orchestrator{
		resolve:     resolve,
		errorHandle: DefaultErrorHandle,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o.load
}

func (o *orchestrator) load(ctx context.Context, args ...any) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := o.tracer.Start(ctx, "pagedata.load")
	defer span.End()

	events, err := o.resolve(ctx, args...)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	span.SetAttributes(attribute.String("pagedata.handle", events.Handle))

	started := time.Now()
	result := Result{Handle: events.Handle, Extra: events.Extra}
	branch := BranchMatched
	if o.unmatched(events.Handle) {
		branch = BranchNotFound
		result.NotFound = o.run(ctx, ProducerNotFound, events.OnNotFound)
		if Truthy(result.NotFound[NotFoundKey]) {
			branch = BranchNotFoundFallback
			result.AppData, result.PageData = o.setup(ctx, events)
		}
	} else {
		result.AppData, result.PageData = o.setup(ctx, events)
	}
	span.SetAttributes(attribute.String("pagedata.branch", branch))
	o.metrics.observeLoad(branch, time.Since(started))
	return result, nil
}

func (o *orchestrator) unmatched(handle string) bool {
	return handle == "" || handle == o.errorHandle
}

// setup runs both setup producers concurrently and waits for both.
func (o *orchestrator) setup(ctx context.Context, events Events) (Data, Data) {
	var appData, pageData Data
	var g errgroup.Group
	g.Go(func() error {
		appData = o.run(ctx, ProducerAppData, events.SetupAppData)
		return nil
	})
	g.Go(func() error {
		pageData = o.run(ctx, ProducerPageData, events.SetupPageData)
		return nil
	})
	_ = g.Wait()
	return appData, pageData
}

func (o *orchestrator) run(ctx context.Context, name string, p Producer) Data {
	data, failed := capture(ctx, p)
	if failed {
		text, _ := ErrorText(data)
		o.metrics.producerFailed(name)
		o.logger.Warn().Str("producer", name).Str("error", text).Msg("page data producer failed")
	}
	return data
}
