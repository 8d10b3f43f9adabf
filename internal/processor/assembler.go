// internal/processor/assembler.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"callcenter-insights-go/internal/aggregator"
	"callcenter-insights-go/internal/dataset"
	"callcenter-insights-go/internal/history"
	"callcenter-insights-go/internal/intent"
	"callcenter-insights-go/internal/llm"
	"callcenter-insights-go/internal/logger"
	"callcenter-insights-go/internal/synthesizer"
	"callcenter-insights-go/internal/types"
)

// ErrInvalidRequest is returned for requests that can never succeed.
var ErrInvalidRequest = errors.New("invalid request")

// Source records which path produced an answer.
type Source string

const (
	SourceStructured Source = "structured"
	SourceModel      Source = "model"
	SourceFallback   Source = "fallback"
)

// freeForm labels model answers in metrics; they have no local intent.
const freeForm = "free_form"

// Request is one analytics question.
type Request struct {
	Query             string `json:"query"`
	UseStructuredData bool   `json:"useStructuredData"`
}

// Envelope is an AnalyticsResponse with identity and provenance.
type Envelope struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	types.AnalyticsResponse
	Source Source `json:"source,omitempty"`
}

// Reasoner is the remote model. *llm.Client satisfies it.
type Reasoner interface {
	Complete(ctx context.Context, messages []llm.Message) (*llm.Completion, error)
	CompleteStreaming(ctx context.Context, messages []llm.Message) (*llm.Stream, error)
}

// Observer receives counters for answered queries. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveQuery(intent, source string)
	ObserveFallback(reason string)
	ObserveLLM(outcome string, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, string)      {}
func (nopObserver) ObserveFallback(string)           {}
func (nopObserver) ObserveLLM(string, time.Duration) {}

// Assembler answers queries from the record store, asking the reasoner for
// free-form questions and degrading to the local overview when it fails.
type Assembler struct {
	store    dataset.Store
	reasoner Reasoner
	history  *history.Log
	observer Observer
	log      *logger.Logger
	now      func() time.Time
}

type Option func(*Assembler)

func WithHistory(h *history.Log) Option {
	return func(a *Assembler) { a.history = h }
}

func WithObserver(o Observer) Option {
	return func(a *Assembler) {
		if o != nil {
			a.observer = o
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(a *Assembler) { a.log = l.WithComponent("assembler") }
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler builds an assembler. A nil reasoner answers every free-form
// query with the local overview.
func NewAssembler(store dataset.Store, reasoner Reasoner, opts ...Option) *Assembler {
	if c, ok := reasoner.(*llm.Client); ok && c == nil {
		reasoner = nil
	}
	a := &Assembler{
		store:    store,
		reasoner: reasoner,
		history:  history.New(history.DefaultLimit),
		observer: nopObserver{},
		log:      logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Assembler) History() *history.Log { return a.history }

// Records returns a copy of the record set.
func (a *Assembler) Records() []types.CallRecord { return a.store.ListRecords() }

// Snapshot recomputes the analytics over the current records.
func (a *Assembler) Snapshot() aggregator.Snapshot {
	return aggregator.Compute(a.store.ListRecords())
}

// Structured classifies the query and synthesizes the local answer without
// recording it.
func (a *Assembler) Structured(query string) (intent.Intent, types.AnalyticsResponse) {
	records := a.store.ListRecords()
	in := intent.Classify(query)
	return in, synthesizer.Synthesize(in, aggregator.Compute(records), records)
}

// Handle answers one request. Free-form requests never fail because of the
// reasoner; the only error is ErrInvalidRequest.
func (a *Assembler) Handle(ctx context.Context, req Request) (*Envelope, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	records := a.store.ListRecords()
	snap := aggregator.Compute(records)

	var env *Envelope
	switch {
	case req.UseStructuredData:
		env = a.structured(query, snap, records)
	case a.reasoner == nil:
		env = a.fallback(query, snap, "disabled", nil)
	default:
		env = a.ask(ctx, query, snap, records)
	}

	a.record(env)
	return env, nil
}

func (a *Assembler) structured(query string, snap aggregator.Snapshot, records []types.CallRecord) *Envelope {
	in := intent.Classify(query)
	a.observer.ObserveQuery(string(in), string(SourceStructured))
	return a.envelope(query, synthesizer.Synthesize(in, snap, records), SourceStructured)
}

func (a *Assembler) ask(ctx context.Context, query string, snap aggregator.Snapshot, records []types.CallRecord) *Envelope {
	start := time.Now()
	completion, err := a.reasoner.Complete(ctx, llm.BuildPrompt(snap, records, query))
	if err != nil {
		reason := failureReason(err)
		a.observer.ObserveLLM(reason, time.Since(start))
		return a.fallback(query, snap, reason, err)
	}
	a.observer.ObserveLLM("ok", time.Since(start))
	return a.modelEnvelope(query, snap, completion.Content)
}

func (a *Assembler) fallback(query string, snap aggregator.Snapshot, reason string, cause error) *Envelope {
	entry := a.log.WithFields(logrus.Fields{"query": query, "reason": reason})
	if cause != nil {
		entry = entry.WithField("error", cause.Error())
	}
	entry.Warn("reasoner unavailable, answering with local overview")

	a.observer.ObserveFallback(reason)
	a.observer.ObserveQuery(string(intent.DefaultOverview), string(SourceFallback))
	return a.envelope(query, synthesizer.Overview(snap), SourceFallback)
}

// HandleStream answers a request by emitting text fragments as they become
// available. The returned envelope carries the full text that was emitted.
// An error from emit stops the stream and is returned.
func (a *Assembler) HandleStream(ctx context.Context, req Request, emit func(string) error) (*Envelope, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	records := a.store.ListRecords()
	snap := aggregator.Compute(records)

	var env *Envelope
	switch {
	case req.UseStructuredData:
		env = a.structured(query, snap, records)
	case a.reasoner == nil:
		env = a.fallback(query, snap, "disabled", nil)
	default:
		streamed, failed, err := a.stream(ctx, query, snap, records, emit)
		if err != nil {
			return nil, err
		}
		if failed == nil {
			a.record(streamed)
			return streamed, nil
		}
		env = a.fallback(query, snap, failed.reason, failed.err)
	}

	if err := emit(env.TextResponse); err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	a.record(env)
	return env, nil
}

// failure is a reasoner error that happened before any text was emitted.
type failure struct {
	reason string
	err    error
}

func (a *Assembler) stream(ctx context.Context, query string, snap aggregator.Snapshot, records []types.CallRecord, emit func(string) error) (*Envelope, *failure, error) {
	start := time.Now()
	s, err := a.reasoner.CompleteStreaming(ctx, llm.BuildPrompt(snap, records, query))
	if err != nil {
		reason := failureReason(err)
		a.observer.ObserveLLM(reason, time.Since(start))
		return nil, &failure{reason, err}, nil
	}
	defer s.Close()

	// Leading blank fragments are held back until real text arrives.
	var text strings.Builder
	started := false
	for {
		frag, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			reason := failureReason(err)
			a.observer.ObserveLLM(reason, time.Since(start))
			if !started {
				return nil, &failure{reason, err}, nil
			}
			a.log.WithError(err).WithField("query", query).Warn("stream interrupted, keeping partial answer")
			return a.modelEnvelope(query, snap, text.String()), nil, nil
		}
		text.WriteString(frag)
		out := frag
		if !started {
			if strings.TrimSpace(text.String()) == "" {
				continue
			}
			started = true
			out = text.String()
		}
		if err := emit(out); err != nil {
			return nil, nil, fmt.Errorf("emit: %w", err)
		}
	}

	if !started {
		a.observer.ObserveLLM(failureReason(llm.ErrEmptyResponse), time.Since(start))
		return nil, &failure{failureReason(llm.ErrEmptyResponse), llm.ErrEmptyResponse}, nil
	}
	a.observer.ObserveLLM("ok", time.Since(start))
	return a.modelEnvelope(query, snap, text.String()), nil, nil
}

func (a *Assembler) modelEnvelope(query string, snap aggregator.Snapshot, text string) *Envelope {
	a.observer.ObserveQuery(freeForm, string(SourceModel))
	return a.envelope(query, types.AnalyticsResponse{
		TextResponse: text,
		KPIs:         synthesizer.KPIs(snap),
	}, SourceModel)
}

func (a *Assembler) envelope(query string, resp types.AnalyticsResponse, source Source) *Envelope {
	return &Envelope{
		ID:                uuid.New().String(),
		Timestamp:         a.now().UTC(),
		Query:             query,
		AnalyticsResponse: resp,
		Source:            source,
	}
}

func (a *Assembler) record(env *Envelope) {
	a.history.Append(history.Entry{
		ID:        env.ID,
		Query:     env.Query,
		Text:      env.TextResponse,
		Timestamp: env.Timestamp,
		Payload:   *env,
	})
	a.log.WithFields(logrus.Fields{
		"id":     env.ID,
		"query":  env.Query,
		"source": env.Source,
	}).Info("query answered")
}

func validate(req Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	return nil
}

// failureReason maps a reasoner error to a short metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, llm.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, llm.ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, llm.ErrTransport):
		return "transport"
	default:
		return "error"
	}
}
