package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/gsdsync/internal/tracker"
)

const trackerScopeName = "github.com/steveyegge/gsdsync/tracker"

// InstrumentedTracker wraps a tracker.IssueTracker with OTel tracing and
// metrics. Every remote call gets a span and is counted in gsdsync.tracker.*
// metrics. Use WrapTracker to create one.
type InstrumentedTracker struct {
	inner  tracker.IssueTracker
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

// WrapTracker returns t decorated with OTel instrumentation.
// When telemetry is disabled, t is returned as-is.
func WrapTracker(t tracker.IssueTracker) tracker.IssueTracker {
	if !Enabled() {
		return t
	}
	return newInstrumentedTracker(t)
}

func newInstrumentedTracker(t tracker.IssueTracker) *InstrumentedTracker {
	m := Meter(trackerScopeName)
	ops, _ := m.Int64Counter("gsdsync.tracker.operations",
		metric.WithDescription("Total tracker API operations executed"),
	)
	dur, _ := m.Float64Histogram("gsdsync.tracker.operation.duration",
		metric.WithDescription("Tracker operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("gsdsync.tracker.errors",
		metric.WithDescription("Total tracker operation errors"),
	)
	return &InstrumentedTracker{
		inner:  t,
		tracer: Tracer(trackerScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

// op starts a span and counts the named operation.
func (s *InstrumentedTracker) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{
		attribute.String("tracker.name", s.inner.Name()),
		attribute.String("tracker.operation", name),
	}, attrs...)
	ctx, span := s.tracer.Start(ctx, "tracker."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all[:2]...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedTracker) done(ctx context.Context, span trace.Span, start time.Time, name string, err error) {
	attrs := metric.WithAttributes(attribute.String("tracker.operation", name))
	s.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func (s *InstrumentedTracker) Name() string        { return s.inner.Name() }
func (s *InstrumentedTracker) DisplayName() string { return s.inner.DisplayName() }
func (s *InstrumentedTracker) Validate() error     { return s.inner.Validate() }
func (s *InstrumentedTracker) Close() error        { return s.inner.Close() }

func (s *InstrumentedTracker) Init(ctx context.Context, cfg *tracker.Config) error {
	ctx, span, t := s.op(ctx, "Init")
	err := s.inner.Init(ctx, cfg)
	s.done(ctx, span, t, "Init", err)
	return err
}

func (s *InstrumentedTracker) QueryIssues(ctx context.Context, label string) (*tracker.IssueSet, error) {
	ctx, span, t := s.op(ctx, "QueryIssues", attribute.String("tracker.label", label))
	v, err := s.inner.QueryIssues(ctx, label)
	if err == nil {
		span.SetAttributes(attribute.Int("tracker.issue.count", v.Len()))
	}
	s.done(ctx, span, t, "QueryIssues", err)
	return v, err
}

func (s *InstrumentedTracker) CreateIssue(ctx context.Context, req tracker.IssueRequest) (int, error) {
	ctx, span, t := s.op(ctx, "CreateIssue",
		attribute.String("tracker.issue.key", tracker.LookupKey(req.Title)),
		attribute.Int("tracker.milestone", req.Milestone),
	)
	v, err := s.inner.CreateIssue(ctx, req)
	s.done(ctx, span, t, "CreateIssue", err)
	return v, err
}

func (s *InstrumentedTracker) CloseIssue(ctx context.Context, number int) error {
	ctx, span, t := s.op(ctx, "CloseIssue", attribute.Int("tracker.issue.number", number))
	err := s.inner.CloseIssue(ctx, number)
	s.done(ctx, span, t, "CloseIssue", err)
	return err
}

func (s *InstrumentedTracker) ListMilestones(ctx context.Context) ([]tracker.Milestone, error) {
	ctx, span, t := s.op(ctx, "ListMilestones")
	v, err := s.inner.ListMilestones(ctx)
	s.done(ctx, span, t, "ListMilestones", err)
	return v, err
}

func (s *InstrumentedTracker) EnsureMilestone(ctx context.Context, title, description string) (tracker.Milestone, bool, error) {
	ctx, span, t := s.op(ctx, "EnsureMilestone", attribute.String("tracker.milestone.title", title))
	m, created, err := s.inner.EnsureMilestone(ctx, title, description)
	span.SetAttributes(attribute.Bool("tracker.created", created))
	s.done(ctx, span, t, "EnsureMilestone", err)
	return m, created, err
}

func (s *InstrumentedTracker) EnsureLabels(ctx context.Context, labels []string) error {
	ctx, span, t := s.op(ctx, "EnsureLabels", attribute.StringSlice("tracker.labels", labels))
	err := s.inner.EnsureLabels(ctx, labels)
	s.done(ctx, span, t, "EnsureLabels", err)
	return err
}

func (s *InstrumentedTracker) ResolveBoard(ctx context.Context, owner, name string) (*tracker.Board, error) {
	ctx, span, t := s.op(ctx, "ResolveBoard", attribute.String("tracker.board.name", name))
	v, err := s.inner.ResolveBoard(ctx, owner, name)
	s.done(ctx, span, t, "ResolveBoard", err)
	return v, err
}

func (s *InstrumentedTracker) CreateBoard(ctx context.Context, owner, name string) (*tracker.Board, error) {
	ctx, span, t := s.op(ctx, "CreateBoard", attribute.String("tracker.board.name", name))
	v, err := s.inner.CreateBoard(ctx, owner, name)
	s.done(ctx, span, t, "CreateBoard", err)
	return v, err
}

func (s *InstrumentedTracker) LinkIssueToBoard(ctx context.Context, board *tracker.Board, number int) error {
	ctx, span, t := s.op(ctx, "LinkIssueToBoard", attribute.Int("tracker.issue.number", number))
	err := s.inner.LinkIssueToBoard(ctx, board, number)
	s.done(ctx, span, t, "LinkIssueToBoard", err)
	return err
}

// StartRun opens the span covering one sync invocation.
func StartRun(ctx context.Context, mode string, dryRun bool) (context.Context, trace.Span) {
	return Tracer("").Start(ctx, "gsdsync."+mode,
		trace.WithAttributes(
			attribute.String("gsdsync.mode", mode),
			attribute.Bool("gsdsync.dry_run", dryRun),
		),
	)
}

// RecordResult adds a finished run's counters to the gsdsync.sync.* metrics
// and annotates span with them.
func RecordResult(ctx context.Context, span trace.Span, mode string, r *tracker.SyncResult) {
	if r == nil {
		return
	}
	m := Meter("")
	items, _ := m.Int64Counter("gsdsync.sync.items",
		metric.WithDescription("Items touched by sync runs, by kind and action"),
	)
	runErrs, _ := m.Int64Counter("gsdsync.sync.errors",
		metric.WithDescription("Errors recorded by sync runs"),
	)

	counts := []struct {
		kind, action string
		n            int
	}{
		{"milestone", "created", r.MilestonesCreated},
		{"milestone", "existing", r.MilestonesExisting},
		{"issue", "created", r.IssuesCreated},
		{"issue", "existing", r.IssuesExisting},
		{"issue", "closed", r.IssuesClosed},
		{"plan", "marked_complete", r.PlansMarkedComplete},
		{"todo", "created", r.TodosSynced},
		{"todo", "existing", r.TodosExisting},
		{"board", "linked", r.BoardLinked},
	}
	for _, c := range counts {
		if c.n == 0 {
			continue
		}
		items.Add(ctx, int64(c.n), metric.WithAttributes(
			attribute.String("gsdsync.mode", mode),
			attribute.String("gsdsync.kind", c.kind),
			attribute.String("gsdsync.action", c.action),
			attribute.Bool("gsdsync.dry_run", r.DryRun),
		))
		span.SetAttributes(attribute.Int("gsdsync."+c.kind+"."+c.action, c.n))
	}
	if len(r.Errors) > 0 {
		runErrs.Add(ctx, int64(len(r.Errors)), metric.WithAttributes(attribute.String("gsdsync.mode", mode)))
		span.SetStatus(codes.Error, r.Errors[0])
	}
}
