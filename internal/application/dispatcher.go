package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hactl/internal/domain"
	"hactl/internal/intent"
	"hactl/internal/matching"
	"hactl/internal/servicecall"
)

type DispatcherConfig struct {
	Keyword string
	// Domains limits which entity domains take part in resolution. Empty means all.
	Domains    []string
	Resolver   matching.Config
	Classifier intent.Config
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Keyword:  domain.DefaultKeyword,
		Resolver: matching.DefaultConfig(),
	}
}

// Dispatcher turns one command line into at most one service call. It keeps no
// state between calls: every dispatch fetches its own snapshot and builds its own
// index, so concurrent dispatches need no locking.
type Dispatcher struct {
	source     EntitySource
	invoker    ServiceInvoker
	resolver   *matching.Resolver
	classifier *intent.Classifier
	keyword    string
	domains    map[string]struct{}
	recorder   Recorder
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewDispatcher(
	source EntitySource,
	invoker ServiceInvoker,
	cfg DispatcherConfig,
	recorder Recorder,
	logger *slog.Logger,
) *Dispatcher {
	if cfg.Keyword == "" {
		cfg.Keyword = domain.DefaultKeyword
	}
	if recorder == nil {
		recorder = NoopRecorder{}
	}

	var domains map[string]struct{}
	if len(cfg.Domains) > 0 {
		domains = make(map[string]struct{}, len(cfg.Domains))
		for _, d := range cfg.Domains {
			domains[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
		}
	}

	if len(cfg.Classifier.AttributeAllowList) == 0 {
		logger.Warn("set actions forward any attribute name; set classifier.attribute_allow_list to restrict them")
	}

	return &Dispatcher{
		source:     source,
		invoker:    invoker,
		resolver:   matching.NewResolver(cfg.Resolver),
		classifier: intent.NewClassifier(cfg.Classifier),
		keyword:    cfg.Keyword,
		domains:    domains,
		recorder:   recorder,
		tracer:     otel.Tracer("hactl/dispatcher"),
		logger:     logger,
	}
}

// Dispatch runs a single command. Every expected failure is reported through the
// returned outcome; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) domain.Outcome {
	start := time.Now()
	ctx, span := d.tracer.Start(ctx, "dispatch")
	defer span.End()

	out := d.dispatch(ctx, strings.TrimSpace(text))

	elapsed := time.Since(start)
	span.SetAttributes(attribute.String("dispatch.status", string(out.Status)))
	d.recorder.ObserveDispatch(out.Status, elapsed)

	attrs := []any{"command", out.Command, "status", out.Status, "elapsed", elapsed}
	if out.Call != nil {
		attrs = append(attrs, "service", out.Call.String(), "entity_id", out.Call.Payload[servicecall.KeyEntityID])
	}
	if out.OK() {
		d.logger.Info("command dispatched", attrs...)
	} else {
		d.logger.Warn("command not executed", append(attrs, "error", out.Err)...)
	}

	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, text string) domain.Outcome {
	cmd, err := domain.ParseCommandFunc(text, d.keyword, d.classifier.IsSingleAction)
	if err != nil {
		return domain.Failure(text, err)
	}

	entities, err := d.Entities(ctx)
	if err != nil {
		return domain.Failure(text, err)
	}

	match, err := d.resolver.Resolve(cmd.Target, matching.BuildIndex(entities))
	if err != nil {
		return domain.Failure(text, err)
	}
	target := match.Entity

	in, err := d.classifier.Classify(cmd.Action, target.Domain())
	if err != nil {
		out := domain.Failure(text, err)
		out.Target = &target
		return out
	}

	if in.Kind == domain.IntentQueryState {
		snap := target.Snapshot(match.Score)
		return domain.Outcome{
			Status:  domain.StatusState,
			Message: DescribeState(snap),
			Command: text,
			Target:  &target,
			Intent:  &in,
			State:   &snap,
		}
	}

	call, err := servicecall.Build(target, in)
	if err != nil {
		out := domain.Failure(text, err)
		out.Target = &target
		out.Intent = &in
		return out
	}

	if _, err := d.invoker.InvokeService(ctx, call.Domain, call.Service, call.Payload); err != nil {
		out := domain.Failure(text, &domain.CallError{Call: *call, Err: err})
		out.Message = fmt.Sprintf("Failed to control %s: %v", target.Name, err)
		out.Target = &target
		out.Intent = &in
		out.Call = call
		return out
	}

	// Cached snapshots are stale once a call changed state.
	if inv, ok := d.source.(interface{ Invalidate(context.Context) }); ok {
		inv.Invalidate(ctx)
	}

	return domain.Outcome{
		Status:  domain.StatusOK,
		Message: in.Describe(target.Name),
		Command: text,
		Target:  &target,
		Intent:  &in,
		Call:    call,
	}
}

// GetEntityState resolves name against the current snapshot and returns its state
// without classifying any action.
func (d *Dispatcher) GetEntityState(ctx context.Context, name string) (domain.StateSnapshot, error) {
	entities, err := d.Entities(ctx)
	if err != nil {
		return domain.StateSnapshot{}, err
	}

	match, err := d.resolver.Resolve(name, matching.BuildIndex(entities))
	if err != nil {
		return domain.StateSnapshot{}, err
	}
	return match.Entity.Snapshot(match.Score), nil
}

// Entities fetches a snapshot restricted to the configured domains.
func (d *Dispatcher) Entities(ctx context.Context) ([]domain.Entity, error) {
	entities, err := d.source.FetchEntities(ctx)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}
	if d.domains == nil {
		return entities, nil
	}

	filtered := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		if _, ok := d.domains[e.Domain()]; ok {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// DescribeState renders a snapshot as "<name> is <state>[ <unit>]".
func DescribeState(s domain.StateSnapshot) string {
	msg := fmt.Sprintf("%s is %s", s.Name, s.State)
	if unit, ok := s.Attributes["unit_of_measurement"].(string); ok && unit != "" {
		msg += " " + unit
	}
	return msg
}
