package application

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"hactl/internal/domain"
)

// DefaultMaxParallel bounds how many chained commands run at once.
const DefaultMaxParallel = 4

// Assistant is the caller-facing layer on top of the Dispatcher: it splits chained
// commands, runs them and reports each outcome through the Notifier.
type Assistant struct {
	dispatcher  *Dispatcher
	notifier    Notifier
	logger      *slog.Logger
	maxParallel int
}

func NewAssistant(dispatcher *Dispatcher, notifier Notifier, maxParallel int, logger *slog.Logger) *Assistant {
	if notifier == nil {
		notifier = &NoopNotifier{}
	}
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallel
	}
	return &Assistant{
		dispatcher:  dispatcher,
		notifier:    notifier,
		logger:      logger,
		maxParallel: maxParallel,
	}
}

// Handle dispatches every "&&"-separated command in text. Commands run
// concurrently and independently; outcomes come back in input order.
func (a *Assistant) Handle(ctx context.Context, text string) []domain.Outcome {
	commands := domain.SplitChain(text)
	if len(commands) == 0 {
		commands = []string{text}
	}

	outcomes := make([]domain.Outcome, len(commands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for i, cmd := range commands {
		g.Go(func() error {
			outcomes[i] = a.dispatcher.Dispatch(gctx, cmd)
			return nil
		})
	}
	_ = g.Wait()

	for _, out := range outcomes {
		title := "Home Assistant"
		if !out.OK() {
			title = "Home Assistant: " + string(out.Status)
		}
		if err := a.notifier.Notify(ctx, title, out.Message); err != nil {
			a.logger.Error("notifying outcome", "error", err, "command", out.Command)
		}
	}

	return outcomes
}

func (a *Assistant) State(ctx context.Context, name string) (domain.StateSnapshot, error) {
	return a.dispatcher.GetEntityState(ctx, name)
}

func (a *Assistant) Entities(ctx context.Context) ([]domain.Entity, error) {
	return a.dispatcher.Entities(ctx)
}
