package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/host"
	"github.com/dokzlo13/espresso-hue/internal/ledger"
)

// Invocation is a request to run an action.
type Invocation struct {
	Slug            string
	Settings        map[string]any
	TriggerData     map[string]any
	TriggerSettings map[string]any
	Source          string
}

// Result is the outcome of a run.
type Result struct {
	RunID string `json:"run_id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Invoker executes registered actions and records every run in the ledger
type Invoker struct {
	registry *Registry
	ledger   *ledger.Ledger
}

// NewInvoker creates a new action invoker. A nil ledger disables run history.
func NewInvoker(registry *Registry, l *ledger.Ledger) *Invoker {
	return &Invoker{
		registry: registry,
		ledger:   l,
	}
}

// HasAction checks if an action is registered
func (i *Invoker) HasAction(slug string) bool {
	_, exists := i.registry.Get(slug)
	return exists
}

// Invoke runs the action with its declared defaults applied to the given settings.
// The returned error is non-nil only when the action could not be started.
func (i *Invoker) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	action, exists := i.registry.Get(inv.Slug)
	if !exists {
		return Result{}, fmt.Errorf("action %q not found", inv.Slug)
	}

	desc := action.Descriptor()
	rc := host.RunContext{
		RunID:           uuid.NewString(),
		Settings:        host.WithDefaults(desc.Settings, inv.Settings),
		TriggerData:     inv.TriggerData,
		TriggerSettings: inv.TriggerSettings,
	}
	if rc.TriggerData == nil {
		rc.TriggerData = map[string]any{}
	}

	i.appendLedger(ledger.EventActionStarted, rc.RunID, inv, map[string]any{
		"settings": rc.Settings,
	})

	logger := log.With().
		Str("action", inv.Slug).
		Str("run_id", rc.RunID).
		Str("source", inv.Source).
		Logger()
	logger.Info().Msg("Running action")

	start := time.Now()
	ok, err := action.Run(ctx, rc)
	elapsed := time.Since(start)

	result := Result{RunID: rc.RunID, OK: ok && err == nil}
	if err != nil {
		result.Error = err.Error()
	}

	if !result.OK {
		event := logger.Warn()
		if err != nil {
			event = logger.Error().Err(err)
		}
		event.Dur("elapsed", elapsed).Msg("Action failed")

		payload := map[string]any{}
		if err != nil {
			payload["error"] = err.Error()
		}
		i.appendLedger(ledger.EventActionFailed, rc.RunID, inv, payload)
		return result, nil
	}

	logger.Info().Dur("elapsed", elapsed).Msg("Action completed")
	i.appendLedger(ledger.EventActionCompleted, rc.RunID, inv, nil)
	return result, nil
}

func (i *Invoker) appendLedger(eventType ledger.EventType, runID string, inv Invocation, payload map[string]any) {
	if i.ledger == nil {
		return
	}
	if err := i.ledger.Append(eventType, runID, inv.Slug, inv.Source, payload); err != nil {
		log.Error().Err(err).
			Str("run_id", runID).
			Str("event", string(eventType)).
			Msg("Failed to write ledger entry")
	}
}
