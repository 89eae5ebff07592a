// Package automation runs actions in response to webhook requests.
package automation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/espresso-hue/internal/actions"
	"github.com/dokzlo13/espresso-hue/internal/eventbus"
)

// Definition binds a webhook request to an action invocation.
type Definition struct {
	Name     string
	Method   string
	Path     string
	Action   string
	Settings map[string]any
	// Debounce, when positive, runs the action once per burst of requests,
	// after no request has matched for this long.
	Debounce time.Duration
}

type route struct {
	def    Definition
	method Matcher
}

// Router finds the automation for a request.
type Router struct {
	routes []route
}

// Match is a matched automation with the extracted path parameters
type Match struct {
	Definition Definition
	Params     map[string]string

	index int
}

// NewRouter creates a router. Definitions are tried in order; the first match wins.
func NewRouter(defs []Definition) *Router {
	r := &Router{routes: make([]route, 0, len(defs))}
	for _, def := range defs {
		r.routes = append(r.routes, route{def: def, method: ParseMatcher(def.Method)})
	}
	return r
}

// Find returns the first automation matching method and path, or nil.
func (r *Router) Find(method, path string) *Match {
	for i, rt := range r.routes {
		if !rt.method.Matches(method) {
			continue
		}
		if params, ok := MatchPath(rt.def.Path, path); ok {
			return &Match{Definition: rt.def, Params: params, index: i}
		}
	}
	return nil
}

// HasMatch reports whether any automation accepts the request
func (r *Router) HasMatch(method, path string) bool {
	return r.Find(method, path) != nil
}

// Invoker runs actions; satisfied by *actions.Invoker.
type Invoker interface {
	Invoke(ctx context.Context, inv actions.Invocation) (actions.Result, error)
}

// RegisterHandlers subscribes to webhook events on the bus and invokes matching automations
func RegisterHandlers(ctx context.Context, router *Router, bus *eventbus.Bus, invoker Invoker) {
	collectors := make(map[int]*quietCollector)
	for i, rt := range router.routes {
		if rt.def.Debounce <= 0 {
			continue
		}
		def := rt.def
		collectors[i] = newQuietCollector(def.Debounce, func(triggers []map[string]any) {
			if ctx.Err() != nil {
				return
			}
			// the last request wins
			trigger := triggers[len(triggers)-1]
			trigger["burst"] = len(triggers)
			invoke(ctx, invoker, def, trigger)
		})
	}

	go func() {
		<-ctx.Done()
		for _, c := range collectors {
			c.stop()
		}
	}()

	bus.Subscribe(eventbus.EventTypeWebhook, func(event eventbus.Event) {
		method, _ := event.Data["method"].(string)
		path, _ := event.Data["path"].(string)

		match := router.Find(method, path)
		if match == nil {
			log.Debug().
				Str("method", method).
				Str("path", path).
				Msg("No automation found for request")
			return
		}

		def := match.Definition
		log.Debug().
			Str("automation", def.Name).
			Str("action", def.Action).
			Interface("params", match.Params).
			Msg("Webhook event matched automation")

		trigger := make(map[string]any, len(event.Data)+1)
		for k, v := range event.Data {
			trigger[k] = v
		}
		trigger["params"] = match.Params

		if c, ok := collectors[match.index]; ok {
			c.add(trigger)
			return
		}
		invoke(ctx, invoker, def, trigger)
	})
}

func invoke(ctx context.Context, invoker Invoker, def Definition, trigger map[string]any) {
	result, err := invoker.Invoke(ctx, actions.Invocation{
		Slug:        def.Action,
		Settings:    copySettings(def.Settings),
		TriggerData: trigger,
		TriggerSettings: map[string]any{
			"name":   def.Name,
			"method": def.Method,
			"path":   def.Path,
		},
		Source: "webhook",
	})
	if err != nil {
		log.Error().Err(err).Str("automation", def.Name).Str("action", def.Action).Msg("Failed to invoke automation")
		return
	}
	if !result.OK {
		log.Warn().Str("automation", def.Name).Str("run_id", result.RunID).Msg("Automation did not complete")
	}
}

func copySettings(settings map[string]any) map[string]any {
	out := make(map[string]any, len(settings))
	for k, v := range settings {
		out[k] = v
	}
	return out
}
