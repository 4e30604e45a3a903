// Package intent turns a user utterance into the assistant's reply by running
// intent handlers in priority order until one claims the utterance.
package intent

import (
	"context"
	"strings"

	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

// Input is what every handler sees.
type Input struct {
	Utterance string
	// Lower is Utterance lower-cased once for substring checks.
	Lower   string
	Filters domain.FilterCriteria
	Items   []domain.Item
}

// Response is the reply payload: text plus the items to show, possibly none.
type Response struct {
	Intent domain.Intent
	Text   string
	Items  []domain.Item
}

// Handler answers one intent. ok is false when the utterance is not for it.
type Handler interface {
	Name() domain.Intent
	Handle(ctx context.Context, in Input) (resp Response, ok bool)
}

// Router holds handlers in priority order; the last one should always answer.
type Router struct {
	handlers []Handler
}

// NewRouter builds a router from handlers in priority order.
func NewRouter(handlers ...Handler) *Router {
	return &Router{handlers: handlers}
}

// NewDefaultRouter constructs greeting -> help -> search.
func NewDefaultRouter() *Router {
	return NewRouter(
		NewGreetingHandler(),
		NewHelpHandler(),
		NewSearchHandler(),
	)
}

// Respond runs the handlers in order; the first match wins.
// The same utterance, filters and items always give the same response.
func (r *Router) Respond(
	ctx context.Context,
	utterance string,
	filters domain.FilterCriteria,
	items []domain.Item,
) Response {
	in := Input{
		Utterance: utterance,
		Lower:     strings.ToLower(utterance),
		Filters:   filters,
		Items:     items,
	}

	log := observability.LoggerFromContext(ctx)

	for _, h := range r.handlers {
		resp, ok := h.Handle(ctx, in)
		if !ok {
			continue
		}
		resp.Intent = h.Name()
		if resp.Items == nil {
			resp.Items = []domain.Item{}
		}
		log.Debug().
			Str("intent", string(resp.Intent)).
			Int("items", len(resp.Items)).
			Msg("intent resolved")
		return resp
	}

	// only reachable with a router that has no fallback handler
	log.Warn().Msg("no intent handler answered")
	return Response{Intent: domain.IntentSearch, Text: NoMatchText, Items: []domain.Item{}}
}
