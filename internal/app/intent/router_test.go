package intent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/shopassist/internal/adapters/catalog"
	"github.com/PabloGalante/shopassist/internal/app/intent"
	"github.com/PabloGalante/shopassist/internal/domain"
)

func TestGreetingWins(t *testing.T) {
	r := intent.NewDefaultRouter()
	ctx := context.Background()

	restrictive := domain.DefaultFilters()
	restrictive.SetCategory("Clothing")
	restrictive.SetInStockOnly(true)

	for _, u := range []string{"hello", "HeLLo there", "say hello and help me", "Hi", "this cable", "help, hi!"} {
		for _, f := range []domain.FilterCriteria{domain.DefaultFilters(), restrictive} {
			resp := r.Respond(ctx, u, f, catalog.DefaultItems())
			assert.Equal(t, domain.IntentGreeting, resp.Intent, u)
			assert.Equal(t, intent.GreetingText, resp.Text, u)
			assert.Empty(t, resp.Items, u)
		}
	}
}

func TestHelp(t *testing.T) {
	r := intent.NewDefaultRouter()

	for _, u := range []string{"help", "HELP ME", "can you help"} {
		resp := r.Respond(context.Background(), u, domain.DefaultFilters(), catalog.DefaultItems())
		assert.Equal(t, domain.IntentHelp, resp.Intent, u)
		assert.Equal(t, intent.HelpText, resp.Text, u)
		assert.Empty(t, resp.Items, u)
	}
}

func TestSearchSingleResult(t *testing.T) {
	r := intent.NewDefaultRouter()

	resp := r.Respond(context.Background(), "headphones", domain.DefaultFilters(), catalog.DefaultItems())
	assert.Equal(t, domain.IntentSearch, resp.Intent)
	assert.Equal(t, "I found 1 product matching your search. Take a look:", resp.Text)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Wireless Bluetooth Headphones", resp.Items[0].Name)
}

func TestSearchPluralResult(t *testing.T) {
	r := intent.NewDefaultRouter()

	resp := r.Respond(context.Background(), "electronics", domain.DefaultFilters(), catalog.DefaultItems())
	assert.Equal(t, "I found 2 products matching your search. Take a look:", resp.Text)
	assert.Len(t, resp.Items, 2)
}

func TestSearchNoMatch(t *testing.T) {
	r := intent.NewDefaultRouter()

	f := domain.DefaultFilters()
	f.SetInStockOnly(true)

	resp := r.Respond(context.Background(), "cable", f, catalog.DefaultItems())
	assert.Equal(t, domain.IntentSearch, resp.Intent)
	assert.Equal(t, intent.NoMatchText, resp.Text)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestRespondIsDeterministic(t *testing.T) {
	r := intent.NewDefaultRouter()
	items := catalog.DefaultItems()

	for _, u := range []string{"stand", "watch", "nothing here", ""} {
		first := r.Respond(context.Background(), u, domain.DefaultFilters(), items)
		second := r.Respond(context.Background(), u, domain.DefaultFilters(), items)
		assert.Equal(t, first, second, u)
	}
}

func TestRouterWithoutFallback(t *testing.T) {
	r := intent.NewRouter(intent.NewHelpHandler())

	resp := r.Respond(context.Background(), "laptop", domain.DefaultFilters(), catalog.DefaultItems())
	assert.Equal(t, intent.NoMatchText, resp.Text)
	assert.Empty(t, resp.Items)
}

func TestFoundText(t *testing.T) {
	assert.Equal(t, "I found 1 product matching your search. Take a look:", intent.FoundText(1))
	assert.Equal(t, "I found 4 products matching your search. Take a look:", intent.FoundText(4))
}
