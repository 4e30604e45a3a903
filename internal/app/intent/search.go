package intent

import (
	"context"
	"fmt"

	"github.com/PabloGalante/shopassist/internal/app/matcher"
	"github.com/PabloGalante/shopassist/internal/domain"
)

const NoMatchText = "I couldn't find any products matching your search. " +
	"Try different keywords or check our categories: Electronics, Accessories. " +
	"Would you like me to show you our popular items instead?"

// SearchHandler is the fallback: it treats the raw utterance as a catalog query.
type SearchHandler struct{}

func NewSearchHandler() *SearchHandler {
	return &SearchHandler{}
}

func (h *SearchHandler) Name() domain.Intent {
	return domain.IntentSearch
}

func (h *SearchHandler) Handle(_ context.Context, in Input) (Response, bool) {
	found := matcher.Match(in.Utterance, in.Filters, in.Items)
	if len(found) == 0 {
		return Response{Text: NoMatchText}, true
	}
	return Response{Text: FoundText(len(found)), Items: found}, true
}

// FoundText announces n results with singular/plural agreement.
func FoundText(n int) string {
	noun := "product"
	if n > 1 {
		noun = "products"
	}
	return fmt.Sprintf("I found %d %s matching your search. Take a look:", n, noun)
}
