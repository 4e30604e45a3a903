package intent

import (
	"context"
	"strings"

	"github.com/PabloGalante/shopassist/internal/domain"
)

const GreetingText = "Hello! I'm here to help you find amazing products. What are you looking for today?"

// GreetingHandler answers any utterance containing "hello" or "hi",
// including words like "this" or "shipping" that merely contain "hi".
type GreetingHandler struct{}

func NewGreetingHandler() *GreetingHandler {
	return &GreetingHandler{}
}

func (h *GreetingHandler) Name() domain.Intent {
	return domain.IntentGreeting
}

func (h *GreetingHandler) Handle(_ context.Context, in Input) (Response, bool) {
	if !strings.Contains(in.Lower, "hello") && !strings.Contains(in.Lower, "hi") {
		return Response{}, false
	}
	return Response{Text: GreetingText}, true
}
