package intent

import (
	"context"
	"strings"

	"github.com/PabloGalante/shopassist/internal/domain"
)

const HelpText = "I can help you:\n" +
	"• Search for products\n" +
	"• Filter by category, price, or availability\n" +
	"• Get product recommendations\n" +
	"• Answer questions about our products\n" +
	"\n" +
	"Just tell me what you're looking for!"

type HelpHandler struct{}

func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

func (h *HelpHandler) Name() domain.Intent {
	return domain.IntentHelp
}

func (h *HelpHandler) Handle(_ context.Context, in Input) (Response, bool) {
	if !strings.Contains(in.Lower, "help") {
		return Response{}, false
	}
	return Response{Text: HelpText}, true
}
