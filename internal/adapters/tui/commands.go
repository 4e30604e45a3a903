package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// command is a parsed slash command typed into the input line.
type command struct {
	name string
	arg  string
}

var errUnknownCommand = errors.New("unknown command")

const commandHelp = "/category <name|all>  /min <price>  /max <price>  /stock on|off  /clear  /reset  /quit"

// parseCommand splits "/name arg..." into its parts. ok is false when the
// line is not a command at all.
func parseCommand(line string) (cmd command, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

// run applies the command to the session. quit is true for /quit.
func (c command) run(ctx context.Context, conv Conversation, id domain.SessionID) (notice string, quit bool, err error) {
	switch c.name {
	case "category", "cat":
		if c.arg == "" {
			return "", false, errors.New("usage: /category <name|all>")
		}
		_, err = conv.SetCategory(ctx, id, matchCategory(c.arg))
	case "min":
		_, err = conv.SetMinPrice(ctx, id, c.arg)
	case "max":
		_, err = conv.SetMaxPrice(ctx, id, c.arg)
	case "stock":
		switch strings.ToLower(c.arg) {
		case "on", "yes", "true":
			_, err = conv.SetInStockOnly(ctx, id, true)
		case "off", "no", "false":
			_, err = conv.SetInStockOnly(ctx, id, false)
		default:
			return "", false, errors.New("usage: /stock on|off")
		}
	case "clear":
		_, err = conv.ClearFilters(ctx, id)
	case "reset":
		_, err = conv.Reset(ctx, id)
	case "help":
		return commandHelp, false, nil
	case "quit", "exit":
		return "", true, nil
	default:
		return "", false, fmt.Errorf("%w /%s, try /help", errUnknownCommand, c.name)
	}
	return "", false, err
}

// matchCategory maps a case-insensitive name onto the listed option, so
// "/category home & garden" works. Unlisted names pass through unchanged.
func matchCategory(name string) string {
	for _, opt := range domain.CategoryOptions {
		if strings.EqualFold(opt, name) {
			return opt
		}
	}
	return name
}
