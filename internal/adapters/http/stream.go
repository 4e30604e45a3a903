package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/shopassist/internal/app/conversation"
	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

const streamWriteTimeout = 10 * time.Second

// streamFrame is every server → client websocket frame.
type streamFrame struct {
	Type     string            `json:"type"`
	Message  *messageResponse  `json:"message,omitempty"`
	Messages []messageResponse `json:"messages,omitempty"`
	Pending  *bool             `json:"pending,omitempty"`
	Filters  *filtersResponse  `json:"filters,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// clientFrame is every client → server websocket frame:
// {"type":"submit","text":"..."} or {"type":"reset"}.
type clientFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// handleStream pushes conversation events to the client. The first frame is
// a "snapshot" of the timeline; the client may also submit utterances and
// reset the conversation over the same socket.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	ctx := r.Context()

	tl, events, cancel, err := s.svc.Watch(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := observability.LoggerFromContext(ctx).With().Str("session_id", string(id)).Logger()
	log.Info().Msg("stream opened")

	pending := tl.Pending
	filters := toFiltersResponse(tl.Session.Filters)
	if err := writeFrame(conn, streamFrame{
		Type:     "snapshot",
		Messages: toMessagesResponse(tl.Messages),
		Pending:  &pending,
		Filters:  &filters,
	}); err != nil {
		return
	}

	clientErrs := make(chan string, 8)
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var in clientFrame
			if err := json.Unmarshal(data, &in); err != nil {
				sendClientError(clientErrs, "invalid frame")
				continue
			}

			switch in.Type {
			case "submit":
				_, err = s.svc.SubmitUtterance(ctx, id, in.Text)
			case "reset":
				_, err = s.svc.Reset(ctx, id)
			default:
				err = errors.New("unknown frame type " + in.Type)
			}
			if err != nil {
				sendClientError(clientErrs, err.Error())
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeFrame(conn, toStreamFrame(ev)); err != nil {
				log.Debug().Err(err).Msg("stream write failed")
				return
			}
		case msg := <-clientErrs:
			if err := writeFrame(conn, streamFrame{Type: "error", Error: msg}); err != nil {
				return
			}
		case <-readDone:
			log.Info().Msg("stream closed by client")
			return
		}
	}
}

func toStreamFrame(ev conversation.Event) streamFrame {
	frame := streamFrame{Type: string(ev.Type)}
	switch ev.Type {
	case conversation.EventMessage, conversation.EventReset:
		m := toMessageResponse(ev.Message)
		frame.Message = &m
	case conversation.EventPending:
		p := ev.Pending
		frame.Pending = &p
	case conversation.EventFilters:
		f := toFiltersResponse(*ev.Filters)
		frame.Filters = &f
	}
	return frame
}

func writeFrame(conn *websocket.Conn, frame streamFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func sendClientError(ch chan<- string, msg string) {
	select {
	case ch <- msg:
	default:
	}
}
