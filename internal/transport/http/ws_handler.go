package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-assessment-engine/internal/app"
)

type WSHandler struct {
	service  *app.AssessmentService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AssessmentService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type submitPayload struct {
	QuestionID string `json:"questionId"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades the request, starts a session for the requested topic and
// difficulty, and relays learner intents and engine events until the socket closes.
// Closing the socket abandons the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	difficulty := r.URL.Query().Get("difficulty")
	if topic == "" || difficulty == "" {
		http.Error(w, "missing topic or difficulty", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// The request context ends with the handler; the session outlives individual reads.
	ctx := context.WithoutCancel(r.Context())

	started, err := h.service.StartSession(ctx, topic, difficulty)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	sessionID := started.SessionID

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		h.service.Abandon(ctx, sessionID)
		return
	}

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage{Type: "started", Payload: started}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: string(ev.Type), Payload: ev}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.dispatch(ctx, sessionID, inbound); !ok {
			if !enqueue(send, writerDone, msg) {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	cancel()
	h.service.Abandon(ctx, sessionID)
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It reports false once the writer has stopped.
func enqueue(send chan<- outboundMessage, writerDone <-chan struct{}, msg outboundMessage) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

// dispatch applies one inbound intent. It returns an error message and false when
// the intent cannot be applied; state changes reach the client as session events.
func (h *WSHandler) dispatch(ctx context.Context, sessionID string, inbound inboundMessage) (outboundMessage, bool) {
	var err error
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if json.Unmarshal(inbound.Payload, &payload) != nil {
			return errorMessage("invalid select payload"), false
		}
		_, err = h.service.SelectOption(ctx, sessionID, payload.QuestionID, payload.OptionID)
	case "submit":
		var payload submitPayload
		if json.Unmarshal(inbound.Payload, &payload) != nil {
			return errorMessage("invalid submit payload"), false
		}
		_, err = h.service.SubmitAnswer(ctx, sessionID, payload.QuestionID)
	case "dismissHint":
		_, err = h.service.DismissHint(ctx, sessionID)
	case "toggleHint":
		_, err = h.service.ToggleHint(ctx, sessionID)
	case "next":
		_, err = h.service.Navigate(ctx, sessionID, app.NavigateNext, 0)
	case "previous":
		_, err = h.service.Navigate(ctx, sessionID, app.NavigatePrevious, 0)
	case "goto":
		var payload gotoPayload
		if json.Unmarshal(inbound.Payload, &payload) != nil {
			return errorMessage("invalid goto payload"), false
		}
		_, err = h.service.Navigate(ctx, sessionID, app.NavigateTo, payload.Index)
	case "restart":
		_, err = h.service.RestartSession(ctx, sessionID)
	case "end":
		_, err = h.service.EndSession(ctx, sessionID)
	default:
		return errorMessage("unsupported message type"), false
	}
	if err != nil {
		return errorMessage(err.Error()), false
	}
	return outboundMessage{}, true
}
