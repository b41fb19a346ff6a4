package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"mathquiz/internal/app"
	"mathquiz/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
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

type answerPayload struct {
	Index int `json:"index"`
}

type namePayload struct {
	Name string `json:"name"`
}

type sessionPayload struct {
	SessionID string            `json:"sessionId"`
	Config    domain.QuizConfig `json:"config"`
}

type answerResult struct {
	Index   int  `json:"index"`
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and gives the connection its own quiz controller.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := log.With().Str("session", sessionID).Logger()

	send := make(chan outboundMessage[any], 64)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	emit := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-done:
		}
	}

	emit("session", sessionPayload{SessionID: sessionID, Config: h.service.Config()})
	ctrl, err := h.service.Open(r.Context(), sessionID, &wsView{emit: emit})
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	logger.Info().Msg("session opened")

	// The writer keeps draining after a failed write so a view blocked on send
	// cannot hold the controller lock forever.
	go func() {
		defer close(writerDone)
		failed := false
		for {
			select {
			case msg := <-send:
				if failed {
					continue
				}
				if err := conn.WriteJSON(msg); err != nil {
					logger.Warn().Err(err).Msg("ws write error")
					failed = true
					_ = conn.Close()
				}
			case <-done:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.service.Touch(sessionID)
		if err := h.dispatch(r.Context(), ctrl, inbound, emit); err != nil {
			emit("error", errorPayload{Message: err.Error()})
		}
	}

	close(done)
	h.service.Close(context.Background(), sessionID)
	<-writerDone
	logger.Info().Msg("session closed")
}

func (h *WSHandler) dispatch(ctx context.Context, ctrl *app.Controller, inbound inboundMessage, emit func(string, any)) error {
	switch inbound.Type {
	case "start":
		return ctrl.Start(ctx)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid answer payload")
		}
		correct, err := ctrl.Answer(ctx, payload.Index)
		if err != nil {
			return err
		}
		emit("answerResult", answerResult{Index: payload.Index, Correct: correct, Score: ctrl.State().Score})
		return nil
	case "name":
		var payload namePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid name payload")
		}
		return ctrl.ChangeName(payload.Name)
	case "confirmName":
		_, err := ctrl.ConfirmName(ctx)
		return err
	case "showLeaderboard":
		_, err := ctrl.ShowLeaderboard(ctx)
		return err
	case "home":
		return ctrl.BackToIntro()
	default:
		return fmt.Errorf("unsupported message type %q", inbound.Type)
	}
}

// wsView turns render calls into outbound messages.
type wsView struct {
	emit func(typ string, payload any)
}

type slotPayload struct {
	Slot  domain.Slot `json:"slot"`
	Value any         `json:"value"`
}

type screenPayload struct {
	Screen domain.Screen `json:"screen"`
}

func (v *wsView) SetSlot(slot domain.Slot, value any) {
	v.emit("slot", slotPayload{Slot: slot, Value: value})
}

func (v *wsView) ShowScreen(screen domain.Screen) {
	v.emit("screen", screenPayload{Screen: screen})
}
