package http

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quiz-catalog-service/internal/app"
	"quiz-catalog-service/internal/domain"
)

// WSHandler exposes the catalog over a websocket: authoring operations and
// the admin cursor for role=admin, the quiz-taking cursor for role=user.
// Catalog changes are pushed to every connected client.
type WSHandler struct {
	service       *app.CatalogService
	adminPassword string
	upgrader      websocket.Upgrader
}

func NewWSHandler(service *app.CatalogService, adminPassword string) *WSHandler {
	return &WSHandler{
		service:       service,
		adminPassword: adminPassword,
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

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type ackPayload struct {
	Op string `json:"op"`
}

type saveResultPayload struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message,omitempty"`
}

type subjectPayload struct {
	SubjectID string `json:"subjectId"`
	Name      string `json:"name"`
}

type quizPayload struct {
	SubjectID string `json:"subjectId"`
	QuizID    string `json:"quizId"`
	Name      string `json:"name"`
}

type questionPayload struct {
	SubjectID  string               `json:"subjectId"`
	QuizID     string               `json:"quizId"`
	QuestionID string               `json:"questionId"`
	Question   domain.QuestionDraft `json:"question"`
}

type optionPayload struct {
	OptionID string `json:"optionId"`
}

// questionView is the quiz-taking shape of a question: the recorded
// correct option never crosses the wire to end users.
type questionView struct {
	ID      string              `json:"id"`
	Text    string              `json:"questionText"`
	Type    domain.QuestionType `json:"type"`
	Options []domain.Option     `json:"options,omitempty"`
	Index   int                 `json:"index"`
	Total   int                 `json:"total"`
}

// quizSummary / subjectSummary form the browsable, user-facing catalog:
// only startable quizzes, no question content.
type quizSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"questionCount"`
}

type subjectSummary struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Quizzes []quizSummary `json:"quizzes"`
}

// ServeWS upgrades the request and wires the connection into the catalog.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		role = "user"
	}
	if role != "admin" && role != "user" {
		http.Error(w, "role must be admin or user", http.StatusBadRequest)
		return
	}
	if role == "admin" && h.adminPassword != "" {
		password := r.URL.Query().Get("password")
		if subtle.ConstantTimeCompare([]byte(password), []byte(h.adminPassword)) != 1 {
			http.Error(w, "invalid admin password", http.StatusUnauthorized)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log.Printf("ws connected: conn=%s role=%s", connID, role)
	defer log.Printf("ws disconnected: conn=%s", connID)

	updates, cancelUpdates := h.service.Catalog().Subscribe()
	defer cancelUpdates()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: conn=%s: %v", connID, err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snapshot, ok := <-updates:
				if !ok {
					return
				}
				var payload any = snapshot
				if role == "user" {
					payload = summarize(snapshot)
				}
				select {
				case send <- outboundMessage[any]{Type: "catalog", Payload: payload}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	var handle func(inboundMessage, chan<- outboundMessage[any])
	switch role {
	case "admin":
		session := h.service.NewAdminSession()
		defer session.Close()
		handle = func(msg inboundMessage, send chan<- outboundMessage[any]) {
			h.handleAdmin(r.Context(), session, msg, send)
		}
	default:
		attempt := h.service.NewAttempt()
		defer attempt.Close()
		handle = func(msg inboundMessage, send chan<- outboundMessage[any]) {
			h.handleUser(attempt, msg, send)
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		handle(inbound, send)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
