package http

import (
	"context"
	"encoding/json"
	"errors"

	"quiz-catalog-service/internal/app"
	"quiz-catalog-service/internal/catalog"
)

// handleAdmin dispatches one authoring message. Validation failures and
// stale ids come back as inline error messages; delete no-ops still ack so
// the form can close.
func (h *WSHandler) handleAdmin(ctx context.Context, session *catalog.AdminSession, msg inboundMessage, send chan<- outboundMessage[any]) {
	store := h.service.Catalog()

	fail := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	ack := func() {
		send <- outboundMessage[any]{Type: "ack", Payload: ackPayload{Op: msg.Type}}
	}
	cursor := func() {
		send <- outboundMessage[any]{Type: "cursor", Payload: session.View()}
	}

	switch msg.Type {
	case "createSubject":
		var p subjectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		store.CreateSubject(p.Name)
		ack()

	case "renameSubject":
		var p subjectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := store.RenameSubject(p.SubjectID, p.Name); err != nil {
			fail(err)
			return
		}
		ack()

	case "deleteSubject":
		var p subjectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		store.DeleteSubject(p.SubjectID)
		ack()
		cursor()

	case "createQuiz":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if _, err := store.CreateQuiz(p.SubjectID, p.Name); err != nil {
			fail(err)
			return
		}
		ack()

	case "renameQuiz":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := store.RenameQuiz(p.SubjectID, p.QuizID, p.Name); err != nil {
			fail(err)
			return
		}
		ack()

	case "deleteQuiz":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		store.DeleteQuiz(p.SubjectID, p.QuizID)
		ack()
		cursor()

	case "toggleStartable":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if _, err := store.ToggleStartable(p.SubjectID, p.QuizID); err != nil {
			fail(err)
			return
		}
		ack()

	case "addQuestion":
		var p questionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if _, err := store.AddQuestion(p.SubjectID, p.QuizID, p.Question); err != nil {
			fail(err)
			return
		}
		ack()

	case "updateQuestion":
		var p questionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if _, err := store.UpdateQuestion(p.SubjectID, p.QuizID, p.QuestionID, p.Question); err != nil {
			fail(err)
			return
		}
		session.CancelEdit()
		ack()
		cursor()

	case "deleteQuestion":
		var p questionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		store.DeleteQuestion(p.SubjectID, p.QuizID, p.QuestionID)
		ack()
		cursor()

	case "reorderQuestions":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := store.ReorderQuestions(p.SubjectID, p.QuizID); err != nil {
			fail(err)
			return
		}
		ack()

	case "selectSubject":
		var p subjectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := session.SelectSubject(p.SubjectID); err != nil {
			fail(err)
		}
		cursor()

	case "selectQuiz":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := session.SelectQuiz(p.QuizID); err != nil {
			fail(err)
		}
		cursor()

	case "editQuestion":
		var p questionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := session.StartEdit(p.QuestionID); err != nil {
			fail(err)
		}
		cursor()

	case "cancelEdit":
		session.CancelEdit()
		cursor()

	case "save":
		switch err := h.service.Save(ctx); {
		case err == nil:
			send <- outboundMessage[any]{Type: "saveResult", Payload: saveResultPayload{Saved: true}}
		case errors.Is(err, app.ErrSaveInFlight):
			send <- outboundMessage[any]{Type: "saveResult", Payload: saveResultPayload{Saved: false, Message: err.Error()}}
		default:
			// The in-memory catalog stays the working state; warn only.
			send <- outboundMessage[any]{Type: "warning", Payload: errorPayload{Message: err.Error()}}
			send <- outboundMessage[any]{Type: "saveResult", Payload: saveResultPayload{Saved: false, Message: err.Error()}}
		}

	default:
		fail(errUnsupportedMessage)
	}
}

var (
	errInvalidPayload     = errors.New("invalid payload")
	errUnsupportedMessage = errors.New("unsupported message type")
)
