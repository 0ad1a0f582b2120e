package http

import (
	"encoding/json"

	"quiz-catalog-service/internal/catalog"
	"quiz-catalog-service/internal/domain"
)

// handleUser dispatches one quiz-taking message. Every transition is
// answered with the fresh attempt state plus, while a quiz is in progress,
// the current question view.
func (h *WSHandler) handleUser(attempt *catalog.Attempt, msg inboundMessage, send chan<- outboundMessage[any]) {
	fail := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}

	switch msg.Type {
	case "selectSubject":
		var p subjectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := attempt.SelectSubject(p.SubjectID); err != nil {
			fail(err)
		}

	case "selectQuiz":
		var p quizPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := attempt.SelectQuiz(p.QuizID); err != nil {
			fail(err)
			return
		}

	case "selectOption":
		var p optionPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			fail(errInvalidPayload)
			return
		}
		if err := attempt.SelectOption(p.OptionID); err != nil {
			fail(err)
			return
		}

	case "submitAnswer":
		if _, err := attempt.SubmitAnswer(); err != nil {
			fail(err)
			return
		}

	case "nextQuestion":
		if err := attempt.NextQuestion(); err != nil {
			fail(err)
			return
		}

	default:
		fail(errUnsupportedMessage)
		return
	}

	h.sendAttemptState(attempt, send)
}

// sendAttemptState pushes the cursor view and, when a question is active,
// its user-facing shape.
func (h *WSHandler) sendAttemptState(attempt *catalog.Attempt, send chan<- outboundMessage[any]) {
	view := attempt.View()
	send <- outboundMessage[any]{Type: "attempt", Payload: view}

	question, ok := attempt.CurrentQuestion()
	if !ok {
		return
	}
	total := 0
	if quiz, found := h.service.Catalog().Quiz(view.SelectedSubjectID, view.SelectedQuizID); found {
		total = len(quiz.Questions)
	}
	send <- outboundMessage[any]{Type: "question", Payload: questionView{
		ID:      question.ID,
		Text:    question.Text,
		Type:    question.Type,
		Options: question.Options,
		Index:   view.QuestionIndex,
		Total:   total,
	}}
}

// summarize reduces a catalog snapshot to the browsable user-facing view:
// non-startable quizzes are invisible and question content is withheld.
func summarize(subjects []domain.Subject) []subjectSummary {
	out := make([]subjectSummary, 0, len(subjects))
	for _, subject := range subjects {
		summary := subjectSummary{
			ID:      subject.ID,
			Name:    subject.Name,
			Quizzes: []quizSummary{},
		}
		for _, quiz := range subject.Quizzes {
			if !quiz.Startable {
				continue
			}
			summary.Quizzes = append(summary.Quizzes, quizSummary{
				ID:            quiz.ID,
				Name:          quiz.Name,
				QuestionCount: len(quiz.Questions),
			})
		}
		out = append(out, summary)
	}
	return out
}
