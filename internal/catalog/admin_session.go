package catalog

import (
	"sync"

	"quiz-catalog-service/internal/domain"
)

// AdminSession is the transient authoring cursor: which subject and quiz
// are selected and which question, if any, is open in the editing form.
// It is never persisted. Deleting the referenced subject, quiz, or
// question resets the corresponding field.
type AdminSession struct {
	store *Store

	mu        sync.Mutex
	subjectID string
	quizID    string
	editing   *domain.Question
}

// AdminView is a snapshot of the cursor for transports to render.
type AdminView struct {
	ActiveSubjectID string           `json:"activeSubjectId,omitempty"`
	ActiveQuizID    string           `json:"activeQuizId,omitempty"`
	Editing         *domain.Question `json:"editingQuestion,omitempty"`
}

// Close unregisters the session from the store.
func (a *AdminSession) Close() {
	a.store.closeAdmin(a)
}

// View returns the current cursor state.
func (a *AdminSession) View() AdminView {
	a.mu.Lock()
	defer a.mu.Unlock()
	view := AdminView{ActiveSubjectID: a.subjectID, ActiveQuizID: a.quizID}
	if a.editing != nil {
		q := domain.CloneQuestion(*a.editing)
		view.Editing = &q
	}
	return view
}

// SelectSubject moves the cursor to a subject, clearing the quiz selection
// and any open editing form. Selecting a stale id is reported but the
// cursor still moves; the next prune clears it.
func (a *AdminSession) SelectSubject(subjectID string) error {
	_, ok := a.store.Subject(subjectID)

	a.mu.Lock()
	a.subjectID = subjectID
	a.quizID = ""
	a.editing = nil
	a.mu.Unlock()

	if !ok {
		return domain.ErrSubjectNotFound
	}
	return nil
}

// SelectQuiz moves the cursor to a quiz under the active subject, clearing
// any open editing form.
func (a *AdminSession) SelectQuiz(quizID string) error {
	a.mu.Lock()
	subjectID := a.subjectID
	a.quizID = quizID
	a.editing = nil
	a.mu.Unlock()

	if _, ok := a.store.Quiz(subjectID, quizID); !ok {
		return domain.ErrQuizNotFound
	}
	return nil
}

// StartEdit opens the editing form on a question of the active quiz.
func (a *AdminSession) StartEdit(questionID string) error {
	a.mu.Lock()
	subjectID, quizID := a.subjectID, a.quizID
	a.mu.Unlock()

	question, ok := a.store.Question(subjectID, quizID, questionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}

	a.mu.Lock()
	// The cursor may have moved while we looked the question up.
	if a.subjectID == subjectID && a.quizID == quizID {
		a.editing = &question
	}
	a.mu.Unlock()
	return nil
}

// CancelEdit closes the editing form without saving.
func (a *AdminSession) CancelEdit() {
	a.mu.Lock()
	a.editing = nil
	a.mu.Unlock()
}

// prune clears cursor fields whose referents no longer exist. Called by the
// store with its lock held; must not call back into the store.
func (a *AdminSession) prune(view refView) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.subjectID != "" && !view.hasSubject(a.subjectID) {
		a.subjectID = ""
		a.quizID = ""
		a.editing = nil
		return
	}
	if a.quizID != "" && !view.hasQuiz(a.subjectID, a.quizID) {
		a.quizID = ""
		a.editing = nil
		return
	}
	if a.editing != nil && !view.hasQuestion(a.subjectID, a.quizID, a.editing.ID) {
		a.editing = nil
	}
}
