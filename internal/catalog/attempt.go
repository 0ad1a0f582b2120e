package catalog

import (
	"sync"

	"quiz-catalog-service/internal/domain"
)

// Attempt is the transient quiz-taking cursor for one end user: the
// selected subject and quiz, progress through the question list, and the
// per-question submission state. Never persisted; selecting a quiz always
// restarts from the first question, and a completed attempt stays complete
// until the user selects again. Deleting the referenced subject or quiz
// resets the attempt to browsing.
type Attempt struct {
	store *Store

	mu             sync.Mutex
	subjectID      string
	quizID         string
	index          int
	selectedOption string
	submitted      bool
	feedback       domain.Feedback
	complete       bool
}

// AttemptView is a snapshot of the cursor for transports to render.
type AttemptView struct {
	SelectedSubjectID string          `json:"selectedSubjectId,omitempty"`
	SelectedQuizID    string          `json:"selectedQuizId,omitempty"`
	QuestionIndex     int             `json:"currentQuestionIndex"`
	SelectedOptionID  string          `json:"selectedOptionId,omitempty"`
	Submitted         bool            `json:"isSubmitted"`
	Feedback          domain.Feedback `json:"feedback,omitempty"`
	Complete          bool            `json:"isQuizComplete"`
}

// Close unregisters the attempt from the store.
func (a *Attempt) Close() {
	a.store.closeAttempt(a)
}

// View returns the current cursor state.
func (a *Attempt) View() AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AttemptView{
		SelectedSubjectID: a.subjectID,
		SelectedQuizID:    a.quizID,
		QuestionIndex:     a.index,
		SelectedOptionID:  a.selectedOption,
		Submitted:         a.submitted,
		Feedback:          a.feedback,
		Complete:          a.complete,
	}
}

// SelectSubject puts the attempt back to browsing under a subject,
// clearing any quiz selection and progress.
func (a *Attempt) SelectSubject(subjectID string) error {
	_, ok := a.store.Subject(subjectID)

	a.mu.Lock()
	a.subjectID = subjectID
	a.resetQuizLocked("")
	a.mu.Unlock()

	if !ok {
		return domain.ErrSubjectNotFound
	}
	return nil
}

// SelectQuiz starts (or restarts) an attempt at the first question with no
// selection, no feedback, and nothing submitted, whatever the prior state.
func (a *Attempt) SelectQuiz(quizID string) error {
	a.mu.Lock()
	subjectID := a.subjectID
	a.mu.Unlock()

	// Quizzes that are not startable stay invisible to end users.
	quiz, ok := a.store.Quiz(subjectID, quizID)
	if !ok || !quiz.Startable {
		return domain.ErrQuizNotFound
	}

	a.mu.Lock()
	if a.subjectID == subjectID {
		a.resetQuizLocked(quizID)
	}
	a.mu.Unlock()
	return nil
}

// CurrentQuestion returns the question the attempt is positioned on.
func (a *Attempt) CurrentQuestion() (domain.Question, bool) {
	a.mu.Lock()
	subjectID, quizID, index, complete := a.subjectID, a.quizID, a.index, a.complete
	a.mu.Unlock()
	if quizID == "" || complete {
		return domain.Question{}, false
	}
	return a.store.QuestionAt(subjectID, quizID, index)
}

// SelectOption records the user's pick on the current MCQ question. Only
// legal while the answer has not been submitted.
func (a *Attempt) SelectOption(optionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.quizID == "" {
		return domain.ErrNoActiveQuiz
	}
	if a.complete {
		return domain.ErrAttemptComplete
	}
	if a.submitted {
		return domain.ErrAlreadySubmitted
	}
	a.selectedOption = optionID
	return nil
}

// SubmitAnswer grades the selected option against the current question's
// recorded answer. Only legal on an MCQ question with a selection that has
// not been submitted yet; written questions have no submit step.
func (a *Attempt) SubmitAnswer() (domain.Feedback, error) {
	a.mu.Lock()
	subjectID, quizID, index := a.subjectID, a.quizID, a.index
	a.mu.Unlock()

	if quizID == "" {
		return "", domain.ErrNoActiveQuiz
	}
	question, ok := a.store.QuestionAt(subjectID, quizID, index)
	if !ok {
		return "", domain.ErrQuestionNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subjectID != subjectID || a.quizID != quizID || a.index != index {
		return "", domain.ErrNoActiveQuiz
	}
	if a.complete {
		return "", domain.ErrAttemptComplete
	}
	if a.submitted {
		return "", domain.ErrAlreadySubmitted
	}
	if question.Type != domain.QuestionMCQ {
		return "", domain.ErrNotMultipleChoice
	}
	if a.selectedOption == "" {
		return "", domain.ErrNoOptionSelected
	}

	if a.selectedOption == question.CorrectOptionID {
		a.feedback = domain.FeedbackCorrect
	} else {
		a.feedback = domain.FeedbackIncorrect
	}
	a.submitted = true
	return a.feedback, nil
}

// NextQuestion advances to the next question, or to the complete state
// when the current question is the last one. Legal once the answer is
// submitted, or immediately for a written question.
func (a *Attempt) NextQuestion() error {
	a.mu.Lock()
	subjectID, quizID, index := a.subjectID, a.quizID, a.index
	a.mu.Unlock()

	if quizID == "" {
		return domain.ErrNoActiveQuiz
	}
	quiz, ok := a.store.Quiz(subjectID, quizID)
	if !ok {
		return domain.ErrQuizNotFound
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.subjectID != subjectID || a.quizID != quizID || a.index != index {
		return domain.ErrNoActiveQuiz
	}
	if a.complete {
		return domain.ErrAttemptComplete
	}
	if index >= len(quiz.Questions) {
		// Nothing left to answer: an empty quiz, or the remaining
		// questions were deleted mid-attempt. Finish instead of dead-ending.
		a.complete = true
		a.selectedOption = ""
		a.submitted = false
		a.feedback = ""
		return nil
	}
	if !a.submitted && quiz.Questions[index].Type == domain.QuestionMCQ {
		return domain.ErrAnswerRequired
	}

	if index >= len(quiz.Questions)-1 {
		a.complete = true
	} else {
		a.index = index + 1
	}
	a.selectedOption = ""
	a.submitted = false
	a.feedback = ""
	return nil
}

// resetQuizLocked clears quiz selection and all per-attempt progress.
func (a *Attempt) resetQuizLocked(quizID string) {
	a.quizID = quizID
	a.index = 0
	a.selectedOption = ""
	a.submitted = false
	a.feedback = ""
	a.complete = false
}

// prune resets the attempt when its referents vanish. Called by the store
// with its lock held; must not call back into the store.
func (a *Attempt) prune(view refView) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.subjectID != "" && !view.hasSubject(a.subjectID) {
		a.subjectID = ""
		a.resetQuizLocked("")
		return
	}
	if a.quizID != "" && !view.hasQuiz(a.subjectID, a.quizID) {
		a.resetQuizLocked("")
	}
}
