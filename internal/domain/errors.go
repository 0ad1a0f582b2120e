package domain

import "errors"

// Validation errors. Operations that reject a payload leave the catalog
// untouched and surface one of these for inline display.
var (
	// ErrEmptyName rejects a blank subject or quiz rename.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrQuestionTextEmpty rejects a question whose text trims to nothing.
	ErrQuestionTextEmpty = errors.New("question text empty")
	// ErrTooFewOptions rejects an MCQ with fewer than two non-blank options.
	ErrTooFewOptions = errors.New("need at least two options")
	// ErrTooManyOptions rejects an MCQ with more than MaxOptions options.
	ErrTooManyOptions = errors.New("too many options")
	// ErrNoCorrectOption rejects an MCQ without a valid designated answer.
	ErrNoCorrectOption = errors.New("no valid correct option selected")
	// ErrDuplicateOptionID rejects a draft whose options repeat an id.
	ErrDuplicateOptionID = errors.New("duplicate option id")
	// ErrUnknownQuestionType rejects a draft whose type tag is not mcq or written.
	ErrUnknownQuestionType = errors.New("unknown question type")
)

// Not-found errors. Delete-style operations treat stale ids as silent
// no-ops; other operations surface these so transports can refresh.
var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
)

// Attempt errors guard the quiz-taking state machine transitions.
var (
	// ErrNoActiveQuiz is returned when no quiz attempt is in progress.
	ErrNoActiveQuiz = errors.New("no quiz selected")
	// ErrAttemptComplete is returned for transitions after the last question.
	ErrAttemptComplete = errors.New("quiz attempt already complete")
	// ErrAlreadySubmitted is returned when re-selecting or re-submitting an answer.
	ErrAlreadySubmitted = errors.New("answer already submitted")
	// ErrNoOptionSelected is returned when submitting without a selection.
	ErrNoOptionSelected = errors.New("no option selected")
	// ErrNotMultipleChoice is returned when submitting a written question.
	ErrNotMultipleChoice = errors.New("question has no graded options")
	// ErrAnswerRequired is returned when advancing past an unanswered MCQ.
	ErrAnswerRequired = errors.New("submit an answer first")
)

// IsValidation reports whether err is one of the payload validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrQuestionTextEmpty) ||
		errors.Is(err, ErrTooFewOptions) ||
		errors.Is(err, ErrTooManyOptions) ||
		errors.Is(err, ErrNoCorrectOption) ||
		errors.Is(err, ErrDuplicateOptionID) ||
		errors.Is(err, ErrUnknownQuestionType)
}

// IsNotFound reports whether err signals a stale or deleted id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}
