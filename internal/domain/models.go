package domain

// QuestionType distinguishes graded multiple-choice questions from
// free-response ones.
type QuestionType string

const (
	// QuestionMCQ is a multiple-choice question with exactly one correct option.
	QuestionMCQ QuestionType = "mcq"
	// QuestionWritten is a free-response question with no graded options.
	QuestionWritten QuestionType = "written"
)

// Option bounds for multiple-choice questions.
const (
	MinOptions = 2
	MaxOptions = 5
)

// Option is a possible answer of an MCQ question. Its ID is unique only
// within the owning question's option list and is stable across edits.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is owned by exactly one quiz. Options and CorrectOptionID are
// populated only for MCQ questions.
type Question struct {
	ID              string       `json:"id"`
	Text            string       `json:"questionText"`
	Type            QuestionType `json:"type"`
	Options         []Option     `json:"options,omitempty"`
	CorrectOptionID string       `json:"correctOptionId,omitempty"`
}

// Quiz is an ordered list of questions under a subject. Startable gates
// visibility to end users regardless of question count.
type Quiz struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
	Startable bool       `json:"isStartable"`
}

// Subject is the top-level aggregate: an ordered list of quizzes.
type Subject struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Quizzes []Quiz `json:"quizzes"`
}

// OptionDraft is the authoring-form shape of an option. A blank ID marks a
// freshly added option; Correct designates the graded answer.
type OptionDraft struct {
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuestionDraft is the tagged authoring payload for add/update. Option
// fields are ignored entirely when Type is written.
type QuestionDraft struct {
	Text    string        `json:"questionText"`
	Type    QuestionType  `json:"type"`
	Options []OptionDraft `json:"options,omitempty"`
}

// Feedback is the graded outcome shown after submitting an MCQ answer.
type Feedback string

const (
	FeedbackCorrect   Feedback = "Correct"
	FeedbackIncorrect Feedback = "Incorrect"
)

// CloneSubjects deep-copies a catalog snapshot so callers can hand it out
// without aliasing store-owned slices.
func CloneSubjects(subjects []Subject) []Subject {
	out := make([]Subject, len(subjects))
	for i, subject := range subjects {
		out[i] = CloneSubject(subject)
	}
	return out
}

// CloneSubject deep-copies a single subject tree.
func CloneSubject(subject Subject) Subject {
	clone := subject
	clone.Quizzes = make([]Quiz, len(subject.Quizzes))
	for i, quiz := range subject.Quizzes {
		clone.Quizzes[i] = CloneQuiz(quiz)
	}
	return clone
}

// CloneQuiz deep-copies a quiz and its questions.
func CloneQuiz(quiz Quiz) Quiz {
	clone := quiz
	clone.Questions = make([]Question, len(quiz.Questions))
	for i, question := range quiz.Questions {
		clone.Questions[i] = CloneQuestion(question)
	}
	return clone
}

// CloneQuestion deep-copies a question and its options.
func CloneQuestion(question Question) Question {
	clone := question
	if question.Options != nil {
		clone.Options = make([]Option, len(question.Options))
		copy(clone.Options, question.Options)
	}
	return clone
}
