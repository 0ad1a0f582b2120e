package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"quiz-catalog-service/internal/domain"
)

func newIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestBuildQuestionWritten(t *testing.T) {
	q, err := domain.BuildQuestion(domain.QuestionDraft{
		Text: "  Explain polymorphism.  ",
		Type: domain.QuestionWritten,
		Options: []domain.OptionDraft{
			{Text: "left over from a type switch", Correct: true},
		},
	}, newIDs())
	if err != nil {
		t.Fatalf("build written: %v", err)
	}
	if q.Text != "Explain polymorphism." {
		t.Fatalf("expected trimmed text, got %q", q.Text)
	}
	if q.Options != nil || q.CorrectOptionID != "" {
		t.Fatalf("written question must drop option fields, got %+v", q)
	}
}

func TestBuildQuestionMCQ(t *testing.T) {
	q, err := domain.BuildQuestion(domain.QuestionDraft{
		Text: "2+2?",
		Type: domain.QuestionMCQ,
		Options: []domain.OptionDraft{
			{Text: "3"},
			{Text: "   "}, // blank options are dropped
			{Text: "4", Correct: true},
		},
	}, newIDs())
	if err != nil {
		t.Fatalf("build mcq: %v", err)
	}
	if len(q.Options) != 2 {
		t.Fatalf("expected blank option dropped, got %d options", len(q.Options))
	}
	correct := 0
	for _, opt := range q.Options {
		if opt.ID == q.CorrectOptionID {
			correct++
			if opt.Text != "4" {
				t.Fatalf("expected correct option text 4, got %q", opt.Text)
			}
		}
	}
	if correct != 1 {
		t.Fatalf("expected exactly one option matching correctOptionId, got %d", correct)
	}
}

func TestBuildQuestionKeepsExistingOptionIDs(t *testing.T) {
	q, err := domain.BuildQuestion(domain.QuestionDraft{
		Text: "Pick one",
		Type: domain.QuestionMCQ,
		Options: []domain.OptionDraft{
			{ID: "keep-me", Text: "first", Correct: true},
			{Text: "second"},
		},
	}, newIDs())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if q.Options[0].ID != "keep-me" {
		t.Fatalf("expected stable option id, got %q", q.Options[0].ID)
	}
	if q.Options[1].ID == "" {
		t.Fatalf("expected generated id for fresh option")
	}
	if q.CorrectOptionID != "keep-me" {
		t.Fatalf("expected correct id keep-me, got %q", q.CorrectOptionID)
	}
}

func TestBuildQuestionRejectsDuplicateOptionIDs(t *testing.T) {
	// Two options sharing an id would leave the recorded answer matching
	// more than one option; the draft must be rejected outright.
	_, err := domain.BuildQuestion(domain.QuestionDraft{
		Text: "Pick one",
		Type: domain.QuestionMCQ,
		Options: []domain.OptionDraft{
			{ID: "dup", Text: "a", Correct: true},
			{ID: "dup", Text: "b"},
		},
	}, newIDs())
	if !errors.Is(err, domain.ErrDuplicateOptionID) {
		t.Fatalf("expected ErrDuplicateOptionID, got %v", err)
	}
	if !domain.IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	// A minted id colliding with a supplied one is rejected the same way.
	_, err = domain.BuildQuestion(domain.QuestionDraft{
		Text: "Pick one",
		Type: domain.QuestionMCQ,
		Options: []domain.OptionDraft{
			{Text: "a", Correct: true},
			{ID: "id-1", Text: "b"},
		},
	}, newIDs())
	if !errors.Is(err, domain.ErrDuplicateOptionID) {
		t.Fatalf("expected ErrDuplicateOptionID for minted collision, got %v", err)
	}
}

func TestBuildQuestionRejections(t *testing.T) {
	cases := []struct {
		name  string
		draft domain.QuestionDraft
		want  error
	}{
		{
			name:  "empty text",
			draft: domain.QuestionDraft{Text: "   ", Type: domain.QuestionMCQ},
			want:  domain.ErrQuestionTextEmpty,
		},
		{
			name: "one option",
			draft: domain.QuestionDraft{
				Text:    "q",
				Type:    domain.QuestionMCQ,
				Options: []domain.OptionDraft{{Text: "only", Correct: true}},
			},
			want: domain.ErrTooFewOptions,
		},
		{
			name: "blank options do not count",
			draft: domain.QuestionDraft{
				Text: "q",
				Type: domain.QuestionMCQ,
				Options: []domain.OptionDraft{
					{Text: "a", Correct: true}, {Text: " "}, {Text: ""},
				},
			},
			want: domain.ErrTooFewOptions,
		},
		{
			name: "too many options",
			draft: domain.QuestionDraft{
				Text: "q",
				Type: domain.QuestionMCQ,
				Options: []domain.OptionDraft{
					{Text: "a", Correct: true}, {Text: "b"}, {Text: "c"},
					{Text: "d"}, {Text: "e"}, {Text: "f"},
				},
			},
			want: domain.ErrTooManyOptions,
		},
		{
			name: "no correct option",
			draft: domain.QuestionDraft{
				Text:    "q",
				Type:    domain.QuestionMCQ,
				Options: []domain.OptionDraft{{Text: "a"}, {Text: "b"}},
			},
			want: domain.ErrNoCorrectOption,
		},
		{
			name: "correct option blank",
			draft: domain.QuestionDraft{
				Text: "q",
				Type: domain.QuestionMCQ,
				Options: []domain.OptionDraft{
					{Text: "  ", Correct: true}, {Text: "a"}, {Text: "b"},
				},
			},
			want: domain.ErrNoCorrectOption,
		},
		{
			name:  "unknown type",
			draft: domain.QuestionDraft{Text: "q", Type: "essay"},
			want:  domain.ErrUnknownQuestionType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.BuildQuestion(tc.draft, newIDs())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !domain.IsValidation(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
		})
	}
}
