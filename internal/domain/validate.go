package domain

import "strings"

// BuildQuestion validates an authoring draft and materializes the stored
// question. newID mints ids for options that arrive without one; existing
// option ids are kept so a recorded correct answer survives reordering.
// The returned question has no ID of its own; the catalog assigns it.
//
// Policy, in order:
//   - question text is trimmed and must be non-empty;
//   - written questions drop option fields entirely, whatever the form held;
//   - MCQ questions keep only options with non-blank trimmed text, need
//     between MinOptions and MaxOptions of them with pairwise distinct ids,
//     and exactly the first option flagged correct (with non-blank text)
//     becomes the answer.
func BuildQuestion(draft QuestionDraft, newID func() string) (Question, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return Question{}, ErrQuestionTextEmpty
	}

	switch draft.Type {
	case QuestionWritten:
		return Question{Text: text, Type: QuestionWritten}, nil
	case QuestionMCQ:
	default:
		return Question{}, ErrUnknownQuestionType
	}

	options := make([]Option, 0, len(draft.Options))
	seenIDs := make(map[string]struct{}, len(draft.Options))
	correctID := ""
	for _, opt := range draft.Options {
		optText := strings.TrimSpace(opt.Text)
		if optText == "" {
			continue
		}
		id := opt.ID
		if id == "" {
			id = newID()
		}
		// Repeated ids would make the recorded answer ambiguous.
		if _, dup := seenIDs[id]; dup {
			return Question{}, ErrDuplicateOptionID
		}
		seenIDs[id] = struct{}{}
		options = append(options, Option{ID: id, Text: optText})
		if opt.Correct && correctID == "" {
			correctID = id
		}
	}

	if len(options) < MinOptions {
		return Question{}, ErrTooFewOptions
	}
	if len(options) > MaxOptions {
		return Question{}, ErrTooManyOptions
	}
	if correctID == "" {
		return Question{}, ErrNoCorrectOption
	}

	return Question{
		Text:            text,
		Type:            QuestionMCQ,
		Options:         options,
		CorrectOptionID: correctID,
	}, nil
}
