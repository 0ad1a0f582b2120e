// Package catalog holds the in-memory quiz catalog and the transient
// authoring/quiz-taking session state. The store is the single source of
// truth; every mutation funnels through its operation set, which preserves
// id uniqueness, tree-shaped ownership, and cascaded cursor resets.
package catalog

import (
	"fmt"
	"strings"
	"sync"

	"quiz-catalog-service/internal/domain"
)

// IDSource mints entity ids. Satisfied by identity.Generator.
type IDSource interface {
	NewID() string
}

// Store owns the ordered subject list plus the sessions and subscribers
// derived from it. All methods are safe for concurrent use.
type Store struct {
	ids IDSource

	mu          sync.RWMutex
	subjects    []domain.Subject
	admins      map[*AdminSession]struct{}
	attempts    map[*Attempt]struct{}
	subscribers map[chan []domain.Subject]struct{}
}

// NewStore returns an empty catalog.
func NewStore(ids IDSource) *Store {
	return &Store{
		ids:         ids,
		admins:      make(map[*AdminSession]struct{}),
		attempts:    make(map[*Attempt]struct{}),
		subscribers: make(map[chan []domain.Subject]struct{}),
	}
}

// Replace swaps in a freshly loaded catalog, used at bootstrap. Sessions
// pointing at ids absent from the new catalog are reset.
func (s *Store) Replace(subjects []domain.Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = domain.CloneSubjects(subjects)
	s.pruneSessionsLocked()
	s.broadcastLocked()
}

// Snapshot returns a deep copy of the whole catalog.
func (s *Store) Snapshot() []domain.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneSubjects(s.subjects)
}

// Subject returns a copy of the subject with the given id.
func (s *Store) Subject(id string) (domain.Subject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjectLocked(id)
	if !ok {
		return domain.Subject{}, false
	}
	return domain.CloneSubject(*subject), true
}

// Quiz returns a copy of the quiz under the given subject.
func (s *Store) Quiz(subjectID, quizID string) (domain.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return domain.Quiz{}, false
	}
	return domain.CloneQuiz(*quiz), true
}

// QuestionAt returns a copy of the index-th question of a quiz.
func (s *Store) QuestionAt(subjectID, quizID string, index int) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok || index < 0 || index >= len(quiz.Questions) {
		return domain.Question{}, false
	}
	return domain.CloneQuestion(quiz.Questions[index]), true
}

// Question returns a copy of a question looked up by id.
func (s *Store) Question(subjectID, quizID, questionID string) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return domain.Question{}, false
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			return domain.CloneQuestion(quiz.Questions[i]), true
		}
	}
	return domain.Question{}, false
}

// StartableQuizzes lists the quizzes of a subject visible to end users.
// A quiz that is not startable stays hidden regardless of question count.
func (s *Store) StartableQuizzes(subjectID string) ([]domain.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.subjectLocked(subjectID)
	if !ok {
		return nil, false
	}
	startable := make([]domain.Quiz, 0, len(subject.Quizzes))
	for _, quiz := range subject.Quizzes {
		if quiz.Startable {
			startable = append(startable, domain.CloneQuiz(quiz))
		}
	}
	return startable, true
}

// CreateSubject appends a subject with a generated id. A blank name falls
// back to "Subject {n+1}". Never fails.
func (s *Store) CreateSubject(name string) domain.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = trimName(name)
	if name == "" {
		name = fmt.Sprintf("Subject %d", len(s.subjects)+1)
	}
	subject := domain.Subject{
		ID:      s.ids.NewID(),
		Name:    name,
		Quizzes: []domain.Quiz{},
	}
	s.subjects = append(s.subjects, subject)
	s.broadcastLocked()
	return domain.CloneSubject(subject)
}

// RenameSubject replaces the subject name. A blank name is rejected with
// no mutation; a stale id is reported but otherwise harmless.
func (s *Store) RenameSubject(id, name string) error {
	name = trimName(name)
	if name == "" {
		return domain.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.subjectLocked(id)
	if !ok {
		return domain.ErrSubjectNotFound
	}
	subject.Name = name
	s.broadcastLocked()
	return nil
}

// DeleteSubject removes a subject and everything nested under it. A stale
// id is a no-op. Sessions referencing the subject are reset.
func (s *Store) DeleteSubject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			s.subjects = append(s.subjects[:i], s.subjects[i+1:]...)
			s.pruneSessionsLocked()
			s.broadcastLocked()
			return
		}
	}
}

// CreateQuiz appends an empty, non-startable quiz under a subject. A blank
// name falls back to "Quiz {n+1}".
func (s *Store) CreateQuiz(subjectID, name string) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject, ok := s.subjectLocked(subjectID)
	if !ok {
		return domain.Quiz{}, domain.ErrSubjectNotFound
	}
	name = trimName(name)
	if name == "" {
		name = fmt.Sprintf("Quiz %d", len(subject.Quizzes)+1)
	}
	quiz := domain.Quiz{
		ID:        s.ids.NewID(),
		Name:      name,
		Questions: []domain.Question{},
	}
	subject.Quizzes = append(subject.Quizzes, quiz)
	s.broadcastLocked()
	return domain.CloneQuiz(quiz), nil
}

// RenameQuiz replaces the quiz name, with the same blank-name rejection as
// RenameSubject.
func (s *Store) RenameQuiz(subjectID, quizID, name string) error {
	name = trimName(name)
	if name == "" {
		return domain.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Name = name
	s.broadcastLocked()
	return nil
}

// DeleteQuiz removes a quiz and its questions. A stale id is a no-op.
func (s *Store) DeleteQuiz(subjectID, quizID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.subjectLocked(subjectID)
	if !ok {
		return
	}
	for i := range subject.Quizzes {
		if subject.Quizzes[i].ID == quizID {
			subject.Quizzes = append(subject.Quizzes[:i], subject.Quizzes[i+1:]...)
			s.pruneSessionsLocked()
			s.broadcastLocked()
			return
		}
	}
}

// ToggleStartable flips end-user visibility and returns the new value.
func (s *Store) ToggleStartable(subjectID, quizID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return false, domain.ErrQuizNotFound
	}
	quiz.Startable = !quiz.Startable
	s.broadcastLocked()
	return quiz.Startable, nil
}

// AddQuestion validates the draft and appends it with a generated id.
// A rejected draft leaves the catalog untouched.
func (s *Store) AddQuestion(subjectID, quizID string, draft domain.QuestionDraft) (domain.Question, error) {
	question, err := domain.BuildQuestion(draft, s.ids.NewID)
	if err != nil {
		return domain.Question{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	question.ID = s.ids.NewID()
	quiz.Questions = append(quiz.Questions, question)
	s.broadcastLocked()
	return domain.CloneQuestion(question), nil
}

// UpdateQuestion validates the draft and replaces the question in place,
// keeping its id. Stale ids and invalid drafts leave the catalog untouched.
func (s *Store) UpdateQuestion(subjectID, quizID, questionID string, draft domain.QuestionDraft) (domain.Question, error) {
	question, err := domain.BuildQuestion(draft, s.ids.NewID)
	if err != nil {
		return domain.Question{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			question.ID = questionID
			quiz.Questions[i] = question
			s.broadcastLocked()
			return domain.CloneQuestion(question), nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

// DeleteQuestion removes a question by id. A stale id is a no-op. An admin
// session editing the question has its editing field cleared.
func (s *Store) DeleteQuestion(subjectID, quizID, questionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return
	}
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			quiz.Questions = append(quiz.Questions[:i], quiz.Questions[i+1:]...)
			s.pruneSessionsLocked()
			s.broadcastLocked()
			return
		}
	}
}

// ReorderQuestions partitions the quiz's questions so every written
// question precedes every MCQ one, preserving relative order within each
// group. A quiz with at most one question is left alone.
func (s *Store) ReorderQuestions(subjectID, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizLocked(subjectID, quizID)
	if !ok {
		return domain.ErrQuizNotFound
	}
	if len(quiz.Questions) <= 1 {
		return nil
	}

	reordered := make([]domain.Question, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if q.Type == domain.QuestionWritten {
			reordered = append(reordered, q)
		}
	}
	for _, q := range quiz.Questions {
		if q.Type != domain.QuestionWritten {
			reordered = append(reordered, q)
		}
	}
	quiz.Questions = reordered
	s.broadcastLocked()
	return nil
}

// Subscribe returns a channel of catalog snapshots, primed with the current
// one and fed on every change. The caller must invoke cancel to avoid leaks.
func (s *Store) Subscribe() (<-chan []domain.Subject, func()) {
	ch := make(chan []domain.Subject, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// Prime under the lock so a concurrent mutation's broadcast cannot
	// overtake the initial snapshot.
	ch <- domain.CloneSubjects(s.subjects)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// NewAdminSession returns a registered authoring cursor. Close it when the
// client disconnects.
func (s *Store) NewAdminSession() *AdminSession {
	session := &AdminSession{store: s}
	s.mu.Lock()
	s.admins[session] = struct{}{}
	s.mu.Unlock()
	return session
}

// NewAttempt returns a registered quiz-taking cursor. Close it when the
// client disconnects.
func (s *Store) NewAttempt() *Attempt {
	attempt := &Attempt{store: s}
	s.mu.Lock()
	s.attempts[attempt] = struct{}{}
	s.mu.Unlock()
	return attempt
}

func (s *Store) closeAdmin(session *AdminSession) {
	s.mu.Lock()
	delete(s.admins, session)
	s.mu.Unlock()
}

func (s *Store) closeAttempt(attempt *Attempt) {
	s.mu.Lock()
	delete(s.attempts, attempt)
	s.mu.Unlock()
}

// pruneSessionsLocked clears every session field whose referenced id no
// longer exists in the catalog. Invoked after every delete so the cascade
// policy lives in one place instead of at each call site.
func (s *Store) pruneSessionsLocked() {
	view := refView{subjects: s.subjects}
	for session := range s.admins {
		session.prune(view)
	}
	for attempt := range s.attempts {
		attempt.prune(view)
	}
}

func (s *Store) broadcastLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snapshot := domain.CloneSubjects(s.subjects)
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so a slow reader never blocks mutations.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (s *Store) subjectLocked(id string) (*domain.Subject, bool) {
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			return &s.subjects[i], true
		}
	}
	return nil, false
}

func (s *Store) quizLocked(subjectID, quizID string) (*domain.Quiz, bool) {
	subject, ok := s.subjectLocked(subjectID)
	if !ok {
		return nil, false
	}
	for i := range subject.Quizzes {
		if subject.Quizzes[i].ID == quizID {
			return &subject.Quizzes[i], true
		}
	}
	return nil, false
}

// refView answers existence checks for session pruning against the live
// subject slice; only valid while the store lock is held.
type refView struct {
	subjects []domain.Subject
}

func (v refView) hasSubject(id string) bool {
	for i := range v.subjects {
		if v.subjects[i].ID == id {
			return true
		}
	}
	return false
}

func (v refView) hasQuiz(subjectID, quizID string) bool {
	for i := range v.subjects {
		if v.subjects[i].ID != subjectID {
			continue
		}
		for j := range v.subjects[i].Quizzes {
			if v.subjects[i].Quizzes[j].ID == quizID {
				return true
			}
		}
	}
	return false
}

func (v refView) hasQuestion(subjectID, quizID, questionID string) bool {
	for i := range v.subjects {
		if v.subjects[i].ID != subjectID {
			continue
		}
		for j := range v.subjects[i].Quizzes {
			if v.subjects[i].Quizzes[j].ID != quizID {
				continue
			}
			for k := range v.subjects[i].Quizzes[j].Questions {
				if v.subjects[i].Quizzes[j].Questions[k].ID == questionID {
					return true
				}
			}
		}
	}
	return false
}

func trimName(name string) string {
	return strings.TrimSpace(name)
}
