// Package quiz runs "which country is this?" sessions over the catalog.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/model"
)

var (
	// ErrNoCountries is returned when the session filter matches nothing.
	ErrNoCountries = errors.New("no countries match the quiz filter")
	// ErrNoQuestion is returned by Answer before the first NextQuestion.
	ErrNoQuestion = errors.New("no active question")
	// ErrAlreadyAnswered is returned for a second answer to one question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrUnknownOption is returned when the answer is not one of the options.
	ErrUnknownOption = errors.New("answer is not one of the options")
	// ErrSessionNotFound is returned by Manager lookups.
	ErrSessionNotFound = errors.New("quiz session not found")
)

// DefaultOptionCount is the target plus three distractors.
const DefaultOptionCount = 4

// DefaultIdleTimeout is how long a Manager keeps a session nobody touches.
const DefaultIdleTimeout = 30 * time.Minute

// Clock supplies the time used for session expiry.
// *timectrl.TimeController satisfies it.
type Clock interface {
	Now() time.Time
}

// CountrySource is the slice of the catalog a session draws from.
// *kb.Catalog satisfies it.
type CountrySource interface {
	Filter(region string, difficulty model.Difficulty) []model.Country
}

// AnswerRecorder receives every accepted answer.
type AnswerRecorder interface {
	RecordAnswer(correct bool)
}

// Filter narrows the countries a session asks about. Empty fields match all.
type Filter struct {
	Region     string
	Difficulty model.Difficulty
}

// Question is one round: guess Target among Options.
type Question struct {
	Number  int
	Target  model.Country
	Options []model.Country
}

// Result reports the outcome of an answer and the running score.
type Result struct {
	Correct   bool
	CorrectID string
	Score     int
	Answered  int
	MissedBy  float64 // great-circle degrees from the guess to the answer; 0 when correct
}

// Session is a single player's quiz. It is safe for concurrent use.
type Session struct {
	ID        string
	Filter    Filter
	CreatedAt time.Time

	mu       sync.Mutex
	source   CountrySource
	rng      *rand.Rand
	recorder AnswerRecorder
	options  int

	current  *Question
	answered bool
	score    int
	count    int

	lastActive time.Time // guarded by the owning Manager's mu
}

// NewSession builds a session. A nil rng seeds from the runtime source.
func NewSession(id string, source CountrySource, filter Filter, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{
		ID:        id,
		Filter:    filter,
		CreatedAt: time.Now(),
		source:    source,
		rng:       rng,
		options:   DefaultOptionCount,
	}
}

// NextQuestion picks a random target and up to three distinct distractors
// from the filtered catalog, in shuffled order. Moving on discards an
// unanswered question without scoring it.
func (s *Session) NextQuestion() (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pool []model.Country
	if s.source != nil {
		pool = s.source.Filter(s.Filter.Region, s.Filter.Difficulty)
	}
	if len(pool) == 0 {
		return Question{}, ErrNoCountries
	}

	perm := s.rng.Perm(len(pool))
	n := s.options
	if n > len(pool) {
		n = len(pool)
	}
	opts := make([]model.Country, 0, n)
	for _, idx := range perm[:n] {
		opts = append(opts, pool[idx])
	}
	target := opts[0]
	s.rng.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })

	q := &Question{Number: s.count + 1, Target: target, Options: opts}
	s.current = q
	s.answered = false
	return cloneQuestion(*q), nil
}

// Current returns the active question, if any.
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Question{}, false
	}
	return cloneQuestion(*s.current), true
}

// Answer scores countryID against the active question. Only the first answer
// to a question counts.
func (s *Session) Answer(countryID string) (Result, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return Result{}, ErrNoQuestion
	}
	if s.answered {
		s.mu.Unlock()
		return Result{}, ErrAlreadyAnswered
	}
	var guess model.Country
	offered := false
	for _, c := range s.current.Options {
		if c.ID == countryID {
			guess = c
			offered = true
			break
		}
	}
	if !offered {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOption, countryID)
	}

	correct := countryID == s.current.Target.ID
	s.answered = true
	s.count++
	if correct {
		s.score++
	}
	res := Result{Correct: correct, CorrectID: s.current.Target.ID, Score: s.score, Answered: s.count}
	if !correct {
		res.MissedBy = core.CentralAngleDegrees(guess.Coordinate, s.current.Target.Coordinate)
	}
	recorder := s.recorder
	s.mu.Unlock()

	if recorder != nil {
		recorder.RecordAnswer(correct)
	}
	return res, nil
}

// Score returns correct answers and questions answered so far.
func (s *Session) Score() (score, answered int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, s.count
}

func cloneQuestion(q Question) Question {
	q.Options = append([]model.Country(nil), q.Options...)
	return q
}

// Manager keeps live sessions keyed by UUID. Sessions idle for longer than
// the idle timeout are dropped on lookup and by Expire.
type Manager struct {
	mu       sync.Mutex
	source   CountrySource
	recorder AnswerRecorder
	newRand  func() *rand.Rand
	clock    Clock
	idle     time.Duration
	sessions map[string]*Session
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithRecorder attaches an answer recorder to every new session.
func WithRecorder(r AnswerRecorder) ManagerOption {
	return func(m *Manager) { m.recorder = r }
}

// WithRand supplies the random source for new sessions.
func WithRand(fn func() *rand.Rand) ManagerOption {
	return func(m *Manager) { m.newRand = fn }
}

// WithClock sets the clock used for CreatedAt and idle expiry.
func WithClock(c Clock) ManagerOption {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithIdleTimeout sets how long an untouched session lives. Zero disables
// expiry.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d >= 0 {
			m.idle = d
		}
	}
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// NewManager builds a Manager over source.
func NewManager(source CountrySource, opts ...ManagerOption) *Manager {
	m := &Manager{
		source:   source,
		clock:    wallClock{},
		idle:     DefaultIdleTimeout,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens a session. It fails fast when the filter matches nothing.
func (m *Manager) Start(filter Filter) (*Session, error) {
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: difficulty %q", ErrNoCountries, filter.Difficulty)
	}
	if m.source == nil || len(m.source.Filter(filter.Region, filter.Difficulty)) == 0 {
		return nil, ErrNoCountries
	}
	var rng *rand.Rand
	if m.newRand != nil {
		rng = m.newRand()
	}
	s := NewSession(uuid.NewString(), m.source, filter, rng)
	s.recorder = m.recorder
	s.CreatedAt = m.clock.Now()

	m.mu.Lock()
	s.lastActive = s.CreatedAt
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with id and marks it active. A session past its
// idle timeout is removed and reported as not found.
func (m *Manager) Get(id string) (*Session, error) {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	if m.expired(s, now) {
		delete(m.sessions, id)
		return nil, fmt.Errorf("%w: %q expired", ErrSessionNotFound, id)
	}
	s.lastActive = now
	return s, nil
}

// End removes a session and returns it for a final score.
func (m *Manager) End(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return s, nil
}

// Expire drops every session idle at now and returns how many went.
func (m *Manager) Expire(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.idle > 0 && now.Sub(s.lastActive) > m.idle
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
