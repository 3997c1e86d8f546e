package quiz

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/globe-quiz/kb"
	"github.com/signalsfoundry/globe-quiz/model"
	"github.com/signalsfoundry/globe-quiz/timectrl"
)

type countingRecorder struct {
	mu      sync.Mutex
	correct int
	wrong   int
}

func (r *countingRecorder) RecordAnswer(correct bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if correct {
		r.correct++
	} else {
		r.wrong++
	}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func optionIDs(q Question) []string {
	ids := make([]string, 0, len(q.Options))
	for _, c := range q.Options {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestNextQuestionOffersTargetAndThreeDistractors(t *testing.T) {
	s := NewSession("s1", kb.NewDefaultCatalog(), Filter{}, seeded())

	for i := 0; i < 50; i++ {
		q, err := s.NextQuestion()
		require.NoError(t, err)
		ids := optionIDs(q)
		assert.Len(t, ids, DefaultOptionCount)
		assert.Contains(t, ids, q.Target.ID)

		seen := map[string]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate option %s", id)
			seen[id] = true
		}
	}
}

func TestNextQuestionWithSmallPool(t *testing.T) {
	cat := kb.NewCatalog()
	require.NoError(t, cat.AddCountry(model.Country{ID: "JP", Name: "Japan", Coordinate: model.GeoCoordinate{Latitude: 36, Longitude: 138}}))
	require.NoError(t, cat.AddCountry(model.Country{ID: "KR", Name: "Korea", Coordinate: model.GeoCoordinate{Latitude: 36, Longitude: 128}}))

	q, err := NewSession("s", cat, Filter{}, seeded()).NextQuestion()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"JP", "KR"}, optionIDs(q))
}

func TestWrongAnswerReportsDistance(t *testing.T) {
	cat := kb.NewCatalog()
	require.NoError(t, cat.AddCountry(model.Country{ID: "EQ0", Coordinate: model.GeoCoordinate{Latitude: 0, Longitude: 0}}))
	require.NoError(t, cat.AddCountry(model.Country{ID: "EQ90", Coordinate: model.GeoCoordinate{Latitude: 0, Longitude: 90}}))

	s := NewSession("s", cat, Filter{}, seeded())
	q, err := s.NextQuestion()
	require.NoError(t, err)
	wrong := "EQ0"
	if q.Target.ID == "EQ0" {
		wrong = "EQ90"
	}
	res, err := s.Answer(wrong)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.InDelta(t, 90, res.MissedBy, 1e-9)
}

func TestNextQuestionRespectsFilter(t *testing.T) {
	s := NewSession("s", kb.NewDefaultCatalog(), Filter{Region: "europe"}, seeded())
	for i := 0; i < 20; i++ {
		q, err := s.NextQuestion()
		require.NoError(t, err)
		for _, c := range q.Options {
			assert.Equal(t, "Europe", c.Region)
		}
	}
}

func TestAnswerScoring(t *testing.T) {
	rec := &countingRecorder{}
	s := NewSession("s", kb.NewDefaultCatalog(), Filter{}, seeded())
	s.recorder = rec

	_, err := s.Answer("JP")
	require.ErrorIs(t, err, ErrNoQuestion)

	q, err := s.NextQuestion()
	require.NoError(t, err)

	_, err = s.Answer("NOT-AN-OPTION")
	require.ErrorIs(t, err, ErrUnknownOption)

	res, err := s.Answer(q.Target.ID)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, Result{Correct: true, CorrectID: q.Target.ID, Score: 1, Answered: 1}, res)

	_, err = s.Answer(q.Target.ID)
	require.ErrorIs(t, err, ErrAlreadyAnswered)

	q, err = s.NextQuestion()
	require.NoError(t, err)
	assert.Equal(t, 2, q.Number)
	var wrong string
	for _, c := range q.Options {
		if c.ID != q.Target.ID {
			wrong = c.ID
			break
		}
	}
	res, err = s.Answer(wrong)
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, q.Target.ID, res.CorrectID)
	assert.Greater(t, res.MissedBy, 0.0)

	score, answered := s.Score()
	assert.Equal(t, 1, score)
	assert.Equal(t, 2, answered)
	assert.Equal(t, 1, rec.correct)
	assert.Equal(t, 1, rec.wrong)
}

func TestSkippedQuestionIsNotCounted(t *testing.T) {
	s := NewSession("s", kb.NewDefaultCatalog(), Filter{}, seeded())
	_, err := s.NextQuestion()
	require.NoError(t, err)
	q, err := s.NextQuestion()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Number)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, q, cur)

	_, answered := s.Score()
	assert.Zero(t, answered)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewSession("s", kb.NewDefaultCatalog(), Filter{}, seeded())
	_, ok := s.Current()
	assert.False(t, ok)

	q, err := s.NextQuestion()
	require.NoError(t, err)
	q.Options[0].ID = "MUTATED"
	cur, _ := s.Current()
	assert.NotEqual(t, "MUTATED", cur.Options[0].ID)
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(kb.NewDefaultCatalog(), WithRand(seeded))

	s, err := m.Start(Filter{Difficulty: model.DifficultyEasy})
	require.NoError(t, err)
	_, err = uuid.Parse(s.ID)
	require.NoError(t, err, "session id must be a UUID")
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	ended, err := m.End(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, ended)
	assert.Zero(t, m.Len())
	_, err = m.Get(s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.End(s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	start := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	clock := timectrl.NewTimeController(start, time.Second, timectrl.Accelerated)
	m := NewManager(kb.NewDefaultCatalog(), WithClock(clock), WithIdleTimeout(10*time.Minute))

	idle, err := m.Start(Filter{})
	require.NoError(t, err)
	assert.Equal(t, start, idle.CreatedAt)
	busy, err := m.Start(Filter{})
	require.NoError(t, err)

	// Touching busy at +8m keeps it alive past idle's deadline.
	clock.SetTime(start.Add(8 * time.Minute))
	_, err = m.Get(busy.ID)
	require.NoError(t, err)

	clock.SetTime(start.Add(11 * time.Minute))
	assert.Equal(t, 1, m.Expire(clock.Now()))
	assert.Equal(t, 1, m.Len())
	_, err = m.Get(idle.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Lookup alone drops a stale session, without waiting for a sweep.
	clock.SetTime(start.Add(30 * time.Minute))
	_, err = m.Get(busy.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, m.Len())
}

func TestManagerZeroIdleTimeoutKeepsSessions(t *testing.T) {
	start := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	clock := timectrl.NewTimeController(start, time.Second, timectrl.Accelerated)
	m := NewManager(kb.NewDefaultCatalog(), WithClock(clock), WithIdleTimeout(0))

	s, err := m.Start(Filter{})
	require.NoError(t, err)
	clock.SetTime(start.Add(24 * time.Hour))
	assert.Zero(t, m.Expire(clock.Now()))
	_, err = m.Get(s.ID)
	require.NoError(t, err)
}

func TestManagerRejectsEmptyFilter(t *testing.T) {
	m := NewManager(kb.NewDefaultCatalog())
	_, err := m.Start(Filter{Region: "Atlantis"})
	require.ErrorIs(t, err, ErrNoCountries)

	_, err = m.Start(Filter{Difficulty: "impossible"})
	require.ErrorIs(t, err, ErrNoCountries)

	_, err = NewManager(kb.NewCatalog()).Start(Filter{})
	require.ErrorIs(t, err, ErrNoCountries)
}

func TestManagerWiresRecorder(t *testing.T) {
	rec := &countingRecorder{}
	m := NewManager(kb.NewDefaultCatalog(), WithRecorder(rec))
	s, err := m.Start(Filter{})
	require.NoError(t, err)
	q, err := s.NextQuestion()
	require.NoError(t, err)
	_, err = s.Answer(q.Target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.correct)
}
