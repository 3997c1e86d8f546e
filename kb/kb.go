package kb

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/model"
)

var (
	// ErrCountryExists indicates a country with the same ID is already stored.
	ErrCountryExists = errors.New("country already exists")
	// ErrCountryNotFound indicates a requested country was not found.
	ErrCountryNotFound = errors.New("country not found")
	// ErrInvalidCountry indicates a country failed validation.
	ErrInvalidCountry = errors.New("invalid country")
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventCountryAdded EventType = iota
	EventCountryRemoved
)

func (t EventType) String() string {
	switch t {
	case EventCountryAdded:
		return "added"
	case EventCountryRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers when the catalog changes.
type Event struct {
	Type    EventType
	Country model.Country
	Size    int // catalog size after the change
}

// Catalog is an in-memory, thread-safe, ordered store of quiz countries.
// Iteration order is insertion order; front-facing tie-breaks depend on it.
type Catalog struct {
	mu sync.RWMutex

	order []string
	byID  map[string]model.Country

	subs   map[int]func(Event)
	nextID int
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byID: make(map[string]model.Country),
		subs: make(map[int]func(Event)),
	}
}

// NewDefaultCatalog returns a catalog preloaded with DefaultCountries.
func NewDefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, country := range DefaultCountries() {
		// The built-in table is known-good.
		_ = c.AddCountry(country)
	}
	return c
}

// ValidateCountry checks the fields every catalog entry must carry.
func ValidateCountry(c model.Country) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidCountry)
	}
	if err := core.ValidateCoordinate(c.Coordinate); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidCountry, c.ID, err)
	}
	if !c.Difficulty.Valid() {
		return fmt.Errorf("%w: %s: unknown difficulty %q", ErrInvalidCountry, c.ID, c.Difficulty)
	}
	if c.AreaKm2 < 0 {
		return fmt.Errorf("%w: %s: negative area", ErrInvalidCountry, c.ID)
	}
	return nil
}

// AddCountry appends a country. It fails if the entry is invalid or the ID
// is already present.
func (kb *Catalog) AddCountry(c model.Country) error {
	if err := ValidateCountry(c); err != nil {
		return err
	}

	kb.mu.Lock()
	if _, exists := kb.byID[c.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrCountryExists, c.ID)
	}
	kb.byID[c.ID] = c
	kb.order = append(kb.order, c.ID)
	event := Event{Type: EventCountryAdded, Country: c, Size: len(kb.order)}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	// Notify outside the lock so subscribers may read the catalog.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// AddCountries appends every country or none of them. It fails on the first
// invalid entry or on an ID already present in the catalog or earlier in cs.
func (kb *Catalog) AddCountries(cs []model.Country) error {
	for _, c := range cs {
		if err := ValidateCountry(c); err != nil {
			return err
		}
	}

	kb.mu.Lock()
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		_, exists := kb.byID[c.ID]
		if _, dup := seen[c.ID]; exists || dup {
			kb.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrCountryExists, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	events := make([]Event, 0, len(cs))
	for _, c := range cs {
		kb.byID[c.ID] = c
		kb.order = append(kb.order, c.ID)
		events = append(events, Event{Type: EventCountryAdded, Country: c, Size: len(kb.order)})
	}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	for _, event := range events {
		for _, sub := range subs {
			sub(event)
		}
	}
	return nil
}

// RemoveCountry deletes a country by ID.
func (kb *Catalog) RemoveCountry(id string) error {
	kb.mu.Lock()
	c, ok := kb.byID[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrCountryNotFound, id)
	}
	delete(kb.byID, id)
	for i, existing := range kb.order {
		if existing == id {
			kb.order = append(kb.order[:i], kb.order[i+1:]...)
			break
		}
	}
	event := Event{Type: EventCountryRemoved, Country: c, Size: len(kb.order)}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// GetCountry returns the country with the given ID.
func (kb *Catalog) GetCountry(id string) (model.Country, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	c, ok := kb.byID[id]
	if !ok {
		return model.Country{}, fmt.Errorf("%w: %q", ErrCountryNotFound, id)
	}
	return c, nil
}

// Countries returns a snapshot of all countries in catalog order.
func (kb *Catalog) Countries() []model.Country {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]model.Country, 0, len(kb.order))
	for _, id := range kb.order {
		res = append(res, kb.byID[id])
	}
	return res
}

// Filter returns countries matching region and difficulty, in catalog order.
// Empty arguments match everything. Region comparison ignores case.
func (kb *Catalog) Filter(region string, difficulty model.Difficulty) []model.Country {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	var res []model.Country
	for _, id := range kb.order {
		c := kb.byID[id]
		if region != "" && !strings.EqualFold(c.Region, region) {
			continue
		}
		if difficulty != "" && c.Difficulty != difficulty {
			continue
		}
		res = append(res, c)
	}
	return res
}

// Len returns the number of countries.
func (kb *Catalog) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.order)
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function.
func (kb *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextID
	kb.nextID++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

func (kb *Catalog) subscribersLocked() []func(Event) {
	subs := make([]func(Event), 0, len(kb.subs))
	for i := 0; i < kb.nextID; i++ {
		if fn, ok := kb.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}
