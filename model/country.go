package model

// GeoCoordinate is a location on the idealised globe, in degrees.
// Latitude is positive north, longitude positive east.
type GeoCoordinate struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lng" yaml:"lng"`
}

// Difficulty grades how hard a country is to recognise in the quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels. The empty
// value is accepted and means "unrated".
func (d Difficulty) Valid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Country is a single entry of the quiz catalog. The catalog is static
// reference data; Country values are copied, never mutated in place.
type Country struct {
	ID         string // stable short code, e.g. "JP"
	Name       string
	NameJa     string
	Region     string // e.g. "Asia", "Europe"
	Subregion  string
	Coordinate GeoCoordinate
	AreaKm2    float64
	Difficulty Difficulty
}

// DisplayName returns the name shown to players, falling back to the ID.
func (c Country) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
