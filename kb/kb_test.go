package kb

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signalsfoundry/globe-quiz/model"
)

func testCountry(id string, lat, lng float64) model.Country {
	return model.Country{
		ID:         id,
		Name:       "Country " + id,
		Region:     "Asia",
		Coordinate: model.GeoCoordinate{Latitude: lat, Longitude: lng},
		Difficulty: model.DifficultyEasy,
	}
}

func TestAddAndGetCountry(t *testing.T) {
	store := NewCatalog()
	jp := testCountry("JP", 36, 138)
	if err := store.AddCountry(jp); err != nil {
		t.Fatalf("AddCountry error: %v", err)
	}
	got, err := store.GetCountry("JP")
	if err != nil {
		t.Fatalf("GetCountry error: %v", err)
	}
	if diff := cmp.Diff(jp, got); diff != "" {
		t.Fatalf("GetCountry mismatch (-want +got):\n%s", diff)
	}
}

func TestAddCountryDuplicate(t *testing.T) {
	store := NewCatalog()
	if err := store.AddCountry(testCountry("JP", 36, 138)); err != nil {
		t.Fatalf("first AddCountry error: %v", err)
	}
	err := store.AddCountry(testCountry("JP", 0, 0))
	if !errors.Is(err, ErrCountryExists) {
		t.Fatalf("duplicate AddCountry = %v, want ErrCountryExists", err)
	}
}

func TestAddCountryValidation(t *testing.T) {
	store := NewCatalog()
	bad := []model.Country{
		{ID: ""},
		{ID: "X", Coordinate: model.GeoCoordinate{Latitude: 91}},
		{ID: "Y", Coordinate: model.GeoCoordinate{Longitude: -200}},
		{ID: "Z", Difficulty: "impossible"},
		{ID: "W", AreaKm2: -1},
	}
	for _, c := range bad {
		if err := store.AddCountry(c); !errors.Is(err, ErrInvalidCountry) {
			t.Fatalf("AddCountry(%+v) = %v, want ErrInvalidCountry", c, err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("invalid countries were stored: len=%d", store.Len())
	}
}

func TestCountriesKeepInsertionOrder(t *testing.T) {
	store := NewCatalog()
	ids := []string{"US", "JP", "BR", "AU"}
	for i, id := range ids {
		if err := store.AddCountry(testCountry(id, float64(i), float64(i))); err != nil {
			t.Fatalf("AddCountry(%s): %v", id, err)
		}
	}
	if err := store.RemoveCountry("JP"); err != nil {
		t.Fatalf("RemoveCountry: %v", err)
	}

	var got []string
	for _, c := range store.Countries() {
		got = append(got, c.ID)
	}
	if diff := cmp.Diff([]string{"US", "BR", "AU"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.GetCountry("JP"); !errors.Is(err, ErrCountryNotFound) {
		t.Fatalf("GetCountry after remove = %v, want ErrCountryNotFound", err)
	}
	if err := store.RemoveCountry("JP"); !errors.Is(err, ErrCountryNotFound) {
		t.Fatalf("second RemoveCountry = %v, want ErrCountryNotFound", err)
	}
}

func TestFilter(t *testing.T) {
	store := NewDefaultCatalog()

	europe := store.Filter("europe", "")
	if len(europe) != 10 {
		t.Fatalf("Filter(europe) returned %d countries, want 10", len(europe))
	}
	for _, c := range europe {
		if c.Region != "Europe" {
			t.Fatalf("Filter(europe) returned %s in %s", c.ID, c.Region)
		}
	}

	hardAfrica := store.Filter("Africa", model.DifficultyHard)
	if len(hardAfrica) != 1 || hardAfrica[0].ID != "NG" {
		t.Fatalf("Filter(Africa, hard) = %+v, want [NG]", hardAfrica)
	}

	if all := store.Filter("", ""); len(all) != store.Len() {
		t.Fatalf("empty filter returned %d, want %d", len(all), store.Len())
	}
}

func TestDefaultCatalog(t *testing.T) {
	store := NewDefaultCatalog()
	if store.Len() != 38 {
		t.Fatalf("default catalog has %d countries, want 38", store.Len())
	}
	jp, err := store.GetCountry("JP")
	if err != nil {
		t.Fatalf("GetCountry(JP): %v", err)
	}
	if jp.Coordinate != (model.GeoCoordinate{Latitude: 36, Longitude: 138}) {
		t.Fatalf("JP coordinate = %+v", jp.Coordinate)
	}
	for _, c := range DefaultCountries() {
		if err := ValidateCountry(c); err != nil {
			t.Fatalf("default country %s invalid: %v", c.ID, err)
		}
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	store := NewCatalog()
	var events []Event
	unsubscribe := store.Subscribe(func(e Event) {
		events = append(events, e)
	})

	if err := store.AddCountry(testCountry("JP", 36, 138)); err != nil {
		t.Fatalf("AddCountry: %v", err)
	}
	if err := store.RemoveCountry("JP"); err != nil {
		t.Fatalf("RemoveCountry: %v", err)
	}
	unsubscribe()
	if err := store.AddCountry(testCountry("US", 38, -97)); err != nil {
		t.Fatalf("AddCountry: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventCountryAdded || events[0].Size != 1 {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1].Type != EventCountryRemoved || events[1].Size != 0 || events[1].Country.ID != "JP" {
		t.Fatalf("second event = %+v", events[1])
	}
}

func countryIDs(cs []model.Country) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestAddCountriesIsAllOrNothing(t *testing.T) {
	store := NewCatalog()
	var events []Event
	store.Subscribe(func(e Event) { events = append(events, e) })

	err := store.AddCountries([]model.Country{testCountry("JP", 36, 138), {ID: "X", Difficulty: "impossible"}})
	if !errors.Is(err, ErrInvalidCountry) {
		t.Fatalf("AddCountries = %v, want ErrInvalidCountry", err)
	}
	if store.Len() != 0 || len(events) != 0 {
		t.Fatalf("failed batch changed the catalog: len=%d events=%d", store.Len(), len(events))
	}

	if err := store.AddCountries([]model.Country{testCountry("JP", 36, 138), testCountry("KR", 36, 128)}); err != nil {
		t.Fatalf("AddCountries: %v", err)
	}
	if diff := cmp.Diff([]string{"JP", "KR"}, countryIDs(store.Countries())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if len(events) != 2 || events[0].Size != 1 || events[1].Size != 2 {
		t.Fatalf("events = %+v", events)
	}
}

func TestSubscriberCanReadCatalog(t *testing.T) {
	store := NewCatalog()
	var seen int
	store.Subscribe(func(Event) {
		seen = store.Len()
	})
	if err := store.AddCountry(testCountry("JP", 36, 138)); err != nil {
		t.Fatalf("AddCountry: %v", err)
	}
	if seen != 1 {
		t.Fatalf("subscriber saw len %d, want 1", seen)
	}
}

func TestConcurrentAdds(t *testing.T) {
	store := NewCatalog()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.AddCountry(testCountry(fmt.Sprintf("C%02d", i), 0, float64(i)))
			_ = store.Countries()
		}(i)
	}
	wg.Wait()
	if store.Len() != 50 {
		t.Fatalf("Len = %d, want 50", store.Len())
	}
}
