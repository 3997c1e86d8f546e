package api

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/internal/globe"
	"github.com/signalsfoundry/globe-quiz/internal/logging"
	"github.com/signalsfoundry/globe-quiz/internal/quiz"
	"github.com/signalsfoundry/globe-quiz/kb"
	"github.com/signalsfoundry/globe-quiz/model"
)

// GlobeService implements GlobeServiceServer over the catalog, the globe
// driver and the quiz sessions.
//
// Request and response fields (all angles of a rotation in radians,
// coordinates in degrees):
//
//	ToSphere          {lat, lng, radius?}                -> {x, y, z}
//	FromSphere        {x, y, z}                          -> {lat, lng}
//	TargetRotation    {country_id} | {lat, lng}          -> {axis_tilt, yaw, pitch}
//	DetectFrontFacing {rotation?, country_ids?}          -> {found, country_id, score, country?}
//	ListCountries     {region?, difficulty?}             -> {countries: [...]}
//	GetGlobe          {}                                 -> {time, rotation, moving, settled, front}
//	FocusCountry      {country_id}                       -> {country, target}
//	SpinGlobe         {seconds?}                         -> {rotation, seconds?}
//	StartQuiz         {region?, difficulty?}             -> {session_id}
//	NextQuestion      {session_id}                       -> {number, target_id, options: [...]}
//	SubmitAnswer      {session_id, country_id}           -> {correct, correct_id, score, answered, missed_by}
//	EndQuiz           {session_id}                       -> {session_id, score, answered}
type GlobeService struct {
	UnimplementedGlobeServiceServer

	catalog      *kb.Catalog
	driver       *globe.Driver
	quizzes      *quiz.Manager
	log          logging.Logger
	spinDuration time.Duration
}

// MaxSpinDuration caps a single SpinGlobe request.
const MaxSpinDuration = 24 * time.Hour

// ServiceOption customises a GlobeService.
type ServiceOption func(*GlobeService)

// WithSpinDuration sets the spin length used when SpinGlobe omits seconds.
func WithSpinDuration(d time.Duration) ServiceOption {
	return func(s *GlobeService) { s.spinDuration = d }
}

// NewGlobeService wires the service. The driver and quiz manager are
// optional; methods that need them fail with FailedPrecondition.
func NewGlobeService(catalog *kb.Catalog, driver *globe.Driver, quizzes *quiz.Manager, log logging.Logger, opts ...ServiceOption) *GlobeService {
	if log == nil {
		log = logging.Noop()
	}
	s := &GlobeService{
		catalog:      catalog,
		driver:       driver,
		quizzes:      quizzes,
		log:          log,
		spinDuration: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GlobeService) logger(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return s.log
}

func (s *GlobeService) ensureCatalog() error {
	if s == nil || s.catalog == nil {
		return status.Error(codes.FailedPrecondition, "country catalog is not configured")
	}
	return nil
}

func (s *GlobeService) ensureDriver() error {
	if s == nil || s.driver == nil {
		return status.Error(codes.FailedPrecondition, "globe driver is not configured")
	}
	return nil
}

func (s *GlobeService) ensureQuiz() error {
	if s == nil || s.quizzes == nil {
		return status.Error(codes.FailedPrecondition, "quiz sessions are not configured")
	}
	return nil
}

func respond(fields map[string]any) (*structpb.Struct, error) {
	out, err := toStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ToSphere projects a coordinate. Out-of-range input is normalised, not
// rejected; a missing or non-positive radius means the unit sphere.
func (s *GlobeService) ToSphere(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := coordinateFromStruct(in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	radius, err := optionalNumber(in, "radius", 1)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return respond(pointFields(core.ToSphere(c, radius)))
}

// FromSphere inverts ToSphere.
func (s *GlobeService) FromSphere(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := pointFromStruct(in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return respond(coordinateFields(core.FromSphere(p)))
}

// TargetRotation returns the rotation that brings a country or coordinate to
// the camera.
func (s *GlobeService) TargetRotation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := optionalString(in, "country_id")
	if err != nil {
		return nil, ToStatusError(err)
	}
	var c core.GeoCoordinate
	if id != "" {
		if err := s.ensureCatalog(); err != nil {
			return nil, err
		}
		country, err := s.catalog.GetCountry(id)
		if err != nil {
			return nil, ToStatusError(err)
		}
		c = country.Coordinate
	} else if c, err = coordinateFromStruct(in); err != nil {
		return nil, ToStatusError(err)
	}
	return respond(rotationFields(core.TargetRotationFor(c)))
}

// DetectFrontFacing evaluates the given rotation, or the live globe rotation
// when none is supplied, against the catalog or a subset of it.
func (s *GlobeService) DetectFrontFacing(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureCatalog(); err != nil {
		return nil, err
	}

	rotStruct, hasRot, err := optionalStruct(in, "rotation")
	if err != nil {
		return nil, ToStatusError(err)
	}
	var rot core.RotationState
	switch {
	case hasRot:
		if rot, err = rotationFromStruct(rotStruct); err != nil {
			return nil, ToStatusError(err)
		}
	case s.driver != nil:
		rot = s.driver.Rotation()
	default:
		return nil, status.Error(codes.InvalidArgument, "rotation is required when no globe is running")
	}

	ids, err := optionalStrings(in, "country_ids")
	if err != nil {
		return nil, ToStatusError(err)
	}
	countries, err := s.subset(ids)
	if err != nil {
		return nil, ToStatusError(err)
	}

	projector := core.NewProjector()
	if s.driver != nil {
		projector = s.driver.Projector()
	}

	ctx, span := StartChildSpan(ctx, "globe.DetectFrontFacing", "catalog", "",
		attribute.Int("catalog.size", len(countries)),
		attribute.Float64("rotation.yaw", rot.Yaw),
		attribute.Float64("rotation.pitch", rot.Pitch),
	)
	res := projector.DetectFrontFacing(rot, countries)
	span.SetAttributes(attribute.String("front.country_id", res.CountryID))
	span.End()

	s.logger(ctx).Debug(ctx, "front-facing evaluated",
		logging.Bool("found", res.Found),
		logging.String("country_id", res.CountryID),
		logging.Float64("score", res.Score),
	)

	out := facingFields(res)
	if res.Found {
		for _, c := range countries {
			if c.ID == res.CountryID {
				out["country"] = countryFields(c)
				break
			}
		}
	}
	return respond(out)
}

// subset returns the catalog, or the named countries in catalog order.
func (s *GlobeService) subset(ids []string) ([]model.Country, error) {
	all := s.catalog.Countries()
	if len(ids) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := s.catalog.GetCountry(id); err != nil {
			return nil, err
		}
		want[id] = true
	}
	out := make([]model.Country, 0, len(want))
	for _, c := range all {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListCountries returns the catalog, optionally filtered.
func (s *GlobeService) ListCountries(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureCatalog(); err != nil {
		return nil, err
	}
	region, err := optionalString(in, "region")
	if err != nil {
		return nil, ToStatusError(err)
	}
	difficulty, err := difficultyFromStruct(in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return respond(map[string]any{
		"countries": countryList(s.catalog.Filter(region, difficulty)),
	})
}

// GetGlobe returns the latest frame of the live globe.
func (s *GlobeService) GetGlobe(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureDriver(); err != nil {
		return nil, err
	}
	f := s.driver.Snapshot()
	out := map[string]any{
		"rotation": rotationFields(f.Rotation),
		"moving":   f.Moving,
		"settled":  f.Settled,
		"front":    facingFields(f.Front),
	}
	if !f.Time.IsZero() {
		out["time"] = f.Time.UTC().Format(time.RFC3339Nano)
	}
	if f.Settled && f.Front.Found {
		out["country"] = countryFields(f.Country)
	}
	return respond(out)
}

// FocusCountry starts turning the live globe toward a country.
func (s *GlobeService) FocusCountry(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureDriver(); err != nil {
		return nil, err
	}
	id, err := requireString(in, "country_id")
	if err != nil {
		return nil, ToStatusError(err)
	}
	c, target, err := s.driver.FocusOn(id)
	if err != nil {
		return nil, ToStatusError(err)
	}

	s.logger(ctx).Info(ctx, "focusing globe", logging.String("country_id", c.ID))
	return respond(map[string]any{
		"country": countryFields(c),
		"target":  rotationFields(target),
	})
}

// SpinGlobe spins the live globe for the given number of seconds; zero or
// negative spins until the next focus. Longer requests are capped at
// MaxSpinDuration.
func (s *GlobeService) SpinGlobe(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureDriver(); err != nil {
		return nil, err
	}
	seconds, err := optionalNumber(in, "seconds", s.spinDuration.Seconds())
	if err != nil {
		return nil, ToStatusError(err)
	}
	var d time.Duration
	switch {
	case seconds <= 0:
	case seconds >= MaxSpinDuration.Seconds():
		d, seconds = MaxSpinDuration, MaxSpinDuration.Seconds()
	default:
		d = time.Duration(seconds * float64(time.Second))
	}
	s.driver.Spin(d)

	s.logger(ctx).Info(ctx, "spinning globe", logging.Float64("seconds", seconds))
	out := map[string]any{"rotation": rotationFields(s.driver.Rotation())}
	if d > 0 {
		out["seconds"] = seconds
	}
	return respond(out)
}

// StartQuiz opens a quiz session.
func (s *GlobeService) StartQuiz(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureQuiz(); err != nil {
		return nil, err
	}
	region, err := optionalString(in, "region")
	if err != nil {
		return nil, ToStatusError(err)
	}
	difficulty, err := difficultyFromStruct(in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	sess, err := s.quizzes.Start(quiz.Filter{Region: region, Difficulty: difficulty})
	if err != nil {
		return nil, ToStatusError(err)
	}
	s.logger(ctx).Info(ctx, "quiz started",
		logging.String("session_id", sess.ID),
		logging.String("region", region),
		logging.String("difficulty", string(difficulty)),
	)
	return respond(map[string]any{"session_id": sess.ID})
}

func (s *GlobeService) session(in *structpb.Struct) (*quiz.Session, error) {
	if err := s.ensureQuiz(); err != nil {
		return nil, err
	}
	id, err := requireString(in, "session_id")
	if err != nil {
		return nil, ToStatusError(err)
	}
	sess, err := s.quizzes.Get(id)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return sess, nil
}

// NextQuestion draws the next question of a session. target_id names the
// country whose outline the client shows.
func (s *GlobeService) NextQuestion(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	q, err := sess.NextQuestion()
	if err != nil {
		return nil, ToStatusError(err)
	}
	return respond(map[string]any{
		"number":    q.Number,
		"target_id": q.Target.ID,
		"options":   countryList(q.Options),
	})
}

// SubmitAnswer scores an answer to the active question.
func (s *GlobeService) SubmitAnswer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	id, err := requireString(in, "country_id")
	if err != nil {
		return nil, ToStatusError(err)
	}
	res, err := sess.Answer(id)
	if err != nil {
		return nil, ToStatusError(fmt.Errorf("session %s: %w", sess.ID, err))
	}
	s.logger(ctx).Debug(ctx, "quiz answer",
		logging.String("session_id", sess.ID),
		logging.Bool("correct", res.Correct),
		logging.Int("score", res.Score),
	)
	return respond(map[string]any{
		"correct":    res.Correct,
		"correct_id": res.CorrectID,
		"score":      res.Score,
		"answered":   res.Answered,
		"missed_by":  res.MissedBy,
	})
}

// EndQuiz closes a session and reports its final score. Later calls with the
// same session_id fail with NotFound.
func (s *GlobeService) EndQuiz(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureQuiz(); err != nil {
		return nil, err
	}
	id, err := requireString(in, "session_id")
	if err != nil {
		return nil, ToStatusError(err)
	}
	sess, err := s.quizzes.End(id)
	if err != nil {
		return nil, ToStatusError(err)
	}
	score, answered := sess.Score()
	s.logger(ctx).Info(ctx, "quiz ended",
		logging.String("session_id", sess.ID),
		logging.Int("score", score),
		logging.Int("answered", answered),
	)
	return respond(map[string]any{
		"session_id": sess.ID,
		"score":      score,
		"answered":   answered,
	})
}
