package api

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/model"
)

// ErrInvalidRequest wraps every malformed request field.
var ErrInvalidRequest = errors.New("invalid request")

func field(in *structpb.Struct, key string) (*structpb.Value, bool) {
	if in == nil {
		return nil, false
	}
	v, ok := in.GetFields()[key]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

// requireNumber reads a finite number. Out-of-range coordinates are not
// rejected here; the projection normalises them.
func requireNumber(in *structpb.Struct, key string) (float64, error) {
	v, ok := field(in, key)
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidRequest, key)
	}
	return asNumber(v, key)
}

func optionalNumber(in *structpb.Struct, key string, def float64) (float64, error) {
	v, ok := field(in, key)
	if !ok {
		return def, nil
	}
	return asNumber(v, key)
}

func asNumber(v *structpb.Value, key string) (float64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidRequest, key)
	}
	if math.IsNaN(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidRequest, key)
	}
	return n.NumberValue, nil
}

func optionalString(in *structpb.Struct, key string) (string, error) {
	v, ok := field(in, key)
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidRequest, key)
	}
	return strings.TrimSpace(s.StringValue), nil
}

func requireString(in *structpb.Struct, key string) (string, error) {
	s, err := optionalString(in, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidRequest, key)
	}
	return s, nil
}

func optionalStrings(in *structpb.Struct, key string) ([]string, error) {
	v, ok := field(in, key)
	if !ok {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidRequest, key)
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a string", ErrInvalidRequest, key, i)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func optionalStruct(in *structpb.Struct, key string) (*structpb.Struct, bool, error) {
	v, ok := field(in, key)
	if !ok {
		return nil, false, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s must be an object", ErrInvalidRequest, key)
	}
	return s.StructValue, true, nil
}

func coordinateFromStruct(in *structpb.Struct) (core.GeoCoordinate, error) {
	lat, err := requireNumber(in, "lat")
	if err != nil {
		return core.GeoCoordinate{}, err
	}
	lng, err := requireNumber(in, "lng")
	if err != nil {
		return core.GeoCoordinate{}, err
	}
	return core.GeoCoordinate{Latitude: lat, Longitude: lng}, nil
}

func pointFromStruct(in *structpb.Struct) (core.SphericalPoint, error) {
	var p core.SphericalPoint
	var err error
	if p.X, err = requireNumber(in, "x"); err != nil {
		return p, err
	}
	if p.Y, err = requireNumber(in, "y"); err != nil {
		return p, err
	}
	if p.Z, err = requireNumber(in, "z"); err != nil {
		return p, err
	}
	return p, nil
}

// rotationFromStruct reads {axis_tilt, yaw, pitch} in radians. A missing
// axis_tilt means the default tilt.
func rotationFromStruct(in *structpb.Struct) (core.RotationState, error) {
	var rot core.RotationState
	var err error
	if rot.AxisTilt, err = optionalNumber(in, "axis_tilt", core.DefaultAxisTilt); err != nil {
		return rot, err
	}
	if rot.Yaw, err = optionalNumber(in, "yaw", 0); err != nil {
		return rot, err
	}
	if rot.Pitch, err = optionalNumber(in, "pitch", 0); err != nil {
		return rot, err
	}
	return rot, nil
}

func difficultyFromStruct(in *structpb.Struct) (model.Difficulty, error) {
	raw, err := optionalString(in, "difficulty")
	if err != nil {
		return "", err
	}
	d := model.Difficulty(strings.ToLower(raw))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, raw)
	}
	return d, nil
}

func rotationFields(rot core.RotationState) map[string]any {
	return map[string]any{
		"axis_tilt": rot.AxisTilt,
		"yaw":       rot.Yaw,
		"pitch":     rot.Pitch,
	}
}

func pointFields(p core.SphericalPoint) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y, "z": p.Z}
}

func coordinateFields(c core.GeoCoordinate) map[string]any {
	return map[string]any{"lat": c.Latitude, "lng": c.Longitude}
}

func countryFields(c model.Country) map[string]any {
	out := map[string]any{
		"id":      c.ID,
		"name":    c.Name,
		"name_ja": c.NameJa,
		"region":  c.Region,
		"lat":     c.Coordinate.Latitude,
		"lng":     c.Coordinate.Longitude,
	}
	if c.Subregion != "" {
		out["subregion"] = c.Subregion
	}
	if c.AreaKm2 > 0 {
		out["area_km2"] = c.AreaKm2
	}
	if c.Difficulty != "" {
		out["difficulty"] = string(c.Difficulty)
	}
	return out
}

func countryList(countries []model.Country) []any {
	out := make([]any, 0, len(countries))
	for _, c := range countries {
		out = append(out, countryFields(c))
	}
	return out
}

func facingFields(res core.FacingResult) map[string]any {
	return map[string]any{
		"found":      res.Found,
		"country_id": res.CountryID,
		"score":      res.Score,
	}
}

func toStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
