package api

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/internal/quiz"
	"github.com/signalsfoundry/globe-quiz/kb"
)

// ToStatusError maps catalog, quiz and request errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, kb.ErrCountryNotFound),
		errors.Is(err, quiz.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, core.ErrInvalidCoordinate),
		errors.Is(err, kb.ErrInvalidCountry),
		errors.Is(err, quiz.ErrUnknownOption):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, quiz.ErrNoQuestion),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNoCountries):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, kb.ErrCountryExists):
		return status.Error(codes.AlreadyExists, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
