package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNotFound is returned when a requested switch channel or device doesn't exist
var ErrNotFound = errors.New("resource not found")

// ErrInvalidInput is returned when the provided input is invalid
var ErrInvalidInput = errors.New("invalid input")

// ErrDeviceUnavailable is returned when the device transport fails: the switch
// is unreachable, rejected the token or the session is broken.
var ErrDeviceUnavailable = errors.New("device unavailable")

// ErrUnsupportedChannel is returned when a channel index is not part of the model's descriptor
var ErrUnsupportedChannel = errors.New("unsupported channel")

// ErrUnsupportedModel is returned for model identifiers outside the known switch variants
var ErrUnsupportedModel = errors.New("unsupported model")

// ErrNotReady is returned when a device could not be identified during setup
var ErrNotReady = errors.New("device not ready")

// ErrNotConfirmed is returned when the device answered a command without
// acknowledging it. The transport itself is healthy.
var ErrNotConfirmed = errors.New("command not confirmed")

// ErrInternal is returned for unexpected internal errors
var ErrInternal = errors.New("internal error")

// LogErrorAndReturn logs an error with structured context and returns it
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps an error with additional context using fmt.Errorf
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsNotFound returns true if the error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput returns true if the error is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDeviceUnavailable returns true if the error is or wraps ErrDeviceUnavailable
func IsDeviceUnavailable(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// IsUnsupportedChannel returns true if the error is or wraps ErrUnsupportedChannel
func IsUnsupportedChannel(err error) bool {
	return errors.Is(err, ErrUnsupportedChannel)
}

// IsUnsupportedModel returns true if the error is or wraps ErrUnsupportedModel
func IsUnsupportedModel(err error) bool {
	return errors.Is(err, ErrUnsupportedModel)
}

// IsNotReady returns true if the error is or wraps ErrNotReady
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

// IsNotConfirmed returns true if the error is or wraps ErrNotConfirmed
func IsNotConfirmed(err error) bool {
	return errors.Is(err, ErrNotConfirmed)
}

// NotFoundf returns a formatted ErrNotFound error
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidInputf returns a formatted ErrInvalidInput error
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// DeviceUnavailablef returns a formatted ErrDeviceUnavailable error.
// The format may itself contain a %w verb to keep the transport cause.
func DeviceUnavailablef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDeviceUnavailable)...)
}

// UnsupportedChannelf returns a formatted ErrUnsupportedChannel error
func UnsupportedChannelf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnsupportedChannel)...)
}

// UnsupportedModelf returns a formatted ErrUnsupportedModel error
func UnsupportedModelf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnsupportedModel)...)
}

// NotReadyf returns a formatted ErrNotReady error
func NotReadyf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotReady)...)
}

// NotConfirmedf returns a formatted ErrNotConfirmed error
func NotConfirmedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotConfirmed)...)
}

// Internalf returns a formatted ErrInternal error
func Internalf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternal)...)
}
