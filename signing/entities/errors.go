// Package entities defines the signing pipeline's domain entities and errors.
package entities

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signpack/signpack/signing/values"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrConfiguration groups fatal configuration problems found before
	// any signing begins.
	ErrConfiguration = errors.New("configuration error")

	// ErrCredential groups fatal problems with the signing keystore.
	ErrCredential = errors.New("credential error")

	// ErrSigningFailed is returned when an external signing tool reports
	// failure.
	ErrSigningFailed = errors.New("signing failed")

	// ErrDuplicateChecksum is returned when a cache payload would be
	// overwritten.
	ErrDuplicateChecksum = errors.New("duplicate checksum")

	// ErrAlreadyExists is returned when a destination archive is already
	// present. Archives are never overwritten in place.
	ErrAlreadyExists = errors.New("destination archive already exists")

	// ErrNotInteractive is returned when a password prompt has no terminal
	// to read from.
	ErrNotInteractive = errors.New("stdin is not an interactive terminal")
)

// ConfigError reports a fatal configuration problem detected before any
// signing begins.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s [%s]", e.Reason, e.Path)
}

// Is implements error matching for errors.Is() checks.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// CredentialError reports an unusable keystore: unreadable file, wrong
// password, or a certificate that fails its sanity checks.
type CredentialError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Reason, e.Path, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Reason, e.Path)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is() checks.
func (e *CredentialError) Is(target error) bool {
	return target == ErrCredential
}

// SigningError reports an external tool invocation that failed in the
// tool's own judgment (non-zero exit status).
type SigningError struct {
	Tool     string
	Op       string // sign, verify or timestamp
	Artifact string
	ExitCode int
	Output   string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("%s %s failed for [%s] (exit %d): %s",
		e.Tool, e.Op, e.Artifact, e.ExitCode, strings.TrimSpace(e.Output))
}

// Is implements error matching for errors.Is() checks.
func (e *SigningError) Is(target error) bool {
	return target == ErrSigningFailed
}

// DuplicateChecksumError indicates a cache payload would be overwritten.
// Unreachable through LookupOrCompute; reaching it is a programming fault.
type DuplicateChecksumError struct {
	Checksum values.Checksum
}

func (e *DuplicateChecksumError) Error() string {
	return fmt.Sprintf("payload already cached for checksum %s", e.Checksum)
}

// Is implements error matching for errors.Is() checks.
func (e *DuplicateChecksumError) Is(target error) bool {
	return target == ErrDuplicateChecksum
}

// AlreadyExistsError indicates a destination archive is already present.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("destination archive already exists [%s]", e.Path)
}

// Is implements error matching for errors.Is() checks.
func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}
