package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Vehicle-related errors

type VehicleError struct {
	*DomainError
}

func NewVehicleError(message string) *VehicleError {
	return &VehicleError{DomainError: &DomainError{Message: message}}
}

type InvalidVehicleStatusError struct {
	*VehicleError
}

func NewInvalidVehicleStatusError(message string) *InvalidVehicleStatusError {
	return &InvalidVehicleStatusError{VehicleError: NewVehicleError(message)}
}

type InsufficientFuelError struct {
	*VehicleError
	RequiredGal  float64
	AvailableGal float64
}

func NewInsufficientFuelError(required, available float64) *InsufficientFuelError {
	return &InsufficientFuelError{
		VehicleError: NewVehicleError(fmt.Sprintf("insufficient fuel: need %.2f gal, have %.2f gal", required, available)),
		RequiredGal:  required,
		AvailableGal: available,
	}
}

type InsufficientGLPError struct {
	*VehicleError
	RequiredM3  float64
	AvailableM3 float64
}

func NewInsufficientGLPError(required, available float64) *InsufficientGLPError {
	return &InsufficientGLPError{
		VehicleError: NewVehicleError(fmt.Sprintf("insufficient GLP: need %.2f m3, have %.2f m3", required, available)),
		RequiredM3:   required,
		AvailableM3:  available,
	}
}

type InvalidVehicleDataError struct {
	*VehicleError
}

func NewInvalidVehicleDataError(message string) *InvalidVehicleDataError {
	return &InvalidVehicleDataError{VehicleError: NewVehicleError(message)}
}

// Routing errors

type PathNotFoundError struct {
	*DomainError
	From string
	To   string
}

func NewPathNotFoundError(from, to string) *PathNotFoundError {
	return &PathNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("no path from %s to %s", from, to)},
		From:        from,
		To:          to,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError signals an unknown entity id on the control surface.

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// StateConflictError signals a command that contradicts the current
// entity state (breakdown of an already-broken vehicle, repair of an
// available one). The command never mutates state.

type StateConflictError struct {
	*DomainError
}

func NewStateConflictError(message string) *StateConflictError {
	return &StateConflictError{DomainError: &DomainError{Message: message}}
}

// IsStateConflict reports whether err wraps a StateConflictError.
func IsStateConflict(err error) bool {
	var target *StateConflictError
	return errors.As(err, &target)
}
