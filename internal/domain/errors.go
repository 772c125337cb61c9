package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTaskType    = errors.New("unknown task type")
	ErrEmptyProcessorPool = errors.New("processor pool is empty")
	ErrAlreadyStarted     = errors.New("already started")
	ErrNotStarted         = errors.New("not started")
	ErrShutdown           = errors.New("balancer is shut down")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// BalancerError wraps a sentinel error with the component and operation
// that produced it.
type BalancerError struct {
	Component string
	Op        string
	Err       error
}

func (e *BalancerError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Component, e.Op, e.Err)
}

func (e *BalancerError) Unwrap() error {
	return e.Err
}

func NewBalancerError(component, op string, err error) *BalancerError {
	return &BalancerError{
		Component: component,
		Op:        op,
		Err:       err,
	}
}

func IsUnknownTaskType(err error) bool {
	return errors.Is(err, ErrUnknownTaskType)
}

func IsEmptyProcessorPool(err error) bool {
	return errors.Is(err, ErrEmptyProcessorPool)
}

func IsAlreadyStarted(err error) bool {
	return errors.Is(err, ErrAlreadyStarted)
}

func IsNotStarted(err error) bool {
	return errors.Is(err, ErrNotStarted)
}

func IsShutdown(err error) bool {
	return errors.Is(err, ErrShutdown)
}
