package domain

import "errors"

// ErrTargetNotFound is returned when a dispatch names a target that was never registered.
var ErrTargetNotFound = errors.New("target not found")

// ErrDuplicateTarget is returned when a target name is registered twice.
var ErrDuplicateTarget = errors.New("target already registered")

// ErrProceedTwice is returned when an Around advice invokes its proceed handle more than once.
var ErrProceedTwice = errors.New("proceed called more than once")

// ErrProceedClosed is returned when a proceed handle is invoked after its Around advice returned.
var ErrProceedClosed = errors.New("proceed called after advice returned")

// ErrRegistrySealed is returned when registration is attempted after the init phase.
var ErrRegistrySealed = errors.New("registry is sealed")

// ErrInvalidPointcut is returned when a pointcut expression cannot be parsed.
var ErrInvalidPointcut = errors.New("invalid pointcut")

// ErrInvalidAdvice is returned when an advice lacks the function its phase requires.
var ErrInvalidAdvice = errors.New("invalid advice")

// ErrUnknownAspect is returned when configuration names an aspect the catalog does not provide.
var ErrUnknownAspect = errors.New("unknown aspect")
