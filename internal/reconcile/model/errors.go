package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInputFormat: файл не читается как таблица или колонка имён пуста.
	ErrInputFormat = errors.New("input format error")
	// ErrInvariantViolation: дедупликация или сводка нарушили инвариант. Фатально для запуска.
	ErrInvariantViolation = errors.New("invariant violation")
	ErrInvalidThreshold   = errors.New("threshold must be within [0, 100]")
	ErrUnknownScorer      = errors.New("unknown scorer")
)

// InputFormatError описывает, какой вход и почему не прошёл проверку.
type InputFormatError struct {
	Input  string // master | reference
	Reason string
	Err    error
}

func (e *InputFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Input, e.Reason)
}

func (e *InputFormatError) Unwrap() error { return e.Err }

func (e *InputFormatError) Is(target error) bool { return target == ErrInputFormat }

func NewInputFormatError(input, reason string, err error) *InputFormatError {
	return &InputFormatError{Input: input, Reason: reason, Err: err}
}

// InvariantError несёт подробности нарушенного инварианта.
type InvariantError struct {
	Stage  string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Stage, e.Detail)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }
