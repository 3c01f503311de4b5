package event

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventNotActive      = errors.New("event is not active")
	ErrAlreadyParticipated = errors.New("already participated in this event")
	ErrNotOperator         = errors.New("only operators can manage events")
	ErrInvalidWindow       = errors.New("event ends before it starts")
)
