package job

import "errors"

var (
	// ErrJobNotFound is returned when the job does not exist
	ErrJobNotFound = errors.New("job not found")

	// ErrAssignmentNotFound is returned when the assignment does not exist
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrNotTeacher is returned when the creator lacks teacher or operator role
	ErrNotTeacher = errors.New("only teachers and operators may create jobs")

	// ErrNotJobOwner is returned when anyone but the creating teacher acts on a job
	ErrNotJobOwner = errors.New("only the job's creator may perform this action")

	// ErrJobNotOpen is returned when applying to a job that is not open
	ErrJobNotOpen = errors.New("job is not open")

	// ErrJobFull is returned when the job is at max_students capacity
	ErrJobFull = errors.New("job is full")

	// ErrAlreadyApplied is returned on a duplicate (job, student) application
	ErrAlreadyApplied = errors.New("already applied to this job")

	// ErrJobNotCloseable is returned when closing an already closed job
	ErrJobNotCloseable = errors.New("job is already closed")

	// ErrInvalidTransition is returned when an assignment is not in the
	// expected source state for the requested transition
	ErrInvalidTransition = errors.New("assignment is not in a state that permits this transition")
)
