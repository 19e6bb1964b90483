package chore

import "errors"

// Rejections. The engine returns these with its state untouched.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrLocked            = errors.New("task is reviewed and locked")
	ErrCompleted         = errors.New("task is completed")
	ErrNotCompleted      = errors.New("task is not completed")
	ErrNotPlanned        = errors.New("task is not planned")
	ErrFutureDate        = errors.New("task is planned for a future day")
	ErrWrongDay          = errors.New("daily task can only be completed on its own day")
	ErrMissed            = errors.New("task window has passed")
	ErrDropRejected      = errors.New("task cannot be placed on that day")
	ErrDailyNotPlannable = errors.New("daily tasks are not planned")
	ErrNoReviewer        = errors.New("reviewer is required")
)

// IsRejection reports whether err is an expected rule rejection rather than a failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrLocked, ErrCompleted, ErrNotCompleted, ErrNotPlanned, ErrFutureDate,
		ErrWrongDay, ErrMissed, ErrDropRejected, ErrDailyNotPlannable, ErrNoReviewer,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
