package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrTestNotFound      = errors.New("test not found")
	ErrNoQuestions       = errors.New("test has no questions")
	ErrTestWindowClosed  = errors.New("test is not open at this time")
	ErrTestTimeExpired   = errors.New("test duration has expired")
	ErrAttemptNotFound   = errors.New("test not started")
	ErrAttemptCompleted  = errors.New("test already submitted")
	ErrQuestionNotInTest = errors.New("not in test")
)

// IsBusinessError reports whether err is one of the expected exam-flow
// violations surfaced to clients as 400, as opposed to a store failure.
func IsBusinessError(err error) bool {
	for _, e := range []error{
		ErrUserNotFound,
		ErrPermissionDenied,
		ErrTestNotFound,
		ErrNoQuestions,
		ErrTestWindowClosed,
		ErrTestTimeExpired,
		ErrAttemptNotFound,
		ErrAttemptCompleted,
		ErrQuestionNotInTest,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
