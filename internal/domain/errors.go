package domain

import "fmt"

// ProviderUnavailableError means a signing-provider call failed or returned a
// malformed response. No session was created; the caller may retry with a
// fresh request.
type ProviderUnavailableError struct {
	Reason string
}

func (e ProviderUnavailableError) Error() string {
	if e.Reason == "" {
		return "signing provider unavailable"
	}
	return fmt.Sprintf("signing provider unavailable: %s", e.Reason)
}

// Is enables errors.Is matching on ProviderUnavailableError.
func (e ProviderUnavailableError) Is(target error) bool {
	_, ok := target.(ProviderUnavailableError)
	if ok {
		return true
	}
	_, ok = target.(*ProviderUnavailableError)
	return ok
}

var ErrProviderUnavailable = ProviderUnavailableError{}

// BackendUnavailableError is a transport-level failure calling a backend
// endpoint. Recoverable by re-invoking the flow step.
type BackendUnavailableError struct {
	Reason string
}

func (e BackendUnavailableError) Error() string {
	if e.Reason == "" {
		return "backend unavailable"
	}
	return fmt.Sprintf("backend unavailable: %s", e.Reason)
}

func (e BackendUnavailableError) Is(target error) bool {
	_, ok := target.(BackendUnavailableError)
	if ok {
		return true
	}
	_, ok = target.(*BackendUnavailableError)
	return ok
}

var ErrBackendUnavailable = BackendUnavailableError{}

// BackendRejectedError is a non-2xx backend response. Message carries the
// backend's error text verbatim for user display.
type BackendRejectedError struct {
	Message string
}

func (e BackendRejectedError) Error() string {
	if e.Message == "" {
		return "backend rejected request"
	}
	return e.Message
}

func (e BackendRejectedError) Is(target error) bool {
	_, ok := target.(BackendRejectedError)
	if ok {
		return true
	}
	_, ok = target.(*BackendRejectedError)
	return ok
}

var ErrBackendRejected = BackendRejectedError{}

// RejectedError means the human signer declined the request. Terminal for
// that session; a fresh signing request must be built to retry.
type RejectedError struct{}

func (e RejectedError) Error() string {
	return "signing request rejected by signer"
}

func (e RejectedError) Is(target error) bool {
	_, ok := target.(RejectedError)
	if ok {
		return true
	}
	_, ok = target.(*RejectedError)
	return ok
}

var ErrRejected = RejectedError{}

// SubmissionFailedError means the signer approved but the provider could not
// confirm resolution of the session.
type SubmissionFailedError struct{}

func (e SubmissionFailedError) Error() string {
	return "transaction submission failed"
}

func (e SubmissionFailedError) Is(target error) bool {
	_, ok := target.(SubmissionFailedError)
	if ok {
		return true
	}
	_, ok = target.(*SubmissionFailedError)
	return ok
}

var ErrSubmissionFailed = SubmissionFailedError{}

// PreconditionViolationError means a flow was invoked before its data
// dependency was satisfied. This is an orchestration bug, not a user error.
type PreconditionViolationError struct {
	Reason string
}

func (e PreconditionViolationError) Error() string {
	if e.Reason == "" {
		return "precondition violation"
	}
	return fmt.Sprintf("precondition violation: %s", e.Reason)
}

func (e PreconditionViolationError) Is(target error) bool {
	_, ok := target.(PreconditionViolationError)
	if ok {
		return true
	}
	_, ok = target.(*PreconditionViolationError)
	return ok
}

var ErrPrecondition = PreconditionViolationError{}
