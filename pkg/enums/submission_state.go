package enums

import "fmt"

// SubmissionState is the checkout state machine position.
type SubmissionState int32

const (
	SubmissionIdle SubmissionState = iota
	SubmissionPending
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionIdle:
		return "idle"
	case SubmissionPending:
		return "pending"
	case SubmissionSucceeded:
		return "succeeded"
	case SubmissionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s SubmissionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SubmissionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = SubmissionIdle
	case "pending":
		*s = SubmissionPending
	case "succeeded":
		*s = SubmissionSucceeded
	case "failed":
		*s = SubmissionFailed
	default:
		return fmt.Errorf("invalid submission state %q", string(text))
	}
	return nil
}
