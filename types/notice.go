package types

import "fmt"

type AccessKind int

const (
	AccessKindUndefined = AccessKind(iota)
	AccessKindFrameIndex
	AccessKindFrameTime
	AccessKindSampleIndex
	AccessKindNoSchedule
	AccessKindEndOfStream
)

func (k AccessKind) String() string {
	switch k {
	case AccessKindUndefined:
		return "undefined"
	case AccessKindFrameIndex:
		return "frame_index"
	case AccessKindFrameTime:
		return "frame_time"
	case AccessKindSampleIndex:
		return "sample_index"
	case AccessKindNoSchedule:
		return "no_schedule"
	case AccessKindEndOfStream:
		return "end_of_stream"
	default:
		return fmt.Sprintf("unknown_access_kind_%d", int(k))
	}
}

// AccessNotice reports a request for a frame, instant or sample that lies
// outside of the currently valid range. It is not an error: the request
// simply yields no frame and leaves all state untouched.
type AccessNotice struct {
	Kind AccessKind

	// Requested is the requested position (frame index, seconds, or sample index).
	Requested float64

	// Limit is the exclusive upper bound of the valid range; the lower bound is always zero.
	Limit float64
}

func (n AccessNotice) String() string {
	switch n.Kind {
	case AccessKindNoSchedule:
		return "a sampling schedule has not been generated yet"
	case AccessKindEndOfStream:
		return fmt.Sprintf("the stream ended before frame %v (expected %v frames)", n.Requested, n.Limit)
	case AccessKindFrameTime:
		return fmt.Sprintf("requested time %vs is outside of [0, %vs)", n.Requested, n.Limit)
	default:
		return fmt.Sprintf("requested %s %v is outside of [0, %v)", n.Kind, n.Requested, n.Limit)
	}
}

// ConvergenceNotice reports that a vote exhausted its input before any
// candidate reached the threshold; the leader is only a best guess.
type ConvergenceNotice struct {
	Leader    int
	Count     int
	Threshold int
}

func (n ConvergenceNotice) String() string {
	return fmt.Sprintf(
		"unable to determine the undisputed shift rate; the closest contender is %d, seen %d times (threshold: %d)",
		n.Leader, n.Count, n.Threshold,
	)
}
