// duration.go converts between libav timestamps and time.Duration.

// Package avconv converts libav values into Go values and back.
package avconv

import (
	"math"
	"time"

	"github.com/asticode/go-astiav"
)

const (
	// see https://ffmpeg.org/doxygen/trunk/group__lavu__time.html#ga2eaefe702f95f619ea6f2d08afa01be1
	avNoPTSValue = uint64(0x8000000000000000)

	// avTimeBase is AV_TIME_BASE: container-level durations are in microseconds.
	avTimeBase = time.Microsecond
)

// NoDuration is what Duration returns for AV_NOPTS_VALUE.
const NoDuration = time.Duration(math.MinInt64)

func init() {
	if avNoPTSValue != uint64(any(int64(math.MinInt64)).(int64)) { // to bypass the compiler check
		panic("avNoPTSValue changed")
	}
}

func Duration(t int64, timeBase astiav.Rational) time.Duration {
	if uint64(t) == avNoPTSValue {
		return NoDuration
	}

	return time.Duration(float64(t) * timeBase.Float64() * float64(time.Second))
}

func FromDuration(d time.Duration, timeBase astiav.Rational) int64 {
	if d == NoDuration {
		return math.MinInt64 // equivalent to avNoPTSValue
	}

	return int64(math.Round(d.Seconds() / timeBase.Float64()))
}

// ContainerDuration converts a value of AVFormatContext.duration.
func ContainerDuration(t int64) time.Duration {
	if uint64(t) == avNoPTSValue || t <= 0 {
		return NoDuration
	}
	return time.Duration(t) * avTimeBase
}

// FrameRate returns the rate as a float, or zero if it is unknown (e.g. 0/0).
func FrameRate(r astiav.Rational) float64 {
	if r.Num() <= 0 || r.Den() <= 0 {
		return 0
	}
	return r.Float64()
}
