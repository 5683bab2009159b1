package logger

import (
	"github.com/facebookincubator/go-belt/tool/logger"
)

type Level = logger.Level

const (
	// LevelUndefined is the zero-value log-level; it is never valid for output.
	LevelUndefined = logger.LevelUndefined

	LevelFatal   = logger.LevelFatal
	LevelPanic   = logger.LevelPanic
	LevelError   = logger.LevelError
	LevelWarning = logger.LevelWarning

	// LevelInfo reports the final shift rate and schedule summaries.
	LevelInfo = logger.LevelInfo

	// LevelDebug additionally reports every sample access and every measured offset.
	LevelDebug = logger.LevelDebug

	// LevelTrace additionally reports decoder internals (requires the debug_trace build tag).
	LevelTrace = logger.LevelTrace
)
