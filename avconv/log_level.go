package avconv

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/scrollrate/logger"
)

func LogLevelToAstiav(level logger.Level) astiav.LogLevel {
	switch level {
	case logger.LevelUndefined:
		return astiav.LogLevelQuiet
	case logger.LevelPanic:
		return astiav.LogLevelPanic
	case logger.LevelFatal:
		return astiav.LogLevelFatal
	case logger.LevelError:
		return astiav.LogLevelError
	case logger.LevelWarning:
		return astiav.LogLevelWarning
	case logger.LevelInfo:
		return astiav.LogLevelInfo
	case logger.LevelDebug:
		return astiav.LogLevelVerbose
	case logger.LevelTrace:
		return astiav.LogLevelTrace
	default:
		return astiav.LogLevelWarning
	}
}

func LogLevelFromAstiav(level astiav.LogLevel) logger.Level {
	switch {
	case level <= astiav.LogLevelQuiet:
		return logger.LevelUndefined
	case level <= astiav.LogLevelPanic:
		return logger.LevelPanic
	case level <= astiav.LogLevelFatal:
		return logger.LevelFatal
	case level <= astiav.LogLevelError:
		return logger.LevelError
	case level <= astiav.LogLevelWarning:
		return logger.LevelWarning
	case level <= astiav.LogLevelInfo:
		return logger.LevelInfo
	case level <= astiav.LogLevelDebug:
		return logger.LevelDebug
	default:
		return logger.LevelTrace
	}
}
