package recast

import "go.uber.org/zap"

// Logger is the diagnostics sink used by every builder. Messages follow the
// "[Component][operation] text" convention. *zap.SugaredLogger satisfies it.
type Logger interface {
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Infof(template string, args ...interface{})
}

// NopLogger discards everything.
func NopLogger() Logger {
	return zap.NewNop().Sugar()
}

func orNop(log Logger) Logger {
	if log == nil {
		return NopLogger()
	}
	return log
}
