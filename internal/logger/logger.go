package logger

import "go.uber.org/zap"

// Init создаёт production-логгер и ставит его глобальным,
// дальше по коду используется zap.L()
func Init() error {
	l, err := zap.NewProduction()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	return nil
}
