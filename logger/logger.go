package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger = zap.NewNop()

func InitLogger(debug bool) error {
	var err error
	var conf zap.Config
	if debug {
		conf = zap.NewDevelopmentConfig()
	} else {
		conf = zap.NewProductionConfig()
	}
	log, err = conf.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	return nil
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}
