package s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func clientLogMode(lgr *zap.Logger) aws.ClientLogMode {
	mode := aws.LogRetries
	if lgr.Core().Enabled(zapcore.DebugLevel) {
		mode |= aws.LogRequest |
			aws.LogResponse |
			aws.LogDeprecatedUsage |
			aws.LogSigning
	}
	return mode
}

func smithyLogger(lgr *zap.Logger) logging.LoggerFunc {
	sugar := lgr.Sugar()
	return func(classification logging.Classification, format string, v ...interface{}) {
		switch classification {
		case logging.Debug:
			sugar.Debugf(format, v...)
		case logging.Warn:
			sugar.Warnf(format, v...)
		default:
			sugar.Infof(format, v...)
		}
	}
}
