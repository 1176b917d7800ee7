package schedule

// Logger is the narrow slice of logrus.FieldLogger the scheduler needs,
// so pkg/schedule itself never imports logrus directly — callers wire a
// *logrus.Logger (or any other implementation, e.g. in tests a no-op).
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NopLogger discards everything; the zero value is ready to use.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
