// Package logger is a thin logrus wrapper that prefixes every message with the
// name of the component that emitted it.
package logger

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

const objWidth = 20

type stringer interface {
	String() string
}

var log = logrus.StandardLogger()

func objToString(obj any) (objStr string) {
	switch o := obj.(type) {
	case nil:
		objStr = "NIL"
	case string:
		objStr = o
	case stringer:
		objStr = o.String()
	default:
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

func line(obj any, msg string) string {
	return fmt.Sprintf("|%20s| %s", objToString(obj), msg)
}

// Init sets the level and the text formatter used by the package.
func Init(lvl logrus.Level) {
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
}

// SetLogger replaces the underlying logrus logger. Tests use it to capture output.
func SetLogger(l *logrus.Logger) {
	log = l
}

func Trace(obj any, msg string) {
	if !log.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	log.Trace(line(obj, msg))
}

func Tracef(obj any, msg string, args ...any) {
	if !log.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	log.Trace(line(obj, fmt.Sprintf(msg, args...)))
}

func Debug(obj any, msg string) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.Debug(line(obj, msg))
}

func Debugf(obj any, msg string, args ...any) {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	log.Debug(line(obj, fmt.Sprintf(msg, args...)))
}

func Info(obj any, msg string) {
	log.Info(line(obj, msg))
}

func Infof(obj any, msg string, args ...any) {
	if !log.IsLevelEnabled(logrus.InfoLevel) {
		return
	}
	log.Info(line(obj, fmt.Sprintf(msg, args...)))
}

func Warning(obj any, msg string) {
	log.Warning(line(obj, msg))
}

func Warningf(obj any, msg string, args ...any) {
	if !log.IsLevelEnabled(logrus.WarnLevel) {
		return
	}
	log.Warning(line(obj, fmt.Sprintf(msg, args...)))
}

func Error(obj any, msg string) {
	log.Error(line(obj, msg))
}

func Errorf(obj any, msg string, args ...any) {
	log.Error(line(obj, fmt.Sprintf(msg, args...)))
}

func Fatal(obj any, msg string) {
	log.Fatal(line(obj, msg))
}

func Fatalf(obj any, msg string, args ...any) {
	log.Fatal(line(obj, fmt.Sprintf(msg, args...)))
}
