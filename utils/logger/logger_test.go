package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type named struct{}

func (named) String() string { return "named-component" }

type plain struct{}

func TestObjToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  any
		want string
	}{
		{"nil", nil, "NIL"},
		{"string", "mp4", "mp4"},
		{"stringer", named{}, "named-component"},
		{"type name", plain{}, "plain"},
		{"pointer type name", &plain{}, "plain"},
		{"truncated", "a-very-long-component-name", "a-very-long-componen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, objToString(tt.obj))
		})
	}
}

func TestLevelsAndOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableQuote: true})

	prev := log
	SetLogger(l)
	defer SetLogger(prev)

	Debugf("mp4", "hidden %d", 1)
	require.Empty(t, buf.String())

	Infof("mp4", "shown %d", 2)
	require.Contains(t, buf.String(), "shown 2")
	require.Contains(t, buf.String(), "mp4|")
}
