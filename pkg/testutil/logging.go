package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func init() {
	var isVerbose bool
	for _, arg := range os.Args {
		if arg == "-test.v=true" {
			isVerbose = true
		}
	}

	logrus.SetLevel(logrus.TraceLevel)

	if !isVerbose {
		logrus.StandardLogger().Out = io.Discard
	}
}

// CaptureLogs records every entry written to the standard logger until the
// test completes.
func CaptureLogs(t *testing.T) *test.Hook {
	hook := test.NewLocal(logrus.StandardLogger())

	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
	})

	return hook
}

// EntriesOfType filters captured entries to those logged by a component.
func EntriesOfType(hook *test.Hook, componentType string) []*logrus.Entry {
	var filtered []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Data["type"] == componentType {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
