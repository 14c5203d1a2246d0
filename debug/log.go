package debug

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the logger shared by all driver packages. Devices derive entries
// from it carrying a "device" field.
var Log = &logrus.Logger{
	Out:       os.Stderr,
	Formatter: &logrus.TextFormatter{FullTimestamp: true},
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.InfoLevel,
}

// SetLevel parses and applies a level name like "debug" or "warn". An empty
// name leaves the level unchanged.
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}
