package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInitClosesPreviousFile(t *testing.T) {
	Convey("Given a logger writing to a file", t, func() {
		path := filepath.Join(t.TempDir(), "qtensor.json")
		So(Init(LogLevelInfo, path), ShouldBeNil)

		Reset(func() {
			_ = Init(LogLevelError, "stderr")
		})

		logMu.RLock()
		first := logFile
		logMu.RUnlock()
		So(first, ShouldNotBeNil)

		Infow("to file", "k", 1)

		Convey("Re-initializing should close the old handle", func() {
			So(Init(LogLevelInfo, "stderr"), ShouldBeNil)

			_, err := first.Write([]byte("late\n"))
			So(errors.Is(err, os.ErrClosed), ShouldBeTrue)

			logMu.RLock()
			So(logFile, ShouldBeNil)
			logMu.RUnlock()

			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"message":"to file"`)
		})

		Convey("Switching to a writer should close it too", func() {
			So(InitWriter(LogLevelInfo, os.Stderr), ShouldBeNil)

			_, err := first.Write([]byte("late\n"))
			So(errors.Is(err, os.ErrClosed), ShouldBeTrue)
		})
	})
}
