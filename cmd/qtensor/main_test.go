package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag back to its default so runs don't leak into each other.
func resetFlags(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		for _, set := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			set.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd, applyCmd, benchCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	if !slices.ContainsFunc(args, func(arg string) bool { return strings.HasPrefix(arg, "--log.") }) {
		args = append(args, "--log.level", "error")
	}
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func decode(out string) []float64 {
	var values []float64
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		return nil
	}
	return values
}

var canonical = []float64{153, 351, 345, 791, 333, 763, 749, 1715}

func TestApplyCommand(t *testing.T) {
	Convey("Given the apply command", t, func() {
		Convey("It should print the canonical regression vector", func() {
			for _, backend := range backends {
				out, err := execute("apply",
					"--operator", "[[1,3],[2,4]]",
					"--state", "[1,2,3,4,5,6,7,8]",
					"--exec.backend", backend,
					"--exec.chunk", "1",
					"--exec.workers", "2",
				)
				So(err, ShouldBeNil)
				So(decode(out), ShouldResemble, canonical)
			}
		})

		Convey("It should transpose a column-convention operator on request", func() {
			out, err := execute("apply",
				"--operator", "[[1,2],[3,4]]",
				"--state", "[1,2,3,4,5,6,7,8]",
				"--transpose",
			)
			So(err, ShouldBeNil)
			So(decode(out), ShouldResemble, canonical)
		})

		Convey("It should read a YAML input file", func() {
			path := filepath.Join(t.TempDir(), "run.yaml")
			doc := "operator:\n  - [1, 3]\n  - [2, 4]\nstate: [1, 2, 3, 4, 5, 6, 7, 8]\n"
			So(os.WriteFile(path, []byte(doc), 0o600), ShouldBeNil)

			out, err := execute("apply", "--input", path)
			So(err, ShouldBeNil)
			So(decode(out), ShouldResemble, canonical)
		})

		Convey("It should log one debug line per call and keep the kernel quiet", func() {
			path := filepath.Join(t.TempDir(), "apply.json")

			_, err := execute("apply",
				"--operator", "[[1,3],[2,4]]",
				"--state", "[1,2,3,4,5,6,7,8]",
				"--log.level", "debug",
				"--log.output", path,
			)
			So(err, ShouldBeNil)

			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(strings.Count(string(raw), `"message":"applied"`), ShouldEqual, 1)
			So(string(raw), ShouldContainSubstring, `"length":8`)
		})

		Convey("It should report a state that is not a power of two", func() {
			_, err := execute("apply", "--operator", "[[1,0],[0,1]]", "--state", "[1,2,3]")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "state length 3 is not a power of two")
		})

		Convey("It should report an operator that is not 2x2", func() {
			_, err := execute("apply", "--operator", "[[1,0,0],[0,1,0]]", "--state", "[1,2,3]")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid operator")
		})

		Convey("It should reject an unknown backend", func() {
			_, err := execute("apply", "--operator", "[[1,0],[0,1]]", "--state", "[1]", "--exec.backend", "gpu")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid executor backend")
		})
	})
}

func TestBenchCommand(t *testing.T) {
	Convey("Given the bench command", t, func() {
		Convey("Every backend and the dense product should agree", func() {
			out, err := execute("bench", "--qubits", "6", "--exec.chunk", "4", "--exec.workers", "2")
			So(err, ShouldBeNil)

			for _, name := range []string{"serial", "group", "pool", "dense"} {
				So(out, ShouldContainSubstring, name)
			}
			So(strings.Count(out, "\n"), ShouldEqual, 5)
		})

		Convey("It should refuse absurd sizes", func() {
			_, err := execute("bench", "--qubits", "64")
			So(err, ShouldNotBeNil)
		})
	})
}
