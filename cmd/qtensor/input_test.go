package main

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseInput(t *testing.T) {
	Convey("Given operator and state text", t, func() {
		Convey("JSON and YAML flow syntax should both parse", func() {
			rows, err := parseMatrix("[[0.9, 0.1], [0.2, 0.8]]")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]float64{{0.9, 0.1}, {0.2, 0.8}})

			values, err := parseVector("[1, 2.5, -3]")
			So(err, ShouldBeNil)
			So(values, ShouldResemble, []float64{1, 2.5, -3})
		})

		Convey("Garbage should be an error", func() {
			_, err := parseMatrix("[[1, x]")
			So(err, ShouldNotBeNil)
			_, err = parseVector("{a: 1}")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an input document", t, func() {
		dir := t.TempDir()

		Convey("A JSON file should decode", func() {
			path := filepath.Join(dir, "in.json")
			So(os.WriteFile(path, []byte(`{"operator": [[1, 3], [2, 4]], "state": [1, 2]}`), 0o600), ShouldBeNil)

			in, err := readInput(path)
			So(err, ShouldBeNil)
			So(in.Operator, ShouldResemble, [][]float64{{1, 3}, {2, 4}})
			So(in.State, ShouldResemble, []float64{1, 2})
		})

		Convey("A missing file should name the path", func() {
			_, err := readInput(filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "missing.yaml")
		})
	})
}

func TestValidateConfig(t *testing.T) {
	Convey("Given command configurations", t, func() {
		good := func() *Config {
			return &Config{
				Log:  LogConfig{Level: "info", Output: "stderr"},
				Exec: ExecConfig{Backend: backendGroup, Workers: 2, Chunk: 64},
			}
		}

		Convey("A complete config should pass", func() {
			So(validateConfig(good()), ShouldBeNil)
		})

		Convey("Bad values should be rejected", func() {
			cfg := good()
			cfg.Exec.Workers = -1
			So(validateConfig(cfg), ShouldNotBeNil)

			cfg = good()
			cfg.Exec.Chunk = 0
			So(validateConfig(cfg), ShouldNotBeNil)

			cfg = good()
			cfg.Exec.Backend = "cuda"
			So(validateConfig(cfg), ShouldNotBeNil)
		})
	})
}
