package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/theapemachine/qtensor"
	"github.com/theapemachine/qtensor/internal/log"
)

const benchTolerance = 1e-9

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time every executor backend against each other and the dense product",
	Long: `Generates a random state over the requested number of qubits, normalized to
sum to one, and applies the operator with every executor backend. For small
sizes the explicit Kronecker product is timed too. All results must agree.

Example:
  qtensor bench --qubits 20 --runs 3`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntP("qubits", "n", 16, "number of qubits N, the state holds 2^N entries")
	benchCmd.Flags().IntP("runs", "r", 1, "repetitions per backend")
	benchCmd.Flags().String("operator", "[[0.9, 0.1], [0.2, 0.8]]", "operator as a JSON/YAML 2x2 matrix")
	benchCmd.Flags().Uint64("seed", 1, "random seed for the state")
}

type benchResult struct {
	name    string
	elapsed time.Duration
	out     []float64
}

func randomDistribution(r *rand.Rand, n int) []float64 {
	state := make([]float64, n)
	var sum float64
	for i := range state {
		state[i] = r.Float64() * 1000
		sum += state[i]
	}
	for i := range state {
		state[i] /= sum
	}
	return state
}

func timeRuns(runs int, fn func() ([]float64, error)) ([]float64, time.Duration, error) {
	var out []float64
	start := time.Now()
	for range runs {
		var err error
		if out, err = fn(); err != nil {
			return nil, 0, err
		}
	}
	return out, time.Since(start) / time.Duration(runs), nil
}

func runBench(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	qubits, _ := flags.GetInt("qubits")
	runs, _ := flags.GetInt("runs")
	seed, _ := flags.GetUint64("seed")
	text, _ := flags.GetString("operator")

	if qubits < 0 || qubits > 30 {
		return errors.Errorf("qubits must be within [0, 30], got %d", qubits)
	}
	runs = max(1, runs)

	rows, err := parseMatrix(text)
	if err != nil {
		return err
	}
	op, err := qtensor.NewOperator(rows)
	if err != nil {
		return err
	}

	state := randomDistribution(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), 1<<qubits)
	log.Infow("bench", "qubits", qubits, "runs", runs, "operator", op)

	workers := cfg.Exec.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	q := qtensor.NewQ(cmd.Context(), workers, workers*2, qtensor.NewConfig())
	defer q.Close()

	executors := []struct {
		name string
		exec qtensor.Executor
	}{
		{backendSerial, qtensor.SerialExecutor{}},
		{backendGroup, qtensor.NewGroupExecutor(workers, cfg.Exec.Chunk)},
		{backendPool, qtensor.NewPoolExecutor(q, workers, cfg.Exec.Chunk)},
	}

	results := make([]benchResult, 0, len(executors)+1)
	for _, e := range executors {
		tp := qtensor.NewTensorPower(qtensor.WithExecutor(e.exec))
		out, elapsed, err := timeRuns(runs, func() ([]float64, error) {
			return tp.Apply(op, state)
		})
		if err != nil {
			return errors.Wrapf(err, "%s backend", e.name)
		}
		results = append(results, benchResult{name: e.name, elapsed: elapsed, out: out})
	}

	if qubits <= qtensor.MaxDenseRank {
		out, elapsed, err := timeRuns(runs, func() ([]float64, error) {
			dense, err := qtensor.DenseTensorPower(op, qubits)
			if err != nil {
				return nil, err
			}
			return qtensor.MatVec(dense, state), nil
		})
		if err != nil {
			return errors.Wrap(err, "dense reference")
		}
		results = append(results, benchResult{name: "dense", elapsed: elapsed, out: out})
	} else {
		log.Infow("skipping dense reference", "qubits", qubits, "limit", qtensor.MaxDenseRank)
	}

	reference := results[0]
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-8s %14s %10s %12s\n", "backend", "time/run", "speedup", "max |diff|")

	for _, r := range results {
		var diff float64
		for i := range r.out {
			diff = math.Max(diff, math.Abs(r.out[i]-reference.out[i]))
		}
		if diff > benchTolerance {
			log.Warnw("backend disagrees", "backend", r.name, "reference", reference.name, "diff", diff)
			return errors.Errorf("%s disagrees with %s by %g", r.name, reference.name, diff)
		}
		speedup := float64(reference.elapsed) / float64(max(r.elapsed, 1))
		fmt.Fprintf(w, "%-8s %14s %9.2fx %12.3g\n", r.name, r.elapsed, speedup, diff)
	}

	log.Monitor("pool metrics", q.Metrics())
	return nil
}
