package main

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/theapemachine/qtensor"
	"github.com/theapemachine/qtensor/internal/log"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a 2x2 operator to every axis of a 2^N state",
	Long: `Reads a 2x2 operator and a state vector of length 2^N, applies the operator
to each of the N binary axes and prints the resulting vector as JSON.

The operator uses the transition convention: entry [r][k] weighs input bit value
r into output bit value k. Pass --transpose for a column-vector matrix.

Examples:
  qtensor apply --operator '[[1,3],[2,4]]' --state '[1,2,3,4,5,6,7,8]'
  qtensor apply --input run.yaml --exec.backend pool`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("operator", "", "operator as a JSON/YAML 2x2 matrix")
	applyCmd.Flags().String("state", "", "state as a JSON/YAML list of 2^N numbers")
	applyCmd.Flags().StringP("input", "i", "", "file holding operator and state")
	applyCmd.Flags().Bool("transpose", false, "transpose the operator before applying it")
}

func loadApplyInput(cmd *cobra.Command) (*Input, error) {
	flags := cmd.Flags()

	in := &Input{}
	if path, _ := flags.GetString("input"); path != "" {
		var err error
		if in, err = readInput(path); err != nil {
			return nil, err
		}
	}

	if text, _ := flags.GetString("operator"); text != "" {
		rows, err := parseMatrix(text)
		if err != nil {
			return nil, err
		}
		in.Operator = rows
	}

	if text, _ := flags.GetString("state"); text != "" {
		values, err := parseVector(text)
		if err != nil {
			return nil, err
		}
		in.State = values
	}

	return in, nil
}

func runApply(cmd *cobra.Command, _ []string) error {
	in, err := loadApplyInput(cmd)
	if err != nil {
		return err
	}

	op, err := qtensor.NewOperator(in.Operator)
	if err != nil {
		return err
	}
	if transpose, _ := cmd.Flags().GetBool("transpose"); transpose {
		op = op.Transpose()
	}

	exec, release, err := newExecutor(cmd.Context(), cfg.Exec)
	if err != nil {
		return err
	}
	defer release()

	start := time.Now()
	out, err := qtensor.NewTensorPower(qtensor.WithExecutor(exec)).Apply(op, in.State)
	if err != nil {
		return err
	}
	log.Debugw("applied", "length", len(out), "operator", op, "backend", cfg.Exec.Backend, "elapsed", time.Since(start).String())

	enc := json.NewEncoder(cmd.OutOrStdout())
	return errors.Wrap(enc.Encode(out), "writing result")
}
