// Command minedemo drives pkg/mines against a randomly generated board
// so its decisions can be watched end to end. It is an illustrative
// driver, not a game UI or benchmark harness (those are Non-goals): its
// only job is to own the hidden mine layout, apply one Action per
// step, and print what happened.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tanobar/minesweeper-prj/internal/trace"
	"github.com/tanobar/minesweeper-prj/pkg/mines"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	vp := viper.New()
	vp.SetEnvPrefix("MINEDEMO")
	vp.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "minedemo",
		Short: "Play a randomly generated board using the inference engine",
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), vp)
		},
	}

	flags := cmd.Flags()
	flags.Int("rows", 9, "board height")
	flags.Int("cols", 9, "board width")
	flags.Int("mines", 10, "number of mines to place")
	flags.Int64("seed", 1, "random seed for mine placement")
	flags.Int("max-steps", 200, "give up after this many decisions")
	flags.Int("max-vars-exact", mines.DefaultRiskConfig().MaxVarsExact, "largest frontier component enumerated exactly")
	flags.Int("max-solutions", mines.DefaultMaxSolutions, "solution cap during exact enumeration")
	flags.Float64("alpha", mines.DefaultRiskConfig().Alpha, "local-pressure blend weight")
	flags.Bool("calibrate", true, "rescale non-exact probabilities toward the mine budget")
	flags.Bool("trace", true, "log structured events for every decision to stderr")
	flags.Bool("quiet", false, "suppress the per-step lines, print only the final outcome")

	bindFlags(vp, flags)
	return cmd
}

func bindFlags(vp *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = vp.BindPFlag(f.Name, f)
	})
}

func run(ctx context.Context, vp *viper.Viper) error {
	rows := vp.GetInt("rows")
	cols := vp.GetInt("cols")
	mineCount := vp.GetInt("mines")
	seed := vp.GetInt64("seed")
	maxSteps := vp.GetInt("max-steps")
	quiet := vp.GetBool("quiet")

	cfg := mines.RiskConfig{
		MaxVarsExact: vp.GetInt("max-vars-exact"),
		MaxSolutions: vp.GetInt("max-solutions"),
		Alpha:        vp.GetFloat64("alpha"),
		Calibrate:    vp.GetBool("calibrate"),
	}

	var obs *trace.Observer
	var opts []mines.Option
	if vp.GetBool("trace") {
		obs = trace.NewObserver(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
		opts = append(opts, mines.WithTrace(obs))
	}

	board, err := newSimBoard(rows, cols, mineCount, seed)
	if err != nil {
		return err
	}

	k := mines.NewKnowledge(rows, cols)
	movesMade := make(map[mines.Position]struct{})
	knownMines := make(map[mines.Position]struct{})
	totalMines := mineCount

	for step := 0; step < maxSteps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		action, err := mines.ChooseAction(ctx, k, movesMade, knownMines, &totalMines, cfg, opts...)
		if err != nil {
			return fmt.Errorf("step %d: %w", step, err)
		}

		switch action.Kind {
		case mines.ActionFlagAll:
			for _, p := range action.Positions {
				k = board.flag(k, p)
				knownMines[p] = struct{}{}
			}
			if !quiet {
				fmt.Printf("step %d: flag %v\n", step, action.Positions)
			}

		case mines.ActionRevealAllSafe:
			for _, p := range action.Positions {
				var hitMine bool
				k, hitMine = board.reveal(k, p)
				movesMade[p] = struct{}{}
				if hitMine {
					return reportLoss(step, p)
				}
			}
			if !quiet {
				fmt.Printf("step %d: reveal %v (all provably safe)\n", step, action.Positions)
			}

		case mines.ActionReveal:
			p := action.Position
			var hitMine bool
			k, hitMine = board.reveal(k, p)
			movesMade[p] = struct{}{}
			if hitMine {
				return reportLoss(step, p)
			}
			if !quiet {
				fmt.Printf("step %d: reveal %v (minimum risk)\n", step, p)
			}

		case mines.ActionNone:
			return reportWin(step)
		}
	}

	fmt.Printf("stopped after %d steps without finishing\n", maxSteps)
	return nil
}

func reportLoss(step int, p mines.Position) error {
	fmt.Printf("step %d: revealed a mine at %v, game over\n", step, p)
	return nil
}

func reportWin(step int) error {
	fmt.Printf("step %d: board fully resolved\n", step)
	return nil
}
