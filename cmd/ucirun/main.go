// Command ucirun drives a UCI chess engine from the command line: one-shot
// best-move queries, streaming analysis, and an interactive play shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fenwick/ucirun"
	"github.com/fenwick/ucirun/config"
	"github.com/fenwick/ucirun/engine/uci"
	"github.com/fenwick/ucirun/filter"
	"github.com/fenwick/ucirun/rules"
)

var (
	cfgFile    string
	flagEngine string
	flagDepth  int
	flagSkill  int
	flagLevel  string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "ucirun",
	Short:         "ucirun talks to a UCI chess engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		// Command-line flags win over config file and environment.
		if cmd.Flags().Changed("engine") {
			cfg.EnginePath = flagEngine
		}
		if cmd.Flags().Changed("depth") {
			cfg.Depth = flagDepth
		}
		if cmd.Flags().Changed("skill") {
			cfg.SkillLevel = flagSkill
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = flagLevel
		}

		lvl, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(lvl).
			With().Timestamp().Logger()
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file path")
	pf.StringVar(&flagEngine, "engine", "", "UCI engine binary")
	pf.IntVar(&flagDepth, "depth", 0, "search depth")
	pf.IntVar(&flagSkill, "skill", -1, "engine skill level (0-20)")
	pf.StringVar(&flagLevel, "log-level", "", "log level (trace, debug, info, ...)")

	rootCmd.AddCommand(bestmoveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(playCmd)
}

// startSession spawns the configured engine and wraps it in a session.
// The returned channel is the raw engine transport, for callers that
// watch liveness directly.
func startSession(ctx context.Context, extra ...ucirun.SessionOption) (*ucirun.Session, ucirun.Channel, error) {
	eng := uci.NewEngine(cfg.EnginePath,
		uci.WithArgs(cfg.EngineArgs...),
		uci.WithLogger(logger),
	)
	if err := eng.Validate(); err != nil {
		return nil, nil, err
	}
	ch, err := eng.Start(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []ucirun.SessionOption{
		ucirun.WithSearchDepth(cfg.Depth),
		ucirun.WithSkillLevel(cfg.SkillLevel),
		ucirun.WithQuiescenceWindow(cfg.QuiescenceWindow),
		ucirun.WithLogger(logger),
	}
	if cfg.SearchTimeout > 0 {
		opts = append(opts, ucirun.WithSearchTimeout(cfg.SearchTimeout))
	}
	opts = append(opts, extra...)

	sess := ucirun.NewSession(ch, opts...)
	logger.Debug().Str("session", sess.ID()).Str("engine", cfg.EnginePath).Msg("session started")
	return sess, ch, nil
}

// fenArg resolves the optional position argument; no argument means the
// standard starting position.
func fenArg(args []string) string {
	if len(args) == 0 {
		return rules.StartingFEN
	}
	return args[0]
}

var bestmoveCmd = &cobra.Command{
	Use:   "bestmove [fen]",
	Short: "ask the engine for the best move in a position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fen := fenArg(args)
		if _, err := rules.FromFEN(fen); err != nil {
			return err
		}

		sess, _, err := startSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = sess.Shutdown(context.Background()) }()

		mv, err := sess.BestMove(ctx, fen, cfg.Depth)
		if err != nil {
			return err
		}
		if mv.Ponder != "" {
			fmt.Printf("%s (ponder %s)\n", mv.Move, mv.Ponder)
		} else {
			fmt.Println(mv.Move)
		}
		return nil
	},
}

var flagMinDepth int

func init() {
	analyzeCmd.Flags().IntVar(&flagMinDepth, "min-depth", 0, "drop info lines below this depth")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [fen]",
	Short: "stream the engine's analysis of a position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fen := fenArg(args)
		if _, err := rules.FromFEN(fen); err != nil {
			return err
		}

		var extra []ucirun.SessionOption
		if flagMinDepth > 0 {
			extra = append(extra, ucirun.WithInfoFilter(filter.MinDepth(flagMinDepth)))
		}
		sess, _, err := startSession(ctx, extra...)
		if err != nil {
			return err
		}
		defer func() { _ = sess.Shutdown(context.Background()) }()

		res, err := sess.Analyze(ctx, fen, cfg.Depth, func(lines []string) {
			fmt.Println(lines[len(lines)-1])
		})
		if err != nil {
			return err
		}
		if res.BestMove != "" {
			fmt.Println("best move:", res.BestMove)
		} else if res.Empty() {
			fmt.Println(res.Text())
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ucirun:", err)
		os.Exit(1)
	}
}
