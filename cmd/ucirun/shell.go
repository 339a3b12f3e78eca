package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fenwick/ucirun"
	"github.com/fenwick/ucirun/rules"
)

// errQuit ends the shell loop cleanly from inside a command.
var errQuit = errors.New("quit")

func filterInput(r rune) (rune, bool) {
	// block CtrlZ feature
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

var playCmd = &cobra.Command{
	Use:   "play [fen]",
	Short: "play against the engine interactively",
	Long: `Play opens an interactive shell against the engine. Enter moves in
coordinate notation (e2e4, e7e8q). Commands: new, fen, go, quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		board, err := boardArg(args)
		if err != nil {
			return err
		}

		sess, ch, err := startSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = sess.Shutdown(context.Background()) }()

		l, err := readline.NewEx(&readline.Config{
			Prompt:              "white> ",
			HistoryFile:         "/tmp/ucirun_history",
			InterruptPrompt:     "^C",
			EOFPrompt:           "exit",
			FuncFilterInputRune: filterInput,
		})
		if err != nil {
			return err
		}
		defer l.Close()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			// Unblock the prompt when the engine dies or we are signalled.
			<-ctx.Done()
			l.Close()
			if err := ch.Err(); err != nil {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-ch.Done():
				if err := ch.Err(); err != nil {
					return err
				}
				return errors.New("engine exited")
			case <-ctx.Done():
				return nil
			}
		})
		g.Go(func() error {
			err := shellLoop(ctx, l, sess, board)
			stop() // loop is done either way; release the watchers
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		})
		return g.Wait()
	},
}

func boardArg(args []string) (*rules.Board, error) {
	if len(args) == 0 {
		return rules.New(), nil
	}
	return rules.FromFEN(args[0])
}

func shellLoop(ctx context.Context, l *readline.Instance, sess *ucirun.Session, board *rules.Board) error {
	for {
		l.SetPrompt(board.SideToMove() + "> ")
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return errQuit
			}
			continue
		}
		if err == io.EOF {
			return errQuit
		}
		if err != nil {
			return err
		}

		switch line = strings.TrimSpace(line); line {
		case "":
			continue
		case "quit", "exit":
			return errQuit
		case "fen":
			fmt.Println(board.FEN())
			continue
		case "new":
			board = rules.New()
			if err := sess.NewGame(ctx); err != nil {
				return err
			}
			fmt.Println("new game")
			continue
		case "go":
			if err := engineMove(ctx, sess, board); err != nil {
				return err
			}
			continue
		}

		if err := board.ApplyUCI(line); err != nil {
			fmt.Println(err)
			continue
		}
		if board.GameOver() {
			fmt.Println("game over:", board.Outcome())
			return errQuit
		}
		if err := engineMove(ctx, sess, board); err != nil {
			return err
		}
		if board.GameOver() {
			fmt.Println("game over:", board.Outcome())
			return errQuit
		}
	}
}

// engineMove asks the engine for its move in the current position and
// applies it to the board.
func engineMove(ctx context.Context, sess *ucirun.Session, board *rules.Board) error {
	mv, err := sess.BestMove(ctx, board.FEN(), cfg.Depth)
	if errors.Is(err, ucirun.ErrNoMoveFound) {
		fmt.Println("engine found no move:", board.Outcome())
		return nil
	}
	if err != nil {
		return err
	}
	if err := board.ApplyUCI(mv.Move); err != nil {
		return fmt.Errorf("engine played %s: %w", mv.Move, err)
	}
	fmt.Println("engine:", mv.Move)
	return nil
}
