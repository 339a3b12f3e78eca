package ucirun_test

import (
	"context"
	"fmt"

	"github.com/fenwick/ucirun"
	"github.com/fenwick/ucirun/enginetest"
)

func ExampleSession_BestMove() {
	script := enginetest.New()
	script.On("isready", "readyok")
	script.On("go", "bestmove e2e4 ponder e7e5")

	sess := ucirun.NewSession(script)
	defer sess.Shutdown(context.Background())

	mv, _ := sess.BestMove(context.Background(), "", 4)
	fmt.Println(mv.Move, mv.Ponder)
	// Output: e2e4 e7e5
}

func ExampleEncodeSetPosition() {
	fmt.Println(ucirun.EncodeSetPosition(""))
	fmt.Println(ucirun.EncodeSetPosition("8/8/8/8/8/4k3/4p3/4K3 b - - 0 1"))
	// Output:
	// position startpos
	// position fen 8/8/8/8/8/4k3/4p3/4K3 b - - 0 1
}

func ExampleEncodeSearch() {
	cmd, _ := ucirun.EncodeSearch(12, ucirun.SearchFixedDepth)
	fmt.Println(cmd)
	cmd, _ = ucirun.EncodeSearch(0, ucirun.SearchInfinite)
	fmt.Println(cmd)
	// Output:
	// go depth 12
	// go infinite
}

func ExampleEncodeSetOption() {
	fmt.Println(ucirun.EncodeSetOption("Skill Level", "7"))
	fmt.Println(ucirun.EncodeSetOption("Threads", "4"))
	// Output:
	// setoption name Skill Level value 7
	// setoption name Threads value 4
}

func ExampleClassify() {
	ln, _ := ucirun.Classify("bestmove e2e4 ponder e7e5")
	fmt.Println(ln.Type, ln.Move, ln.Ponder)

	ln, _ = ucirun.Classify("info depth 9 score cp 31 pv e2e4 e7e5")
	fmt.Println(ln.Type, ln.Display())
	// Output:
	// bestmove e2e4 e7e5
	// info depth 9 score cp 31 pv e2e4 e7e5
}

func ExampleAnalysis_Text() {
	res := ucirun.Analysis{
		Lines:    []string{"depth 8 score cp 24 pv e2e4"},
		BestMove: "e2e4",
	}
	fmt.Print(res.Text())
	fmt.Print(ucirun.Analysis{}.Text())
	// Output:
	// depth 8 score cp 24 pv e2e4
	// best move: e2e4
	// no analysis available
}
