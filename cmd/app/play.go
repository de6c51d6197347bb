package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"voicechess/internal/config"
	"voicechess/internal/game"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/log"
	"voicechess/pkg/speech"
)

var (
	playTimeControl string
	playSide        string
	playRecognizer  string
	playRealClock   bool
	playVerbose     bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in the terminal, typing (or piping) what you would say",
	Long: `Play one game against the configured engine. Every line read from stdin
is a spoken command such as "knight to f3", "castle" or "undo". With
--recognizer the lines come from an external speech-to-text program instead.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playTimeControl, "time", "t", "", "Time control, e.g. 5+0 or 3+2")
	playCmd.Flags().StringVarP(&playSide, "side", "s", "", "Side to play: white or black")
	playCmd.Flags().StringVar(&playRecognizer, "recognizer", "", "Speech-to-text program printing one transcript per line")
	playCmd.Flags().BoolVar(&playRealClock, "clock", true, "Run the game clock in real time")
	playCmd.Flags().BoolVarP(&playVerbose, "verbose", "v", false, "Log to stderr")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := log.Discard()
	if playVerbose {
		logger = log.NewLogger()
	}

	tcLabel := cfg.Game.TimeControl
	if playTimeControl != "" {
		tcLabel = playTimeControl
	}
	tc, err := game.ParseTimeControl(tcLabel)
	if err != nil {
		return err
	}

	sideLabel := cfg.Game.PlayerSide
	if playSide != "" {
		sideLabel = playSide
	}
	side, ok := chessrules.ParseSide(sideLabel)
	if !ok {
		return fmt.Errorf("%w: %q", game.ErrInvalidSide, sideLabel)
	}

	source, closer, err := config.NewMoveSource(cfg.Engine, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	out := cmd.OutOrStdout()
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	var recognizer speech.Recognizer = speech.NewLineRecognizer(prompted(os.Stdin, out, interactive))
	if playRecognizer != "" {
		fields := strings.Fields(playRecognizer)
		recognizer = &speech.CommandRecognizer{Command: fields[0], Args: fields[1:]}
	}

	opts := config.SessionTemplate(cfg, source)
	opts.Game = game.Config{TimeControl: tc, PlayerSide: side}
	opts.Recognizer = recognizer
	opts.Synthesizer = speech.NewConsole(out, "> ")
	opts.Observer = boardPrinter(out)
	if !playRealClock {
		opts.TickInterval = 0
	}

	sess, err := game.NewSession(opts, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sess.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// prompted prints a prompt before every line read from an interactive
// terminal.
func prompted(r io.Reader, w io.Writer, interactive bool) io.Reader {
	if !interactive {
		return r
	}
	return &promptReader{r: r, w: w}
}

type promptReader struct {
	r io.Reader
	w io.Writer
}

func (p *promptReader) Read(b []byte) (int, error) {
	fmt.Fprint(p.w, "say: ")
	return p.r.Read(b)
}

// boardPrinter prints a line whenever a move is made or the game ends.
func boardPrinter(w io.Writer) game.Observer {
	lastPly := -1
	var lastStatus game.Status
	return func(snap game.SessionSnapshot) {
		if len(snap.Moves) == lastPly && snap.Status == lastStatus && !snap.Ended {
			return
		}
		lastPly, lastStatus = len(snap.Moves), snap.Status

		fmt.Fprintf(w, "[%s] %s  white %s  black %s  %s\n",
			snap.Status,
			strings.Join(tail(snap.Moves, 6), " "),
			clock(snap.Clocks.White),
			clock(snap.Clocks.Black),
			snap.FEN,
		)
	}
}

func tail(moves []string, n int) []string {
	if len(moves) <= n {
		return moves
	}
	return moves[len(moves)-n:]
}

func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
