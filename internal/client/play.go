package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/pkg"
)

type PlayOptions struct {
	// ServerURL is the relay websocket endpoint.
	ServerURL string
	// PublicURL is used to print the share link of the room.
	PublicURL string
	RoomID    string
	Step      time.Duration
	// Bot plays random moves instead of reading them from in.
	Bot bool
}

// Play runs an interactive session: positions 0-8 and r (reset) are read from in, the board and
// status lines are written to out. It returns when in is exhausted, ctx is done or
// the relay closes the connection. A bot keeps playing after in is exhausted.
func Play(ctx context.Context, logger *slog.Logger, opts PlayOptions, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	transport, err := Dial(ctx, logger, opts.ServerURL)
	if err != nil {
		return err
	}
	defer transport.Close()

	screen := &syncWriter{w: out}
	botTurn := make(chan struct{}, 1)

	session := NewSession(logger, transport, Options{
		RoomID: opts.RoomID,
		Step:   opts.Step,
		Notify: func(event Event) {
			if event.Kind == EventBoardChanged || event.Kind == EventReset || event.Kind == EventGameOver {
				screen.Print(FormatBoard(event.State.Board))
			}
			screen.Print(Describe(event) + "\n")

			if opts.Bot && event.State.MyTurn && !event.State.Over {
				select {
				case botTurn <- struct{}{}:
				default:
				}
			}
		},
	})
	defer session.Close()

	screen.Print(fmt.Sprintf("Room: %s\nShare: %s\n", session.RoomID(), pkg.ShareURL(opts.PublicURL, session.RoomID())))

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- transport.Listen(ctx, session.Handle)
	}()

	if err = session.Join(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err = <-listenErr:
			if ctx.Err() != nil {
				return nil
			}

			return err
		case <-botTurn:
			state := session.State()
			if !state.MyTurn || state.Over {
				continue
			}

			position, moveErr := RandomMove(state.Board)
			if moveErr != nil {
				continue
			}

			screen.Print(fmt.Sprintf("Bot plays %d\n", position))
			if err = session.Click(ctx, position); err != nil {
				screen.Print(fmt.Sprintf("Move refused: %v\n", err))
			}
		case line, ok := <-lines:
			if !ok {
				if opts.Bot {
					lines = nil
					continue
				}

				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if strings.EqualFold(line, "r") {
				if err = session.Reset(ctx); err != nil {
					screen.Print(fmt.Sprintf("Reset refused: %v\n", err))
				}
				continue
			}

			position, convErr := strconv.Atoi(line)
			if convErr != nil {
				screen.Print("Enter a position from 0 to 8, or r to reset.\n")
				continue
			}

			if err = session.Click(ctx, position); err != nil {
				screen.Print(fmt.Sprintf("Move refused: %v\n", err))
				if errors.Is(err, context.Canceled) {
					return nil
				}
			}
		}
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (that *syncWriter) Print(s string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = io.WriteString(that.w, s)
}
