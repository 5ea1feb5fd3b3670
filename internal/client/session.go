package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/pkg"
)

const (
	countdownSteps = 3
	defaultStep    = time.Second
)

type transport interface {
	Send(ctx context.Context, msg entity.Message) error
}

type EventKind string

const (
	EventStarted      EventKind = "started"
	EventBoardChanged EventKind = "board_changed"
	EventGameOver     EventKind = "game_over"
	EventCountdown    EventKind = "countdown"
	EventReset        EventKind = "reset"
	EventOpponentLeft EventKind = "opponent_left"
	EventError        EventKind = "error"
)

// Event is what a Session reports to its view. State is taken right after the change.
type Event struct {
	Kind  EventKind
	State State
	// Step counts down from 3 on EventCountdown.
	Step int
	Err  error
}

type State struct {
	RoomID  string
	Symbol  entity.Symbol
	Board   entity.Board
	Ready   bool
	MyTurn  bool
	Over    bool
	Outcome entity.Outcome
}

type Options struct {
	// RoomID is generated when empty.
	RoomID string
	// Step is the length of one countdown tick.
	Step time.Duration
	// Notify receives events one at a time. It must not call back into the Session
	// synchronously.
	Notify func(Event)
}

// Session is one player's view of a game. The board only changes through
// confirmed local clicks and moves relayed from the opponent.
type Session struct {
	logger    *slog.Logger
	transport transport
	notify    func(Event)
	step      time.Duration

	// ctx lives until Close and bounds every countdown.
	ctx  context.Context
	stop context.CancelFunc

	// emitMu keeps events in the order their state changes happened.
	emitMu sync.Mutex

	mu              sync.Mutex
	roomID          string
	symbol          entity.Symbol
	board           entity.Board
	ready           bool
	myTurn          bool
	over            bool
	outcome         entity.Outcome
	cancelCountdown context.CancelFunc
	generation      uint64
	// autoResetAt is when the countdown last sent a reset. The opponent's countdown may
	// send its own reset for the same finished game; that one is a duplicate.
	autoResetAt time.Time
}

func NewSession(logger *slog.Logger, transport transport, opts Options) *Session {
	if opts.RoomID == "" {
		opts.RoomID = pkg.GenerateRoomID()
	}

	if opts.Step <= 0 {
		opts.Step = defaultStep
	}

	if opts.Notify == nil {
		opts.Notify = func(Event) {}
	}

	ctx, stop := context.WithCancel(context.Background())

	return &Session{
		logger:    logger.With("component", "session", "roomID", opts.RoomID),
		transport: transport,
		notify:    opts.Notify,
		step:      opts.Step,
		ctx:       ctx,
		stop:      stop,
		roomID:    opts.RoomID,
	}
}

func (that *Session) RoomID() string {
	return that.roomID
}

func (that *Session) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.stateLocked()
}

// Join asks the relay for a seat in the session's room.
func (that *Session) Join(ctx context.Context) error {
	if err := that.transport.Send(ctx, entity.NewJoinMessage(that.roomID)); err != nil {
		return fmt.Errorf("failed to join room %s: %w", that.roomID, err)
	}

	return nil
}

// Click plays position for the local player. It returns apperror.ErrGameFinished,
// apperror.ErrGameIsNotStarted, apperror.ErrNotYourTurn or apperror.ErrCellOccupied
// when the click is not allowed.
func (that *Session) Click(ctx context.Context, position int) error {
	that.mu.Lock()
	events, err := that.clickLocked(ctx, position)
	that.mu.Unlock()

	that.emit(events...)

	return err
}

func (that *Session) clickLocked(ctx context.Context, position int) ([]Event, error) {
	switch {
	case that.over:
		return nil, apperror.ErrGameFinished
	case !that.ready:
		return nil, apperror.ErrGameIsNotStarted
	case !that.myTurn:
		return nil, apperror.ErrNotYourTurn
	}

	next := that.board
	if err := next.Place(position, that.symbol); err != nil {
		return nil, err
	}

	if err := that.transport.Send(ctx, entity.NewMoveMessage(position, that.symbol)); err != nil {
		return nil, fmt.Errorf("failed to send move: %w", err)
	}

	that.board = next
	that.myTurn = false

	events := []Event{{Kind: EventBoardChanged, State: that.stateLocked()}}

	outcome := that.board.Outcome()
	if outcome.Tie {
		if err := that.transport.Send(ctx, entity.NewTieMessage()); err != nil {
			return events, fmt.Errorf("failed to send tie: %w", err)
		}
	}

	if outcome.IsOver() {
		events = append(events, that.finishLocked(outcome))
	}

	return events, nil
}

// Reset clears the board on both ends and restarts the turn order with X.
func (that *Session) Reset(ctx context.Context) error {
	that.mu.Lock()

	if !that.ready {
		that.mu.Unlock()
		return apperror.ErrGameIsNotStarted
	}

	if err := that.transport.Send(ctx, entity.NewResetMessage()); err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to send reset: %w", err)
	}

	that.clearLocked()
	state := that.stateLocked()
	that.mu.Unlock()

	that.emit(Event{Kind: EventReset, State: state})

	return nil
}

// Handle applies a message received from the relay.
func (that *Session) Handle(msg entity.Message) {
	that.mu.Lock()
	events := that.handleLocked(msg)
	that.mu.Unlock()

	that.emit(events...)
}

func (that *Session) handleLocked(msg entity.Message) []Event {
	log := that.logger.With("method", "Handle", "type", msg.Type)

	switch msg.Type {
	case entity.MessageStart:
		if !msg.PlayerID.IsValid() {
			log.Warn("start without a mark ignored", "playerId", msg.PlayerID)
			return nil
		}

		that.symbol = msg.PlayerID
		that.ready = msg.Ready
		that.clearLocked()

		return []Event{{Kind: EventStarted, State: that.stateLocked()}}

	case entity.MessageMove:
		if msg.Position == nil || that.over || !that.ready {
			log.Debug("move ignored", "over", that.over, "ready", that.ready)
			return nil
		}

		if err := that.board.Place(*msg.Position, that.symbol.Opponent()); err != nil {
			log.Warn("opponent move rejected", "position", *msg.Position, "error", err)
			return nil
		}

		that.myTurn = true
		that.autoResetAt = time.Time{}

		events := []Event{{Kind: EventBoardChanged, State: that.stateLocked()}}
		if outcome := that.board.Outcome(); outcome.IsOver() {
			events = append(events, that.finishLocked(outcome))
		}

		return events

	case entity.MessageTie:
		if that.over {
			return nil
		}

		return []Event{that.finishLocked(entity.Outcome{Tie: true})}

	case entity.MessageReset:
		if that.isDuplicateResetLocked() {
			that.autoResetAt = time.Time{}
			log.Debug("reset ignored, the countdown already cleared this game")
			return nil
		}

		that.clearLocked()

		return []Event{{Kind: EventReset, State: that.stateLocked()}}

	case entity.MessageOpponentLeft:
		that.haltLocked()

		return []Event{{Kind: EventOpponentLeft, State: that.stateLocked()}}

	case entity.MessageError:
		that.haltLocked()

		return []Event{{Kind: EventError, State: that.stateLocked(), Err: errorFromMessage(msg)}}

	default:
		log.Debug("unknown message type ignored")
		return nil
	}
}

// Close stops a running countdown. The transport is closed by its owner.
func (that *Session) Close() {
	that.stop()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelCountdownLocked()
}

// isDuplicateResetLocked reports whether an incoming reset belongs to the game the
// countdown just cleared: a reset was sent less than one step ago and no opponent
// move arrived since.
func (that *Session) isDuplicateResetLocked() bool {
	if that.over || that.autoResetAt.IsZero() {
		return false
	}

	return time.Since(that.autoResetAt) < that.step
}

func (that *Session) finishLocked(outcome entity.Outcome) Event {
	that.over = true
	that.myTurn = false
	that.outcome = outcome

	that.startCountdownLocked()

	return Event{Kind: EventGameOver, State: that.stateLocked()}
}

// haltLocked ends the game without scheduling a reset.
func (that *Session) haltLocked() {
	that.cancelCountdownLocked()
	that.over = true
	that.myTurn = false
}

// clearLocked empties the board and restarts the turn order with X.
func (that *Session) clearLocked() {
	that.cancelCountdownLocked()
	that.board.Reset()
	that.over = false
	that.outcome = entity.Outcome{}
	that.myTurn = that.ready && that.symbol == entity.PlayerX
	that.autoResetAt = time.Time{}
}

func (that *Session) startCountdownLocked() {
	if that.cancelCountdown != nil {
		return
	}

	that.generation++
	ctx, cancel := context.WithCancel(that.ctx)
	that.cancelCountdown = cancel

	go that.countdown(ctx, that.generation)
}

func (that *Session) cancelCountdownLocked() {
	if that.cancelCountdown == nil {
		return
	}

	that.cancelCountdown()
	that.cancelCountdown = nil
}

func (that *Session) countdown(ctx context.Context, generation uint64) {
	ticker := time.NewTicker(that.step)
	defer ticker.Stop()

	for step := countdownSteps; step > 0; step-- {
		if !that.emitCountdown(ctx, step) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}

	that.mu.Lock()
	if generation != that.generation || ctx.Err() != nil {
		that.mu.Unlock()
		return
	}

	that.clearLocked()
	that.autoResetAt = time.Now()
	state := that.stateLocked()

	// sent under the lock so no local move can overtake the reset
	err := that.transport.Send(that.ctx, entity.NewResetMessage())
	that.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		that.logger.Warn("failed to send reset", "error", err)
	}

	that.emit(Event{Kind: EventReset, State: state})
}

func (that *Session) stateLocked() State {
	return State{
		RoomID:  that.roomID,
		Symbol:  that.symbol,
		Board:   that.board,
		Ready:   that.ready,
		MyTurn:  that.myTurn,
		Over:    that.over,
		Outcome: that.outcome,
	}
}

func (that *Session) emit(events ...Event) {
	that.emitMu.Lock()
	defer that.emitMu.Unlock()

	for _, event := range events {
		that.notify(event)
	}
}

// emitCountdown reports one countdown step unless the countdown was cancelled.
// The check and the notification happen under emitMu, so a reset that cancels the
// countdown is always reported after the last step.
func (that *Session) emitCountdown(ctx context.Context, step int) bool {
	that.emitMu.Lock()
	defer that.emitMu.Unlock()

	that.mu.Lock()
	if ctx.Err() != nil {
		that.mu.Unlock()
		return false
	}
	state := that.stateLocked()
	that.mu.Unlock()

	that.notify(Event{Kind: EventCountdown, State: state, Step: step})

	return true
}

func errorFromMessage(msg entity.Message) error {
	var sentinel error

	switch msg.Code {
	case "room_full":
		sentinel = apperror.ErrRoomFull
	case "room_closed":
		sentinel = apperror.ErrRoomClosed
	case "already_joined":
		sentinel = apperror.ErrAlreadyJoined
	case "not_joined":
		sentinel = apperror.ErrNotJoined
	case "invalid_room":
		sentinel = apperror.ErrInvalidRoomID
	default:
		return fmt.Errorf("relay error %s: %s", msg.Code, msg.Error)
	}

	return fmt.Errorf("%w: %s", sentinel, msg.Error)
}
