package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/config"
	"github.com/aetherboard/aetherboard/internal/domain"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// State is where a user's conversation stands.
type State string

const (
	StateIdle                 State = "idle"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateExecuting            State = "executing"
)

const defaultUndoDepth = 10

var (
	confirmWords = map[string]bool{"yes": true, "confirm": true, "ok": true}
	cancelWords  = map[string]bool{"no": true, "cancel": true}
)

// Timesheets is the slice of the timesheet service the actions drive.
type Timesheets interface {
	Today() time.Time
	Submit(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, error)
	Withdraw(ctx context.Context, userID, sheetID string) (*domain.Timesheet, error)
	FillVacationLeave(ctx context.Context, userID string, day time.Time) (*domain.Timesheet, []string, error)
	RemoveEntries(ctx context.Context, userID string, entryIDs []string) error
	ListForReview(ctx context.Context, reviewer *domain.Profile, status domain.TimesheetStatus, week *time.Time) ([]domain.Timesheet, error)
	Review(ctx context.Context, reviewer *domain.Profile, sheetID string, approve bool) (*domain.Timesheet, error)
	ReopenReview(ctx context.Context, reviewer *domain.Profile, sheetID string) (*domain.Timesheet, error)
}

// Response is what one user message produces.
type Response struct {
	Replies []string `json:"replies"`
	State   State    `json:"state"`
}

// Dependencies bundles collaborators for the assistant.
type Dependencies struct {
	Catalog    Catalog
	Timesheets Timesheets
	Logger     *zap.Logger
}

type undoEntry struct {
	label  string
	revert func(ctx context.Context) error
}

type conversation struct {
	state   State
	pending *Intent
	undo    []undoEntry
}

// Assistant answers persona chats. Conversations are kept in memory per user.
type Assistant struct {
	catalog    Catalog
	timesheets Timesheets
	undoDepth  int
	logger     *zap.Logger

	mu    sync.Mutex
	convs map[string]*conversation
}

func New(cfg config.AssistantConfig, deps Dependencies) *Assistant {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	depth := cfg.UndoDepth
	if depth <= 0 {
		depth = defaultUndoDepth
	}
	return &Assistant{
		catalog:    deps.Catalog,
		timesheets: deps.Timesheets,
		undoDepth:  depth,
		logger:     logger,
		convs:      make(map[string]*conversation),
	}
}

// Greeting returns the opening line of persona.
func (a *Assistant) Greeting(persona string) (string, error) {
	p, err := a.persona(persona)
	if err != nil {
		return "", err
	}
	return p.Greeting, nil
}

// State reports the conversation state of userID.
func (a *Assistant) State(userID string) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.convs[userID]; ok {
		return c.state
	}
	return StateIdle
}

// Reply handles one message from user to persona.
func (a *Assistant) Reply(ctx context.Context, persona string, user *domain.Profile, text string) (*Response, error) {
	p, err := a.persona(persona)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}

	a.mu.Lock()
	conv := a.conversation(user.ID)
	switch conv.state {
	case StateExecuting:
		a.mu.Unlock()
		return &Response{Replies: []string{"Still working on your last request."}, State: StateExecuting}, nil

	case StateAwaitingConfirmation:
		word := answerWord(text)
		switch {
		case confirmWords[word]:
			intent := conv.pending
			conv.pending = nil
			conv.state = StateExecuting
			a.mu.Unlock()
			return a.execute(ctx, user, intent), nil
		case cancelWords[word]:
			conv.pending = nil
			conv.state = StateIdle
			a.mu.Unlock()
			return &Response{Replies: []string{"Okay, I won't do that."}, State: StateIdle}, nil
		default:
			prompt := conv.pending.Reply
			a.mu.Unlock()
			return &Response{Replies: []string{"Please answer yes or no. " + prompt}, State: StateAwaitingConfirmation}, nil
		}
	}

	intent, ok := p.Match(text)
	if !ok {
		a.mu.Unlock()
		return &Response{Replies: []string{p.Fallback}, State: StateIdle}, nil
	}
	if intent.Action == "" {
		a.mu.Unlock()
		return &Response{Replies: []string{intent.Reply}, State: StateIdle}, nil
	}
	if intent.Confirm {
		conv.pending = intent
		conv.state = StateAwaitingConfirmation
		a.mu.Unlock()
		return &Response{Replies: []string{intent.Reply + " (yes/no)"}, State: StateAwaitingConfirmation}, nil
	}
	conv.state = StateExecuting
	a.mu.Unlock()
	return a.execute(ctx, user, intent), nil
}

// execute runs intent with the conversation already marked executing.
func (a *Assistant) execute(ctx context.Context, user *domain.Profile, intent *Intent) *Response {
	var (
		reply string
		entry *undoEntry
		err   error
	)
	if intent.Action == ActionUndo {
		reply, err = a.undo(ctx, user.ID)
	} else {
		reply, entry, err = a.run(ctx, user, intent.Action)
	}

	a.mu.Lock()
	conv := a.conversation(user.ID)
	conv.state = StateIdle
	if entry != nil {
		conv.undo = append(conv.undo, *entry)
		if over := len(conv.undo) - a.undoDepth; over > 0 {
			conv.undo = append([]undoEntry(nil), conv.undo[over:]...)
		}
	}
	a.mu.Unlock()

	if err != nil {
		return &Response{Replies: []string{a.failure(intent.Action, user.ID, err)}, State: StateIdle}
	}
	return &Response{Replies: []string{reply}, State: StateIdle}
}

func (a *Assistant) run(ctx context.Context, user *domain.Profile, action string) (string, *undoEntry, error) {
	switch action {
	case ActionSubmitTimesheet:
		return a.submitTimesheet(ctx, user)
	case ActionFillVacationLeave:
		return a.fillVacationLeave(ctx, user)
	case ActionApprovePendingTimesheets:
		return a.approvePending(ctx, user)
	}
	return "", nil, fmt.Errorf("unknown action %q", action)
}

func (a *Assistant) undo(ctx context.Context, userID string) (string, error) {
	a.mu.Lock()
	conv := a.conversation(userID)
	if len(conv.undo) == 0 {
		a.mu.Unlock()
		return "There is nothing to undo.", nil
	}
	last := conv.undo[len(conv.undo)-1]
	conv.undo = conv.undo[:len(conv.undo)-1]
	a.mu.Unlock()

	if err := last.revert(ctx); err != nil {
		return "", err
	}
	return "Undone: " + last.label + ".", nil
}

func (a *Assistant) failure(action, userID string, err error) string {
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus >= 500 {
		a.logger.Error("assistant action failed",
			zap.String("action", action),
			zap.String("user_id", userID),
			zap.Error(err))
		return "Something went wrong, please try again later."
	}
	return "I couldn't do that: " + domainErr.Message
}

func (a *Assistant) persona(name string) (*Persona, error) {
	p, ok := a.catalog[strings.ToLower(name)]
	if !ok {
		return nil, apperrors.NewNotFound("persona", map[string]any{"persona": name})
	}
	return p, nil
}

// conversation must be called with mu held.
func (a *Assistant) conversation(userID string) *conversation {
	c, ok := a.convs[userID]
	if !ok {
		c = &conversation{state: StateIdle}
		a.convs[userID] = c
	}
	return c
}

func answerWord(text string) string {
	return strings.Trim(strings.ToLower(text), " .!")
}
