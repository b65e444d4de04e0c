// Package controller is the single source of truth for what the user sees.
// Views call its methods and render the snapshots it publishes.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
	apperrors "github.com/vladimiradmaev/nutriscan/internal/errors"
)

var (
	// ErrBusy is returned while an analysis or camera acquisition is in flight.
	ErrBusy = errors.New("another operation is in progress")
	// ErrInvalidTransition is returned for a trigger outside its source state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrEntryNotFound is returned by OpenHistory for an unknown entry ID.
	ErrEntryNotFound = errors.New("history entry not found")
	// ErrClosed is returned for any trigger after Close.
	ErrClosed = errors.New("controller is closed")
)

// MsgNoRecentScans is shown when the daily report has nothing to summarise.
const MsgNoRecentScans = "No scans found for the last 24 hours."

const reportWindow = 24 * time.Hour

// Camera is the capture component as seen by the controller.
type Camera interface {
	Activate(ctx context.Context) error
	Toggle(ctx context.Context) error
	Snapshot(ctx context.Context) (capture.Snapshot, error)
	Facing() capture.Facing
	Close()
}

// TransitionRecorder observes state changes.
type TransitionRecorder interface {
	ObserveTransition(state string)
}

// Snapshot is an immutable copy of everything a view renders.
type Snapshot struct {
	// Version increases with every published change; views may drop
	// snapshots older than the last one rendered.
	Version    uint64
	State      State
	Busy       bool
	Processing bool
	Progress   Progress
	Goal       domain.Goal
	Theme      domain.Theme
	History    []domain.HistoryEntry
}

// Observer receives snapshots. It is called outside the controller lock and
// must not block for long.
type Observer func(Snapshot)

// Config wires a controller. Analyzer, History, Preferences and Camera are
// required.
type Config struct {
	Analyzer    domain.Analyzer
	History     domain.HistoryStore
	Preferences domain.PreferencesStore
	Camera      Camera
	Logger      *slog.Logger
	Metrics     TransitionRecorder
	// TickEvery is the progress tick period; DefaultTickEvery when zero.
	TickEvery time.Duration
	Ticker    TickerFunc
	Now       func() time.Time
	NewID     func() string
}

// Controller owns the application state machine.
type Controller struct {
	analyzer    domain.Analyzer
	history     domain.HistoryStore
	preferences domain.PreferencesStore
	camera      Camera
	logger      *slog.Logger
	errHandler  *apperrors.Handler
	metrics     TransitionRecorder
	tickEvery   time.Duration
	ticker      TickerFunc
	now         func() time.Time
	newID       func() string

	mu             sync.Mutex
	state          State
	processing     bool
	acquiring      bool
	closed         bool
	goal           domain.Goal
	theme          domain.Theme
	progress       Progress
	progressGen    uint64
	cancelProgress context.CancelFunc
	version        uint64
	observers      map[int]Observer
	nextObserver   int
}

// New creates a controller in the Idle state with default preferences.
// Call Load to read persisted history and preferences.
func New(cfg Config) *Controller {
	c := &Controller{
		analyzer:    cfg.Analyzer,
		history:     cfg.History,
		preferences: cfg.Preferences,
		camera:      cfg.Camera,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		tickEvery:   cfg.TickEvery,
		ticker:      cfg.Ticker,
		now:         cfg.Now,
		newID:       cfg.NewID,
		state:       Idle{},
		goal:        domain.DefaultGoal,
		theme:       domain.ThemeLight,
		observers:   make(map[int]Observer),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tickEvery <= 0 {
		c.tickEvery = DefaultTickEvery
	}
	if c.ticker == nil {
		c.ticker = RealTicker
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	c.errHandler = apperrors.NewHandler(c.logger)
	return c
}

// Load reads history, goal and theme. Unreadable data falls back to
// defaults; startup is never aborted.
func (c *Controller) Load(ctx context.Context) {
	if err := c.history.Load(ctx); err != nil {
		c.logger.Warn("Failed to load history, starting empty", "error", err)
	}
	goal := c.preferences.Goal(ctx)
	theme := c.preferences.Theme(ctx)

	c.mu.Lock()
	c.goal = goal
	c.theme = theme
	c.mu.Unlock()
	c.publish()
}

// StartScan acquires the camera. A refused or missing camera moves to the
// Error state instead of Scanning.
func (c *Controller) StartScan(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked("start scan", KindIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	c.acquiring = true
	c.mu.Unlock()

	err := c.camera.Activate(ctx)
	c.finishAcquire(ctx, err)
	return nil
}

// ToggleCamera switches between the rear and front camera.
func (c *Controller) ToggleCamera(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked("toggle camera", KindScanning); err != nil {
		c.mu.Unlock()
		return err
	}
	c.acquiring = true
	c.mu.Unlock()

	err := c.camera.Toggle(ctx)
	c.finishAcquire(ctx, err)
	return nil
}

func (c *Controller) finishAcquire(ctx context.Context, err error) {
	c.mu.Lock()
	c.acquiring = false
	if c.closed {
		c.mu.Unlock()
		c.camera.Close()
		return
	}
	if err != nil {
		appErr := apperrors.NewPermissionError(err)
		c.errHandler.Handle(ctx, appErr)
		c.setStateLocked(Failed{Message: appErr.Message, Err: appErr})
	} else {
		c.setStateLocked(Scanning{Facing: c.camera.Facing()})
	}
	c.mu.Unlock()
	c.publish()
}

// CancelScan closes the scanner without analyzing anything.
func (c *Controller) CancelScan() error {
	c.mu.Lock()
	if err := c.checkLocked("cancel scan", KindScanning); err != nil {
		c.mu.Unlock()
		return err
	}
	c.camera.Close()
	c.setStateLocked(Idle{})
	c.mu.Unlock()

	c.publish()
	return nil
}

// Capture snapshots the current frame, releases the camera and analyzes
// the image. It blocks until the analysis finishes.
func (c *Controller) Capture(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked("capture", KindScanning); err != nil {
		c.mu.Unlock()
		return err
	}
	goal := c.goal
	c.setStateLocked(Analyzing{Mode: ModeImage})
	c.startProgressLocked()
	c.mu.Unlock()
	c.publish()

	snap, err := c.camera.Snapshot(ctx)
	if err != nil {
		c.fail(ctx, apperrors.NewCaptureError(err))
		return nil
	}

	record, err := c.analyzer.AnalyzeImage(ctx, domain.Image{Data: snap.Data, MIMEType: snap.MIMEType}, goal)
	c.finishAnalysis(ctx, record, snap.DataURI(), err)
	return nil
}

// Search analyzes a product by name. Blank text is ignored.
func (c *Controller) Search(ctx context.Context, text string) error {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil
	}

	c.mu.Lock()
	if err := c.checkLocked("search", KindIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	goal := c.goal
	c.setStateLocked(Analyzing{Mode: ModeText})
	c.startProgressLocked()
	c.mu.Unlock()
	c.publish()

	record, err := c.analyzer.AnalyzeText(ctx, query, goal)
	c.finishAnalysis(ctx, record, "", err)
	return nil
}

// GenerateDailyReport summarises entries from the last 24 hours. With no
// recent entries it fails without contacting the AI service.
func (c *Controller) GenerateDailyReport(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked("daily report", KindIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	entries := c.history.Since(c.now().Add(-reportWindow))
	if len(entries) == 0 {
		appErr := apperrors.NewEmptyInputError(MsgNoRecentScans)
		c.setStateLocked(Failed{Message: appErr.Message, Err: appErr})
		c.mu.Unlock()
		c.errHandler.Handle(ctx, appErr)
		c.publish()
		return nil
	}
	c.processing = true
	c.startProgressLocked()
	c.mu.Unlock()
	c.publish()

	report, err := c.analyzer.GenerateDailyReport(ctx, entries)
	if err != nil {
		c.fail(ctx, err)
		return nil
	}
	c.finish(ShowingDailyReport{Report: report})
	return nil
}

// GenerateGoalGuide builds the plan for the current goal.
func (c *Controller) GenerateGoalGuide(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked("goal guide", KindIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	goal := c.goal
	c.processing = true
	c.startProgressLocked()
	c.mu.Unlock()
	c.publish()

	guide, err := c.analyzer.GenerateGoalGuide(ctx, goal)
	if err != nil {
		c.fail(ctx, err)
		return nil
	}
	c.finish(ShowingGoalGuide{Guide: guide})
	return nil
}

// OpenHistory shows a stored record without analyzing it again.
func (c *Controller) OpenHistory(id string) error {
	c.mu.Lock()
	if err := c.checkLocked("open history", KindIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	entry, ok := c.history.Find(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	c.setStateLocked(ShowingResult{Record: entry.NutritionRecord, EntryID: entry.ID})
	c.mu.Unlock()
	c.publish()
	return nil
}

// Reset returns to Idle from a result, report, guide, error or the scanner.
// It is a no-op when already Idle.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.busyLocked() {
		c.mu.Unlock()
		return ErrBusy
	}
	kind := c.state.Kind()
	switch kind {
	case KindIdle:
		c.mu.Unlock()
		return nil
	case KindShowingResult, KindShowingDailyReport, KindShowingGoalGuide, KindError, KindScanning:
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: reset from %s", ErrInvalidTransition, kind)
	}
	if kind == KindScanning {
		c.camera.Close()
	}
	c.setStateLocked(Idle{})
	c.mu.Unlock()

	c.publish()
	return nil
}

// SetGoal changes the goal used by future requests. Results already shown
// or stored keep the goal they were scored against.
func (c *Controller) SetGoal(ctx context.Context, goal domain.Goal) error {
	if _, err := domain.ParseGoal(string(goal)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	c.mu.Lock()
	c.goal = goal
	c.mu.Unlock()

	if err := c.preferences.SetGoal(ctx, goal); err != nil {
		c.logger.Warn("Failed to persist goal", "goal", goal, "error", err)
	}
	c.publish()
	return nil
}

// SetTheme changes and persists the theme.
func (c *Controller) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()

	if err := c.preferences.SetTheme(ctx, theme); err != nil {
		c.logger.Warn("Failed to persist theme", "theme", theme, "error", err)
	}
	c.publish()
	return nil
}

// ToggleTheme flips between light and dark.
func (c *Controller) ToggleTheme(ctx context.Context) error {
	c.mu.Lock()
	next := c.theme.Toggle()
	c.mu.Unlock()
	return c.SetTheme(ctx, next)
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for every change and returns a function that
// removes it.
func (c *Controller) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Close stops the progress ticker and releases the camera. In-flight
// results arriving afterwards are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopProgressLocked()
	c.mu.Unlock()

	c.camera.Close()
}

func (c *Controller) finishAnalysis(ctx context.Context, record domain.NutritionRecord, thumbnail string, err error) {
	if err != nil {
		c.fail(ctx, err)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.stopProgressLocked()
		c.mu.Unlock()
		c.logger.Debug("Dropping result after close", "product", record.ProductName)
		return
	}
	c.mu.Unlock()

	entry := domain.HistoryEntry{
		NutritionRecord: record.Clone(),
		ID:              c.newID(),
		Timestamp:       c.now().UnixMilli(),
		ImageThumbnail:  thumbnail,
	}
	if err := c.history.Append(ctx, entry); err != nil {
		c.logger.Warn("Failed to persist history entry", "id", entry.ID, "error", err)
	}

	c.finish(ShowingResult{Record: record, EntryID: entry.ID})
}

func (c *Controller) fail(ctx context.Context, err error) {
	c.errHandler.Handle(ctx, err)
	c.finish(Failed{Message: apperrors.UserMessage(err), Err: err})
}

// finish leaves the busy state. After Close only the ticker is stopped.
func (c *Controller) finish(next State) {
	c.mu.Lock()
	c.stopProgressLocked()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.processing = false
	c.setStateLocked(next)
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) checkLocked(op string, from Kind) error {
	if c.closed {
		return ErrClosed
	}
	if c.busyLocked() {
		return ErrBusy
	}
	if c.state.Kind() != from {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, op, c.state.Kind())
	}
	return nil
}

func (c *Controller) busyLocked() bool {
	return c.acquiring || c.processing || c.state.Kind() == KindAnalyzing
}

func (c *Controller) setStateLocked(s State) {
	c.state = s
	if c.metrics != nil {
		c.metrics.ObserveTransition(s.Kind().String())
	}
	c.logger.Debug("State changed", "state", s.Kind().String())
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Version:    c.version,
		State:      cloneState(c.state),
		Busy:       c.processing || c.state.Kind() == KindAnalyzing,
		Processing: c.processing,
		Progress:   c.progress,
		Goal:       c.goal,
		Theme:      c.theme,
		History:    c.history.All(),
	}
}

func (c *Controller) observersLocked() []Observer {
	out := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		out = append(out, fn)
	}
	return out
}

func (c *Controller) publish() {
	c.mu.Lock()
	c.version++
	snap := c.snapshotLocked()
	observers := c.observersLocked()
	c.mu.Unlock()

	notify(observers, snap)
}

func notify(observers []Observer, snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}
