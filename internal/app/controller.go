package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mathquiz/internal/arith"
	"mathquiz/internal/domain"
)

const (
	// PointsPerCorrectAnswer is awarded before the time bonus.
	PointsPerCorrectAnswer = 10

	tickInterval = time.Second
	storeTimeout = 5 * time.Second
)

// Controller runs one player's quiz: intro, questions against a countdown, name
// entry and the leaderboard. Every method takes the same lock, so user input and
// timer ticks never interleave.
type Controller struct {
	id        string
	cfg       domain.QuizConfig
	board     *Leaderboard
	view      View
	scheduler Scheduler
	recorder  ResultRecorder
	gen       *arith.Generator
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    domain.SessionState
	choices  domain.AnswerChoices
	timer    Timer
	timerSeq uint64
	closed   bool
}

// NewController validates cfg and returns a controller on the intro screen.
func NewController(id string, cfg domain.QuizConfig, board *Leaderboard, view View, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	gen := arith.NewGenerator(nil)
	if o.generators != nil {
		gen = o.generators()
	}
	c := &Controller{
		id:        id,
		cfg:       cfg,
		board:     board,
		view:      view,
		scheduler: o.scheduler,
		recorder:  o.recorder,
		gen:       gen,
		logger:    o.logger.With().Str("session", id).Logger(),
		now:       o.now,
	}
	c.state = c.initialState()
	return c, nil
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) initialState() domain.SessionState {
	return domain.SessionState{
		Questions:               []string{},
		PlayerName:              domain.DefaultPlayerName,
		TimeRemainingInQuestion: c.cfg.QuestionTimeout,
		Screen:                  domain.ScreenIntro,
	}
}

// Init draws the intro screen.
func (c *Controller) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showScreen(domain.ScreenIntro)
}

// Start begins a new quiz. It does nothing while a quiz is already running.
func (c *Controller) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	if c.state.Active {
		return nil
	}

	c.stopTimer()
	c.state = c.initialState()
	c.state.Questions = c.gen.Questions(c.cfg.NumberOfQuestions)
	c.showScreen(domain.ScreenPlaying)
	if err := c.presentQuestion(); err != nil {
		c.showScreen(domain.ScreenIntro)
		return err
	}
	c.view.SetSlot(domain.SlotScore, c.state.Score)
	c.startTimer()
	c.state.Active = true

	c.logger.Debug().Strs("questions", c.state.Questions).Msg("quiz started")
	return nil
}

// Answer selects the answer at index. It reports whether the answer was correct.
func (c *Controller) Answer(ctx context.Context, index int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, domain.ErrSessionClosed
	}
	if !c.state.Active {
		return false, domain.ErrNoActiveQuiz
	}
	if index < 0 || index >= len(c.choices.Values) {
		return false, fmt.Errorf("%w: %d", domain.ErrAnswerOutOfRange, index)
	}

	if index == c.choices.CorrectIndex {
		return true, c.submitAnswer(ctx, PointsPerCorrectAnswer, true)
	}
	return false, c.submitAnswer(ctx, 0, false)
}

// Tick advances the countdown of the running question by one second.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer == nil {
		return
	}
	c.tick()
}

func (c *Controller) onTimer(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// A tick from a timer that has since been replaced or stopped.
	if c.timer == nil || seq != c.timerSeq {
		return
	}
	c.tick()
}

func (c *Controller) tick() {
	if c.state.TimeRemainingInQuestion <= 0 {
		c.stopTimer()
		c.state.TimeRemainingInQuestion = 0
		c.logger.Debug().Int("question", c.state.QuestionIndex).Msg("question timed out")

		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := c.submitAnswer(ctx, 0, false); err != nil {
			c.logger.Error().Err(err).Msg("timeout answer")
		}
		return
	}
	c.state.TimeElapsedInQuestion++
	c.state.TimeRemainingInQuestion--
	c.view.SetSlot(domain.SlotTime, c.state.TimeRemainingInQuestion)
}

func (c *Controller) submitAnswer(ctx context.Context, points int, awardTimeBonus bool) error {
	bonus := 0
	if awardTimeBonus {
		bonus = c.state.TimeRemainingInQuestion
	}
	c.state.Score += points + bonus
	c.view.SetSlot(domain.SlotScore, c.state.Score)

	// QuestionIndex counts questions already shown, so equality means the last one was answered.
	if c.state.QuestionIndex >= c.cfg.NumberOfQuestions {
		return c.end(ctx)
	}
	if err := c.presentQuestion(); err != nil {
		return err
	}
	c.startTimer()
	return nil
}

func (c *Controller) presentQuestion() error {
	question := c.state.Questions[c.state.QuestionIndex]
	choices, err := c.gen.Choices(question, c.cfg.NumberOfAnswers)
	if err != nil {
		return fmt.Errorf("answers for %q: %w", question, err)
	}
	c.choices = choices

	c.view.SetSlot(domain.SlotQuestion, question)
	c.view.SetSlot(domain.SlotAnswers, append([]string(nil), choices.Labels...))
	c.state.QuestionIndex++
	c.view.SetSlot(domain.SlotQuestionNumber, c.state.QuestionIndex)
	return nil
}

func (c *Controller) startTimer() {
	c.view.SetSlot(domain.SlotTime, c.cfg.QuestionTimeout)
	c.stopTimer()
	c.timerSeq++
	seq := c.timerSeq
	c.timer = c.scheduler.Every(tickInterval, func() { c.onTimer(seq) })
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.state.TimeElapsedInQuestion = 0
	c.state.TimeRemainingInQuestion = c.cfg.QuestionTimeout
}

func (c *Controller) end(ctx context.Context) error {
	c.stopTimer()
	c.state.Active = false
	c.choices = domain.AnswerChoices{}

	decision, err := c.board.Admit(ctx, c.state.PlayerName, c.state.Score)
	if err != nil {
		c.record(ctx, false)
		c.showScreen(domain.ScreenIntro)
		return fmt.Errorf("leaderboard admission: %w", err)
	}
	admitted := decision == domain.PendingNameEntry
	c.record(ctx, admitted)
	c.logger.Info().Int("score", c.state.Score).Stringer("decision", decision).Msg("quiz finished")

	if !admitted {
		c.showScreen(domain.ScreenIntro)
		return nil
	}
	c.state.NameEntryOpen = true
	c.showScreen(domain.ScreenNameEntry)
	c.view.SetSlot(domain.SlotNameInput, "")
	return nil
}

func (c *Controller) record(ctx context.Context, admitted bool) {
	if c.recorder == nil {
		return
	}
	result := domain.SessionResult{
		SessionID:  c.id,
		PlayerName: c.state.PlayerName,
		Score:      c.state.Score,
		Questions:  c.state.QuestionIndex,
		Admitted:   admitted,
		FinishedAt: c.now(),
	}
	if err := c.recorder.Record(ctx, result); err != nil {
		c.logger.Warn().Err(err).Msg("record session result")
	}
}

// ChangeName stores the text currently typed into the name field.
func (c *Controller) ChangeName(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	c.state.PlayerName = name
	return nil
}

// ConfirmName enters the pending result under the typed name and shows the leaderboard.
func (c *Controller) ConfirmName(ctx context.Context) (domain.Leaderboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.Leaderboard{}, domain.ErrSessionClosed
	}
	if !c.state.NameEntryOpen {
		return domain.Leaderboard{}, domain.ErrNameEntryClosed
	}

	lb, err := c.board.Commit(ctx, c.state.PlayerName, c.state.Score)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("commit result: %w", err)
	}
	c.view.SetSlot(domain.SlotTopResults, lb)
	c.showScreen(domain.ScreenLeaderboard)
	c.state.NameEntryOpen = false

	c.logger.Info().Str("name", c.state.PlayerName).Int("score", c.state.Score).Msg("leaderboard entry committed")
	return lb, nil
}

// ShowLeaderboard moves from the intro screen straight to the leaderboard.
func (c *Controller) ShowLeaderboard(ctx context.Context) (domain.Leaderboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.Leaderboard{}, domain.ErrSessionClosed
	}
	if c.state.Screen != domain.ScreenIntro {
		return domain.Leaderboard{}, fmt.Errorf("%w: leaderboard from %s", domain.ErrInvalidTransition, c.state.Screen)
	}
	lb, err := c.board.Snapshot(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	c.view.SetSlot(domain.SlotTopResults, lb)
	c.showScreen(domain.ScreenLeaderboard)
	return lb, nil
}

// BackToIntro returns from the leaderboard to the intro screen.
func (c *Controller) BackToIntro() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	if c.state.Screen != domain.ScreenLeaderboard {
		return fmt.Errorf("%w: intro from %s", domain.ErrInvalidTransition, c.state.Screen)
	}
	c.showScreen(domain.ScreenIntro)
	return nil
}

func (c *Controller) showScreen(screen domain.Screen) {
	c.state.Screen = screen
	c.view.ShowScreen(screen)
}

// State returns a copy of the session state.
func (c *Controller) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.state
	state.Questions = append([]string(nil), c.state.Questions...)
	return state
}

// Choices returns the answers on screen for the current question.
func (c *Controller) Choices() domain.AnswerChoices {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.AnswerChoices{
		Values:       append([]float64(nil), c.choices.Values...),
		Labels:       append([]string(nil), c.choices.Labels...),
		CorrectIndex: c.choices.CorrectIndex,
	}
}

// Close stops the timer; the controller rejects input afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimer()
	c.state.Active = false
	c.closed = true
}
