package app_test

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"mathquiz/internal/app"
	"mathquiz/internal/arith"
	"mathquiz/internal/domain"
	"mathquiz/internal/infra/memory"
)

type harness struct {
	ctrl  *app.Controller
	view  *app.RecordingView
	sched *app.ManualScheduler
	board *app.Leaderboard
}

func newHarness(t *testing.T, questions, timeout int, opts ...app.Option) harness {
	t.Helper()
	cfg := domain.DefaultQuizConfig()
	cfg.NumberOfQuestions = questions
	cfg.QuestionTimeout = timeout

	h := harness{
		view:  app.NewRecordingView(),
		sched: app.NewManualScheduler(),
		board: app.NewLeaderboard(memory.NewLeaderboardStore(), cfg.NumberOfBestResults),
	}
	opts = append([]app.Option{
		app.WithScheduler(h.sched),
		app.WithGenerators(seededGenerators(11)),
	}, opts...)
	ctrl, err := app.NewController("test", cfg, h.board, h.view, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	ctrl.Init()
	h.ctrl = ctrl
	return h
}

func seededGenerators(seed int64) func() *arith.Generator {
	return func() *arith.Generator {
		return arith.NewGenerator(rand.New(rand.NewSource(seed)))
	}
}

func (h harness) answerCorrect(t *testing.T) {
	t.Helper()
	choices := h.ctrl.Choices()
	correct, err := h.ctrl.Answer(context.Background(), choices.CorrectIndex)
	if err != nil || !correct {
		t.Fatalf("answer correct: correct=%v err=%v", correct, err)
	}
}

func (h harness) answerWrong(t *testing.T) {
	t.Helper()
	choices := h.ctrl.Choices()
	wrong := (choices.CorrectIndex + 1) % len(choices.Values)
	correct, err := h.ctrl.Answer(context.Background(), wrong)
	if err != nil || correct {
		t.Fatalf("answer wrong: correct=%v err=%v", correct, err)
	}
}

func TestStartRendersFirstQuestion(t *testing.T) {
	h := newHarness(t, 5, 10)
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	state := h.ctrl.State()
	if !state.Active || state.Screen != domain.ScreenPlaying {
		t.Fatalf("expected active playing state, got %+v", state)
	}
	if len(state.Questions) != 5 || state.QuestionIndex != 1 {
		t.Fatalf("expected 5 questions with the first shown, got %+v", state)
	}
	if q, _ := h.view.Slot(domain.SlotQuestion); q != state.Questions[0] {
		t.Fatalf("question slot %v, want %s", q, state.Questions[0])
	}
	if n, _ := h.view.Slot(domain.SlotQuestionNumber); n != 1 {
		t.Fatalf("question number slot %v", n)
	}
	if s, _ := h.view.Slot(domain.SlotScore); s != 0 {
		t.Fatalf("score slot %v", s)
	}
	if tm, _ := h.view.Slot(domain.SlotTime); tm != 10 {
		t.Fatalf("time slot %v", tm)
	}
	answers, _ := h.view.Slot(domain.SlotAnswers)
	if labels, ok := answers.([]string); !ok || len(labels) != 4 {
		t.Fatalf("answers slot %v", answers)
	}
	if h.sched.Live() != 1 {
		t.Fatalf("expected one live timer, got %d", h.sched.Live())
	}
}

func TestCorrectAnswerAddsTimeBonus(t *testing.T) {
	h := newHarness(t, 1, 10)
	_ = h.ctrl.Start(context.Background())

	h.answerCorrect(t)

	state := h.ctrl.State()
	if state.Score != 20 {
		t.Fatalf("expected 10 + 10 bonus, got %d", state.Score)
	}
	if state.Active {
		t.Fatalf("expected quiz to end after the only question")
	}
	if state.Screen != domain.ScreenNameEntry || !state.NameEntryOpen {
		t.Fatalf("expected name entry, got %+v", state)
	}
	if v, ok := h.view.Slot(domain.SlotNameInput); !ok || v != "" {
		t.Fatalf("expected name input cleared, got %v", v)
	}
	if h.sched.Live() != 0 {
		t.Fatalf("expected no live timer after end")
	}
}

func TestBonusShrinksWithElapsedTime(t *testing.T) {
	h := newHarness(t, 1, 10)
	_ = h.ctrl.Start(context.Background())
	for i := 0; i < 4; i++ {
		h.sched.Fire()
	}
	h.answerCorrect(t)
	if got := h.ctrl.State().Score; got != 16 {
		t.Fatalf("expected 10 + 6 bonus, got %d", got)
	}
}

func TestWrongAnswerScoresNothing(t *testing.T) {
	h := newHarness(t, 2, 10)
	_ = h.ctrl.Start(context.Background())

	h.answerWrong(t)
	state := h.ctrl.State()
	if state.Score != 0 || state.QuestionIndex != 2 || !state.Active {
		t.Fatalf("expected second question with no points, got %+v", state)
	}

	h.answerWrong(t)
	state = h.ctrl.State()
	if state.Active || state.Score != 0 {
		t.Fatalf("expected finished quiz with 0 points, got %+v", state)
	}
	if state.Screen != domain.ScreenIntro {
		t.Fatalf("zero score must be rejected back to intro, got %s", state.Screen)
	}
}

func TestTimerInvariantAndTimeout(t *testing.T) {
	const timeout = 10
	h := newHarness(t, 2, timeout)
	_ = h.ctrl.Start(context.Background())

	for i := 1; i <= timeout; i++ {
		h.sched.Fire()
		state := h.ctrl.State()
		if state.TimeElapsedInQuestion+state.TimeRemainingInQuestion != timeout {
			t.Fatalf("tick %d: elapsed %d + remaining %d != %d", i, state.TimeElapsedInQuestion, state.TimeRemainingInQuestion, timeout)
		}
		if state.TimeElapsedInQuestion != i {
			t.Fatalf("tick %d: elapsed %d", i, state.TimeElapsedInQuestion)
		}
		if v, _ := h.view.Slot(domain.SlotTime); v != timeout-i {
			t.Fatalf("tick %d: time slot %v", i, v)
		}
	}
	if got := h.ctrl.State().QuestionIndex; got != 1 {
		t.Fatalf("still expected first question at 0 remaining, got %d", got)
	}

	// One tick past the limit counts as a wrong answer.
	h.sched.Fire()
	state := h.ctrl.State()
	if state.QuestionIndex != 2 || state.Score != 0 {
		t.Fatalf("expected timeout to advance with no points, got %+v", state)
	}
	if state.TimeRemainingInQuestion != timeout || state.TimeElapsedInQuestion != 0 {
		t.Fatalf("expected fresh countdown, got %+v", state)
	}
	if h.sched.Live() != 1 {
		t.Fatalf("expected exactly one live timer, got %d", h.sched.Live())
	}
}

func TestTimeoutOnLastQuestionEndsQuiz(t *testing.T) {
	h := newHarness(t, 1, 3)
	_ = h.ctrl.Start(context.Background())
	for i := 0; i < 4; i++ {
		h.sched.Fire()
	}
	state := h.ctrl.State()
	if state.Active || state.Screen != domain.ScreenIntro {
		t.Fatalf("expected timed-out quiz back on intro, got %+v", state)
	}
	if h.sched.Live() != 0 {
		t.Fatalf("expected timer cancelled")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	h := newHarness(t, 3, 10)
	_ = h.ctrl.Start(context.Background())
	h.answerWrong(t)

	before := h.ctrl.State()
	h.sched.FireStopped()
	after := h.ctrl.State()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("stale tick changed state: %+v -> %+v", before, after)
	}
}

func TestTickWithoutTimerIsNoop(t *testing.T) {
	h := newHarness(t, 1, 10)
	before := h.ctrl.State()
	h.ctrl.Tick()
	if !reflect.DeepEqual(before, h.ctrl.State()) {
		t.Fatalf("tick on intro changed state")
	}

	_ = h.ctrl.Start(context.Background())
	h.ctrl.Tick()
	if got := h.ctrl.State().TimeRemainingInQuestion; got != 9 {
		t.Fatalf("expected manual tick to count down, got %d", got)
	}
}

func TestStartWhileActiveIsNoop(t *testing.T) {
	h := newHarness(t, 3, 10)
	_ = h.ctrl.Start(context.Background())
	h.sched.Fire()
	h.sched.Fire()
	h.answerCorrect(t)

	before := h.ctrl.State()
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !reflect.DeepEqual(before, h.ctrl.State()) {
		t.Fatalf("restart changed state")
	}
	if h.sched.Live() != 1 {
		t.Fatalf("restart started another timer")
	}
}

func TestAsksExactlyConfiguredQuestions(t *testing.T) {
	const questions = 5
	h := newHarness(t, questions, 10)
	_ = h.ctrl.Start(context.Background())

	for i := 1; i <= questions; i++ {
		state := h.ctrl.State()
		if !state.Active || state.QuestionIndex != i {
			t.Fatalf("question %d: unexpected state %+v", i, state)
		}
		if q, _ := h.view.Slot(domain.SlotQuestion); q != state.Questions[i-1] {
			t.Fatalf("question %d: slot shows %v", i, q)
		}
		h.answerCorrect(t)
		if i < questions && h.sched.Live() != 1 {
			t.Fatalf("question %d: expected one live timer, got %d", i, h.sched.Live())
		}
	}

	state := h.ctrl.State()
	if state.Active {
		t.Fatalf("expected quiz to end after %d questions", questions)
	}
	if state.Score != questions*20 {
		t.Fatalf("expected %d points, got %d", questions*20, state.Score)
	}
	if _, err := h.ctrl.Answer(context.Background(), 0); !errors.Is(err, domain.ErrNoActiveQuiz) {
		t.Fatalf("expected ErrNoActiveQuiz after end, got %v", err)
	}
}

func TestAnswerOutOfRange(t *testing.T) {
	h := newHarness(t, 2, 10)
	_ = h.ctrl.Start(context.Background())
	for _, idx := range []int{-1, 4, 99} {
		if _, err := h.ctrl.Answer(context.Background(), idx); !errors.Is(err, domain.ErrAnswerOutOfRange) {
			t.Fatalf("index %d: expected ErrAnswerOutOfRange, got %v", idx, err)
		}
	}
	if h.ctrl.State().QuestionIndex != 1 {
		t.Fatalf("invalid answer must not advance")
	}
}

func TestNameEntryCommitsToLeaderboard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, 10)
	_ = h.ctrl.Start(ctx)
	h.answerCorrect(t)

	if err := h.ctrl.ChangeName("  Alice  "); err != nil {
		t.Fatalf("change name: %v", err)
	}
	lb, err := h.ctrl.ConfirmName(ctx)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].Name != "Alice" || lb.Entries[0].Score != 20 {
		t.Fatalf("unexpected board: %+v", lb.Entries)
	}
	if rendered, _ := h.view.Slot(domain.SlotTopResults); !reflect.DeepEqual(rendered, lb) {
		t.Fatalf("top results not rendered")
	}
	state := h.ctrl.State()
	if state.Screen != domain.ScreenLeaderboard || state.NameEntryOpen {
		t.Fatalf("expected leaderboard with entry closed, got %+v", state)
	}
	if _, err := h.ctrl.ConfirmName(ctx); !errors.Is(err, domain.ErrNameEntryClosed) {
		t.Fatalf("expected second confirm rejected, got %v", err)
	}
}

func TestBlankNameCommitsAsAnonymous(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, 10)
	_ = h.ctrl.Start(ctx)
	h.answerCorrect(t)

	_ = h.ctrl.ChangeName("   ")
	lb, err := h.ctrl.ConfirmName(ctx)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if lb.Entries[0].Name != domain.DefaultPlayerName {
		t.Fatalf("expected %s, got %q", domain.DefaultPlayerName, lb.Entries[0].Name)
	}
}

func TestShortNameDuringPlayIsRejected(t *testing.T) {
	h := newHarness(t, 1, 10)
	_ = h.ctrl.Start(context.Background())
	_ = h.ctrl.ChangeName("Al")
	h.answerCorrect(t)

	if state := h.ctrl.State(); state.Screen != domain.ScreenIntro || state.NameEntryOpen {
		t.Fatalf("expected rejection to intro, got %+v", state)
	}
}

func TestLowScoreRejectedWhenBoardHasBetter(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 1, 10)
	if _, err := h.board.Commit(ctx, "Champion", 500); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_ = h.ctrl.Start(ctx)
	h.answerCorrect(t)
	if h.ctrl.State().Screen != domain.ScreenIntro {
		t.Fatalf("20 points cannot beat the lowest entry of 500")
	}
}

func TestScreenNavigation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, 2, 10)

	if err := h.ctrl.BackToIntro(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from intro, got %v", err)
	}
	if _, err := h.ctrl.ShowLeaderboard(ctx); err != nil {
		t.Fatalf("show leaderboard: %v", err)
	}
	if h.view.Screen() != domain.ScreenLeaderboard {
		t.Fatalf("expected leaderboard screen")
	}
	if err := h.ctrl.BackToIntro(); err != nil {
		t.Fatalf("back to intro: %v", err)
	}

	_ = h.ctrl.Start(ctx)
	if _, err := h.ctrl.ShowLeaderboard(ctx); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected leaderboard blocked while playing, got %v", err)
	}

	want := []domain.Screen{domain.ScreenIntro, domain.ScreenLeaderboard, domain.ScreenIntro, domain.ScreenPlaying}
	if got := h.view.Screens(); !reflect.DeepEqual(got, want) {
		t.Fatalf("screens: want %v, got %v", want, got)
	}
}

func TestNewControllerRejectsInvalidConfig(t *testing.T) {
	cfg := domain.DefaultQuizConfig()
	cfg.NumberOfAnswers = 1
	board := app.NewLeaderboard(memory.NewLeaderboardStore(), 5)
	if _, err := app.NewController("bad", cfg, board, app.NewRecordingView()); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []domain.SessionResult
}

func (r *fakeRecorder) Record(_ context.Context, result domain.SessionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

func TestFinishedSessionIsRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	h := newHarness(t, 2, 10, app.WithRecorder(rec))
	_ = h.ctrl.Start(context.Background())
	h.answerCorrect(t)
	h.answerWrong(t)

	if len(rec.results) != 1 {
		t.Fatalf("expected one recorded result, got %d", len(rec.results))
	}
	got := rec.results[0]
	if got.SessionID != "test" || got.Score != 20 || got.Questions != 2 || !got.Admitted {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestClosedControllerRejectsInput(t *testing.T) {
	h := newHarness(t, 2, 10)
	_ = h.ctrl.Start(context.Background())
	h.ctrl.Close()

	if h.sched.Live() != 0 {
		t.Fatalf("close must stop the timer")
	}
	if err := h.ctrl.Start(context.Background()); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if _, err := h.ctrl.Answer(context.Background(), 0); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}
