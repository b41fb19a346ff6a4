// Package console plays a quiz session in a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"mathquiz/internal/app"
	"mathquiz/internal/domain"
)

// View prints screens and slot updates as plain text. Writes are serialized so
// timer ticks and command output do not interleave mid-line.
type View struct {
	mu  sync.Mutex
	out io.Writer
}

func NewView(out io.Writer) *View {
	return &View{out: out}
}

func (v *View) ShowScreen(screen domain.Screen) {
	switch screen {
	case domain.ScreenIntro:
		v.println("== MathQuiz ==")
		v.println("commands: start, scores, quit")
	case domain.ScreenPlaying:
		v.println("-- quiz started, answer with the number of your choice --")
	case domain.ScreenNameEntry:
		v.println("You made the leaderboard! Type 'name <your name>' and then 'save'.")
	case domain.ScreenLeaderboard:
		v.println("commands: home, quit")
	}
}

func (v *View) SetSlot(slot domain.Slot, value any) {
	switch slot {
	case domain.SlotQuestion:
		v.printf("\n%v = ?\n", value)
	case domain.SlotQuestionNumber:
		v.printf("question #%v\n", value)
	case domain.SlotAnswers:
		labels, _ := value.([]string)
		for i, label := range labels {
			v.printf("  %d) %s\n", i+1, label)
		}
	case domain.SlotTime:
		if n, ok := value.(int); ok && (n <= 3 || n%5 == 0) {
			v.printf("time left: %ds\n", n)
		}
	case domain.SlotScore:
		v.printf("score: %v\n", value)
	case domain.SlotTopResults:
		if lb, ok := value.(domain.Leaderboard); ok {
			v.leaderboard(lb)
		}
	}
}

func (v *View) leaderboard(lb domain.Leaderboard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "== Best results ==")
	if len(lb.Entries) == 0 {
		fmt.Fprintln(v.out, "(empty)")
		return
	}
	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	for i, e := range lb.Entries {
		fmt.Fprintf(tw, "%d.\t%s\t%d\n", i+1, e.Name, e.Score)
	}
	_ = tw.Flush()
}

func (v *View) println(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, s)
}

func (v *View) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

// Session maps typed commands onto a controller.
type Session struct {
	ctrl    *app.Controller
	view    *View
	onInput func()
}

func NewSession(ctrl *app.Controller, view *View) *Session {
	return &Session{ctrl: ctrl, view: view}
}

var errQuit = errors.New("quit")

// OnInput registers fn to run before every handled line.
func (s *Session) OnInput(fn func()) {
	s.onInput = fn
}

// Run reads one command per line until quit, EOF or ctx is done.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
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
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := s.Handle(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				s.view.printf("error: %v\n", err)
			}
		}
	}
}

// Handle executes a single command line.
func (s *Session) Handle(ctx context.Context, line string) error {
	if s.onInput != nil {
		s.onInput()
	}
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch strings.ToLower(cmd) {
	case "":
		return nil
	case "start", "s":
		return s.ctrl.Start(ctx)
	case "scores":
		_, err := s.ctrl.ShowLeaderboard(ctx)
		return err
	case "home":
		return s.ctrl.BackToIntro()
	case "name":
		return s.ctrl.ChangeName(arg)
	case "save":
		_, err := s.ctrl.ConfirmName(ctx)
		return err
	case "quit", "q", "exit":
		return errQuit
	case "help", "?":
		s.view.println("commands: start, <answer number>, name <text>, save, scores, home, quit")
		return nil
	}

	n, err := strconv.Atoi(cmd)
	if err != nil {
		return fmt.Errorf("unknown command %q", cmd)
	}
	correct, err := s.ctrl.Answer(ctx, n-1)
	if err != nil {
		return err
	}
	if correct {
		s.view.println("correct!")
	} else {
		s.view.println("wrong.")
	}
	return nil
}
