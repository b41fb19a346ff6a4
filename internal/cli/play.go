package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mathquiz/internal/app"
	"mathquiz/internal/transport/console"
)

// NewPlayCmd runs a single quiz session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath)
		},
	}
}

func runPlay(ctx context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := loadConfig(configPath, true)
	if err != nil {
		return err
	}
	configLogLevel(cfg.Log.Level)

	quizCfg, err := cfg.QuizSettings()
	if err != nil {
		return err
	}
	b, err := openBackends(ctx, cfg, quizCfg.NumberOfBestResults)
	if err != nil {
		return err
	}
	defer b.Close()

	service, err := app.NewQuizService(quizCfg, b.sessions, b.board, b.options()...)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	view := console.NewView(os.Stdout)
	ctrl, err := service.Open(ctx, id, view)
	if err != nil {
		return err
	}
	defer service.Close(context.Background(), id)

	session := console.NewSession(ctrl, view)
	session.OnInput(func() { service.Touch(id) })
	return session.Run(ctx, os.Stdin)
}
