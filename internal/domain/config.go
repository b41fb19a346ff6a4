package domain

import "fmt"

// DecoySpread is how far decoy answers may sit from the correct value.
const DecoySpread = 20

// MaxAnswers is the largest answer count the decoy window can fill with distinct values.
const MaxAnswers = 2*DecoySpread + 1

// QuizConfig holds the per-process quiz constants.
type QuizConfig struct {
	QuestionTimeout     int `json:"questionTimeout" yaml:"question_timeout"`
	NumberOfAnswers     int `json:"numberOfAnswers" yaml:"number_of_answers"`
	NumberOfQuestions   int `json:"numberOfQuestions" yaml:"number_of_questions"`
	NumberOfBestResults int `json:"numberOfBestResults" yaml:"number_of_best_results"`
}

func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		QuestionTimeout:     10,
		NumberOfAnswers:     4,
		NumberOfQuestions:   5,
		NumberOfBestResults: 15,
	}
}

// Validate rejects settings the quiz cannot run with.
func (c QuizConfig) Validate() error {
	switch {
	case c.QuestionTimeout < 1:
		return fmt.Errorf("%w: question timeout must be at least 1, got %d", ErrInvalidConfig, c.QuestionTimeout)
	case c.NumberOfAnswers < 2:
		return fmt.Errorf("%w: number of answers must be at least 2, got %d", ErrInvalidConfig, c.NumberOfAnswers)
	case c.NumberOfAnswers > MaxAnswers:
		return fmt.Errorf("%w: number of answers must be at most %d, got %d", ErrInvalidConfig, MaxAnswers, c.NumberOfAnswers)
	case c.NumberOfQuestions < 1:
		return fmt.Errorf("%w: number of questions must be at least 1, got %d", ErrInvalidConfig, c.NumberOfQuestions)
	case c.NumberOfBestResults < 1:
		return fmt.Errorf("%w: number of best results must be at least 1, got %d", ErrInvalidConfig, c.NumberOfBestResults)
	}
	return nil
}
