package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/spigell/adaptive-interviewer/internal/interview"
	"github.com/spigell/adaptive-interviewer/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptAnswer  = "Answer"
	PromptSkip    = "Skip (send an empty answer)"
	PromptSummary = "Show progress"
	PromptQuit    = "Quit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptAnswer, PromptSkip, PromptSummary, PromptQuit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interview interactively in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("batch", "b", "", "batch id")
	runCmd.Flags().StringP("name", "n", "", "candidate name (asked for when unset)")
	runCmd.Flags().StringP("profile", "p", "", "candidate profile text")
	runCmd.Flags().String("profile-file", "", "file with the candidate profile")
	runCmd.Flags().BoolP("auto-answer", "y", false, "answer right away without the action menu")
	runCmd.MarkFlagRequired("batch")
	runCmd.MarkFlagsMutuallyExclusive("profile", "profile-file")
}

// run is the interactive interview loop.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()

	s, err := newServices(ctx)
	if err != nil {
		log.Fatalf("starting the %s: %s", app, err)
	}
	defer s.Close()

	logger := s.logger
	logger.Info("starting the interviewer", zap.String("version", version))

	batchID, _ := cmd.Flags().GetString("batch")
	name, _ := cmd.Flags().GetString("name")
	if strings.TrimSpace(name) == "" {
		name, err = askName()
		if err != nil {
			logger.Fatal("reading candidate name", zap.Error(err))
		}
	}

	profile, err := readProfile(cmd)
	if err != nil {
		logger.Fatal("reading candidate profile", zap.Error(err))
	}

	started, err := s.session.Start(ctx, batchID, name, profile)
	if err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	out := cmd.OutOrStdout()

	if started.AlreadyCompleted {
		logger.Info("exiting", zap.String("reason", "interview already completed"))
		printSummary(out, started.Summary)
		return
	}

	if started.Reset {
		logger.Info("unfinished interview found, starting over", zap.String("record_id", started.RecordID))
	}

	autoAnswer, _ := cmd.Flags().GetBool("auto-answer")
	question := started.Question
	for question != nil {
		printQuestion(out, question)

		result, err := handleQuestion(ctx, s.session, started.RecordID, question, autoAnswer, out)
		if err != nil {
			if errors.Is(err, errExit) {
				logger.Info("exiting", zap.String("reason", "interview paused"), zap.String("record_id", started.RecordID))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		printResult(out, result.Result)

		if result.Finished {
			printSummary(out, result.Summary)
			return
		}
		question = result.Next
	}
}

// handleQuestion keeps showing the action menu until the question is answered
// or the candidate quits. The time spent is measured from when the question
// was shown.
func handleQuestion(ctx context.Context, svc *session.Service, recordID string, q *interview.QuestionPayload, autoAnswer bool, out io.Writer) (*session.AnswerResult, error) {
	shown := time.Now()

	for {
		action := PromptAnswer
		if !autoAnswer {
			var err error
			_, action, err = prompt.Run()
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) {
					return nil, errExit
				}
				return nil, err
			}
		}

		switch action {
		case PromptAnswer:
			answer, err := askAnswer(q)
			if err != nil {
				if errors.Is(err, promptui.ErrInterrupt) {
					return nil, errExit
				}
				return nil, err
			}
			return svc.Answer(ctx, recordID, answer, int(time.Since(shown).Seconds()))
		case PromptSkip:
			return svc.Answer(ctx, recordID, "", int(time.Since(shown).Seconds()))
		case PromptSummary:
			fmt.Fprintf(out, "Time spent on this question: %s of %ds\n", time.Since(shown).Round(time.Second), q.TimeLimit)
		case PromptQuit:
			return nil, errExit
		default:
			return nil, fmt.Errorf("invalid action: %s", action)
		}
	}
}

func askName() (string, error) {
	p := promptui.Prompt{
		Label: "Candidate name",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("name must not be empty")
			}
			return nil
		},
	}
	return p.Run()
}

func askAnswer(q *interview.QuestionPayload) (string, error) {
	p := promptui.Prompt{
		Label: fmt.Sprintf("Your answer (%ds)", q.TimeLimit),
	}
	answer, err := p.Run()
	return strings.TrimSpace(answer), err
}

func printQuestion(out io.Writer, q *interview.QuestionPayload) {
	fmt.Fprintf(out, "\n[%s / %s] %s\n", q.Phase, q.Difficulty, q.Question)
}

func printResult(out io.Writer, r *interview.Result) {
	if r.Score != nil {
		fmt.Fprintf(out, "Score: %.1f/10. %s\n", *r.Score, r.Analysis)
		return
	}
	if r.Analysis != "" {
		fmt.Fprintln(out, r.Analysis)
	}
}

func printSummary(out io.Writer, summary *interview.Summary) {
	if summary == nil {
		return
	}

	fmt.Fprintf(out, "\n%s\n\n", summary.ClosingMessage)
	fmt.Fprintf(out, "Questions: %d, final score: %.1f, finished by: %s\n",
		summary.Stats.TotalQuestions, summary.Stats.FinalScore, summary.Stats.FinishReason)

	for _, a := range summary.History {
		if a.Phase != interview.PhaseTechnical {
			continue
		}
		fmt.Fprintf(out, "  %d. [%s] %.1f  %s\n", a.Number, a.Difficulty, a.Score, a.Question)
	}
}
