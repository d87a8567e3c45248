package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the interview of a candidate and print the first question",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		batchID, _ := cmd.Flags().GetString("batch")
		name, _ := cmd.Flags().GetString("name")

		profile, err := readProfile(cmd)
		if err != nil {
			return err
		}

		result, err := s.session.Start(cmd.Context(), batchID, name, profile)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), result)
	},
}

var answerCmd = &cobra.Command{
	Use:   "answer [text]",
	Short: "Submit an answer to the open question of a record",
	Long:  "Submit an answer to the open question of a record. The answer is read from stdin when no text is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		recordID, _ := cmd.Flags().GetString("record")
		spent, _ := cmd.Flags().GetDuration("time-spent")

		var answer string
		if len(args) == 1 {
			answer = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading answer: %w", err)
			}
			answer = string(data)
		}

		result, err := s.session.Answer(cmd.Context(), recordID, strings.TrimSpace(answer), int(spent/time.Second))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), result)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary of a finished interview",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		recordID, _ := cmd.Flags().GetString("record")

		summary, err := s.session.Summary(cmd.Context(), recordID)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), summary)
	},
}

type recordStatus struct {
	ID            string    `json:"record_id"`
	CandidateName string    `json:"candidate_name"`
	Phase         string    `json:"phase"`
	Finished      bool      `json:"finished"`
	FinishReason  string    `json:"finish_reason,omitempty"`
	FinalScore    *float64  `json:"final_score,omitempty"`
	Questions     int       `json:"total_questions"`
	Resets        int       `json:"reset_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the interview records of a batch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := newServices(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		batchID, _ := cmd.Flags().GetString("batch")

		entries, err := s.store.ListByBatch(cmd.Context(), batchID)
		if err != nil {
			return err
		}

		statuses := make([]recordStatus, 0, len(entries))
		for _, e := range entries {
			statuses = append(statuses, recordStatus{
				ID:            e.ID,
				CandidateName: e.CandidateName,
				Phase:         e.Record.CurrentPhase.String(),
				Finished:      e.Record.IsFinished,
				FinishReason:  string(e.Record.FinishReason),
				FinalScore:    e.Record.FinalScore,
				Questions:     e.Record.TotalQuestionsAsked,
				Resets:        e.ResetCount,
				UpdatedAt:     e.UpdatedAt,
			})
		}

		return printJSON(cmd.OutOrStdout(), statuses)
	},
}

func init() {
	rootCmd.AddCommand(startCmd, answerCmd, summaryCmd, listCmd)

	startCmd.Flags().StringP("batch", "b", "", "batch id")
	startCmd.Flags().StringP("name", "n", "", "candidate name")
	startCmd.Flags().StringP("profile", "p", "", "candidate profile text")
	startCmd.Flags().String("profile-file", "", "file with the candidate profile")
	startCmd.MarkFlagRequired("batch")
	startCmd.MarkFlagRequired("name")
	startCmd.MarkFlagsMutuallyExclusive("profile", "profile-file")

	answerCmd.Flags().StringP("record", "r", "", "interview record id")
	answerCmd.Flags().DurationP("time-spent", "t", 0, "time the candidate spent answering")
	answerCmd.MarkFlagRequired("record")

	summaryCmd.Flags().StringP("record", "r", "", "interview record id")
	summaryCmd.MarkFlagRequired("record")

	listCmd.Flags().StringP("batch", "b", "", "batch id")
	listCmd.MarkFlagRequired("batch")
}

func readProfile(cmd *cobra.Command) (string, error) {
	profile, _ := cmd.Flags().GetString("profile")
	file, _ := cmd.Flags().GetString("profile-file")
	if file == "" {
		return profile, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("profile file %s does not exist", file)
		}
		return "", fmt.Errorf("reading profile file: %w", err)
	}

	return string(data), nil
}
