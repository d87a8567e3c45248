package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/adaptive-interviewer/internal/interview"
	"go.uber.org/zap"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
	calls       int
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestWarmupQuestionTemplates(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		greets    bool
		followsUp bool
	}{
		{name: "first question greets", index: 0, greets: true},
		{name: "second question continues", index: 1, followsUp: true},
		{name: "later questions reuse the last template", index: 5, followsUp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{response: "```json\n{\"question\": \"Hi Jane, what got you into Go?\"}\n```"}
			i := NewInterviewer(stub, zap.NewNop(), 0)

			q, err := i.WarmupQuestion(context.Background(), interview.WarmupRequest{
				CandidateName:    "Jane",
				CandidateContext: "Skills: Go",
				Topic:            "Go concurrency",
				Index:            tt.index,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if q.Question != "Hi Jane, what got you into Go?" {
				t.Fatalf("unexpected question %q", q.Question)
			}
			if q.Difficulty != "warmup" || q.TimeLimit != interview.WarmupTimeLimit {
				t.Fatalf("unexpected warm-up metadata: %+v", q)
			}
			if got := strings.Contains(stub.lastMessage, "Greet the candidate"); got != tt.greets {
				t.Fatalf("greeting template used=%v, want %v", got, tt.greets)
			}
			if got := strings.Contains(stub.lastMessage, "Do NOT greet"); got != tt.followsUp {
				t.Fatalf("follow-up template used=%v, want %v", got, tt.followsUp)
			}
			if strings.Contains(stub.lastMessage, "{{") {
				t.Fatalf("unfilled placeholder in prompt:\n%s", stub.lastMessage)
			}
		})
	}
}

func TestWarmupQuestionDefaultsWhenEmpty(t *testing.T) {
	stub := &stubGenerator{response: "{}"}
	i := NewInterviewer(stub, nil, 0)

	q, err := i.WarmupQuestion(context.Background(), interview.WarmupRequest{CandidateName: "Jane", Topic: "Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Question == "" {
		t.Fatal("expected a default question")
	}
}

func TestTechnicalQuestion(t *testing.T) {
	stub := &stubGenerator{response: `{"question": "1. What does this print?<pre><code class='language-go'>a := 1<br>fmt.Println(a)</code></pre>", "difficulty": "medium", "time_limit": "150"}`}
	i := NewInterviewer(stub, zap.NewNop(), 50)

	q, err := i.TechnicalQuestion(context.Background(), interview.TechnicalRequest{
		Topic:         "Go",
		Difficulty:    interview.Medium,
		KnowledgeText: "Variables are declared with :=.",
		Transcript:    "candidate: hello",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "What does this print?<pre><code class='language-go'>a := 1\nfmt.Println(a)</code></pre>"
	if q.Question != want {
		t.Fatalf("unexpected question:\n%q\nwant\n%q", q.Question, want)
	}
	if q.Difficulty != "medium" || q.TimeLimit != 150 {
		t.Fatalf("unexpected metadata: %+v", q)
	}
	for _, fragment := range []string{"candidate: hello", "Variables are declared", "intermediate", `"medium"`} {
		if !strings.Contains(stub.lastMessage, fragment) {
			t.Fatalf("expected %q in prompt", fragment)
		}
	}
	if stub.lastSystem != interviewerPersona {
		t.Fatalf("unexpected system instruction %q", stub.lastSystem)
	}
}

func TestTechnicalQuestionPlaceholdersForMissingContext(t *testing.T) {
	stub := &stubGenerator{response: "no json at all"}
	i := NewInterviewer(stub, zap.NewNop(), 0)

	q, err := i.TechnicalQuestion(context.Background(), interview.TechnicalRequest{Topic: "Go", Difficulty: interview.Easy})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Question != "no json at all" || q.TimeLimit != 0 {
		t.Fatalf("unexpected question: %+v", q)
	}
	for _, fragment := range []string{noConversation, noMaterial, noSummary} {
		if !strings.Contains(stub.lastMessage, fragment) {
			t.Fatalf("expected placeholder %q in prompt", fragment)
		}
	}
}

func TestTechnicalQuestionPropagatesErrors(t *testing.T) {
	stub := &stubGenerator{err: errors.New("boom")}
	i := NewInterviewer(stub, zap.NewNop(), 0)

	if _, err := i.TechnicalQuestion(context.Background(), interview.TechnicalRequest{Difficulty: interview.Easy}); err == nil {
		t.Fatal("expected error")
	}
}

func TestEvaluateAnswer(t *testing.T) {
	tests := []struct {
		name     string
		response string
		score    float64
		analysis string
		wantErr  bool
	}{
		{name: "plain json", response: `{"score": 8.5, "analysis": "Good answer."}`, score: 8.5, analysis: "Good answer."},
		{name: "fenced with prose", response: "Here you go:\n```json\n{\"score\": \"6\", \"analysis\": \"Partly right.\"}\n```", score: 6, analysis: "Partly right."},
		{name: "missing analysis", response: `{"score": 3}`, score: 3, analysis: "No comment provided."},
		{name: "missing score", response: `{"analysis": "?"}`, wantErr: true},
		{name: "not json", response: "I cannot grade this.", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubGenerator{response: tt.response}
			i := NewInterviewer(stub, zap.NewNop(), 0)

			eval, err := i.EvaluateAnswer(context.Background(), "What is a goroutine?", "A thread.", "")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if eval.Score != tt.score || eval.Analysis != tt.analysis {
				t.Fatalf("unexpected evaluation: %+v", eval)
			}
			if stub.lastSystem != examinerPersona {
				t.Fatalf("unexpected system instruction %q", stub.lastSystem)
			}
		})
	}
}

func TestClosingMessage(t *testing.T) {
	stub := &stubGenerator{response: "```\nThank you Jane, it was a pleasure.\n```"}
	i := NewInterviewer(stub, zap.NewNop(), 0)

	msg, err := i.ClosingMessage(context.Background(), interview.ClosingRequest{
		CandidateName:  "Jane",
		FinishReason:   interview.ReasonMaxQuestions,
		FinalScore:     7.3,
		TotalQuestions: 8,
		Topic:          "Go",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "Thank you Jane, it was a pleasure." {
		t.Fatalf("unexpected closing %q", msg)
	}
	if !strings.Contains(stub.lastMessage, "We went through 8 questions about Go.") || !strings.Contains(stub.lastMessage, "7.3/10") {
		t.Fatalf("unexpected prompt:\n%s", stub.lastMessage)
	}
}

func TestClosingMessageDropsJSON(t *testing.T) {
	stub := &stubGenerator{response: `{"message": "bye"}`}
	i := NewInterviewer(stub, zap.NewNop(), 0)

	msg, err := i.ClosingMessage(context.Background(), interview.ClosingRequest{CandidateName: "Jane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "" {
		t.Fatalf("expected empty closing so the caller falls back, got %q", msg)
	}
}

func TestSummarizeKnowledge(t *testing.T) {
	stub := &stubGenerator{response: "Covers goroutines; channels are missing."}
	i := NewInterviewer(stub, zap.NewNop(), 0)

	summary, err := i.SummarizeKnowledge(context.Background(), "Go", []string{"goroutines", "channels"}, "Goroutines are cheap.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != stub.response {
		t.Fatalf("unexpected summary %q", summary)
	}
	if !strings.Contains(stub.lastMessage, "- goroutines\n- channels") {
		t.Fatalf("expected outline in prompt:\n%s", stub.lastMessage)
	}

	stub.calls = 0
	if _, err := i.SummarizeKnowledge(context.Background(), "Go", nil, "  "); err != nil || stub.calls != 0 {
		t.Fatalf("empty material must not reach the model: err=%v calls=%d", err, stub.calls)
	}
}
