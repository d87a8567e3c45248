package interview

import "strings"

const (
	RoleCandidate   = "candidate"
	RoleInterviewer = "interviewer"
)

// Turn is a single entry of the conversation memory.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Memory is a sliding window over the most recent conversation turns.
type Memory struct {
	turns    []Turn
	maxTurns int
}

// NewMemory wraps previously stored turns. The input slice is copied and
// trimmed to the window size. A non-positive maxTurns disables trimming.
func NewMemory(turns []Turn, maxTurns int) *Memory {
	m := &Memory{
		turns:    append([]Turn(nil), turns...),
		maxTurns: maxTurns,
	}
	m.trim()
	return m
}

// Add appends a turn and drops the oldest turns beyond the window.
func (m *Memory) Add(role, content string) {
	m.turns = append(m.turns, Turn{Role: role, Content: content})
	m.trim()
}

func (m *Memory) trim() {
	if m.maxTurns > 0 && len(m.turns) > m.maxTurns {
		m.turns = append([]Turn(nil), m.turns[len(m.turns)-m.maxTurns:]...)
	}
}

// Render returns the transcript as "role: content" lines.
func (m *Memory) Render() string {
	if len(m.turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(m.turns))
	for _, t := range m.turns {
		lines = append(lines, t.Role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// Turns returns a copy of the retained turns for persistence.
func (m *Memory) Turns() []Turn {
	return append([]Turn(nil), m.turns...)
}

func (m *Memory) Len() int { return len(m.turns) }
