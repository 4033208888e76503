// internal/survey/report.go
package survey

import "time"

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeCompleted    Outcome = "completed"
	OutcomeErrored      Outcome = "errored"
	OutcomeEntryTimeout Outcome = "entry_timeout"
	OutcomeInterrupted  Outcome = "interrupted"
	OutcomeFailed       Outcome = "failed"
)

// Result is what the completion page hands out. Either field may be empty.
type Result struct {
	ValidationCode    string    `json:"validation_code,omitempty"`
	CompletionMessage string    `json:"completion_message,omitempty"`
	CapturedAt        time.Time `json:"captured_at"`
}

// DecisionRecord is one line of the decisions log.
type DecisionRecord struct {
	Page       int    `json:"page"`
	QuestionID string `json:"question_id"`
	Archetype  string `json:"archetype"`
	Category   string `json:"category,omitempty"`
	Question   string `json:"question"`
	Kind       string `json:"kind"`
	Choice     string `json:"choice,omitempty"`
	Text       string `json:"text,omitempty"`
	Profile    string `json:"profile,omitempty"`
	Reason     string `json:"reason,omitempty"`
	// Committed is set once the choice was actually entered on the page.
	Committed bool      `json:"committed"`
	At        time.Time `json:"at"`
}

// Report is the single summary produced by a run.
type Report struct {
	RunID      string           `json:"run_id"`
	Mode       string           `json:"mode"`
	URL        string           `json:"url"`
	Seed       int64            `json:"seed"`
	Outcome    Outcome          `json:"outcome"`
	FinalState State            `json:"final_state"`
	Trace      []State          `json:"trace"`
	Pages      int              `json:"pages"`
	Decisions  []DecisionRecord `json:"decisions"`
	Result     *Result          `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Duration   time.Duration    `json:"duration"`
	// Paused is the time spent in deliberate pauses.
	Paused time.Duration `json:"paused"`
}

// Answered counts the committed decisions.
func (r *Report) Answered() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Committed {
			n++
		}
	}
	return n
}

// Skipped counts the decisions that chose to enter nothing.
func (r *Report) Skipped() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Kind == "skip" {
			n++
		}
	}
	return n
}
