package event

import "time"

// Event type discriminators published by test-execution orchestration.
const (
	TypeTestStarted     = "test.started"
	TypeTestCompleted   = "test.completed"
	TypeReportGenerated = "report.generated"
)

// TestStartedPayload is published when a suite begins executing.
type TestStartedPayload struct {
	SuiteName   string            `json:"suite_name"`
	StartTime   time.Time         `json:"start_time"`
	Environment string            `json:"environment"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TestCompletedPayload is published when a suite finishes.
type TestCompletedPayload struct {
	Result      string    `json:"result"`
	IsSuccess   bool      `json:"is_success"`
	CompletedAt time.Time `json:"completed_at"`
}

// ReportGeneratedPayload is published after a report artifact is written.
type ReportGeneratedPayload struct {
	ReportPath  string    `json:"report_path"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewTestStarted creates a test.started event.
func NewTestStarted(source string, payload TestStartedPayload, opts ...EventOption) *BaseEvent[TestStartedPayload] {
	return New(TypeTestStarted, source, payload, opts...)
}

// NewTestCompleted creates a test.completed event.
func NewTestCompleted(source string, payload TestCompletedPayload, opts ...EventOption) *BaseEvent[TestCompletedPayload] {
	return New(TypeTestCompleted, source, payload, opts...)
}

// NewReportGenerated creates a report.generated event.
func NewReportGenerated(source string, payload ReportGeneratedPayload, opts ...EventOption) *BaseEvent[ReportGeneratedPayload] {
	return New(TypeReportGenerated, source, payload, opts...)
}
