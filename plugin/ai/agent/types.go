// Package agent implements the natural language scheduling pipeline:
// user text is parsed into a structured intent by an LLM, validated,
// gated on confidence, and executed against the schedule service.
package agent

import (
	"encoding/json"

	"github.com/Kantisaranucheep/schedule-assistant/plugin/constraint"
)

// IntentType is the closed set of actions the pipeline understands.
type IntentType string

const (
	IntentCreateEvent   IntentType = "create_event"
	IntentFindFreeSlots IntentType = "find_free_slots"
	IntentMoveEvent     IntentType = "move_event"
	IntentDeleteEvent   IntentType = "delete_event"
	IntentUnknown       IntentType = "unknown"
)

// SupportedIntents lists the executable intent types. IntentUnknown is
// a valid parse result but is never executable.
func SupportedIntents() []IntentType {
	return []IntentType{IntentCreateEvent, IntentFindFreeSlots, IntentMoveEvent, IntentDeleteEvent}
}

// IsExecutable reports whether the intent type can be executed.
func (t IntentType) IsExecutable() bool {
	switch t {
	case IntentCreateEvent, IntentFindFreeSlots, IntentMoveEvent, IntentDeleteEvent:
		return true
	}
	return false
}

// Intent is the structured form of a user request. Data holds the
// intent-specific payload; decode it with the typed accessors.
type Intent struct {
	Type                  IntentType      `json:"intent_type"`
	Confidence            float64         `json:"confidence"`
	Data                  json.RawMessage `json:"data,omitempty"`
	ClarificationQuestion string          `json:"clarification_question,omitempty"`
	RawText               string          `json:"raw_text,omitempty"`
}

// CreateEventData is the payload of a create_event intent.
type CreateEventData struct {
	Title        string   `json:"title"`
	Date         string   `json:"date"`       // YYYY-MM-DD
	StartTime    string   `json:"start_time"` // HH:MM
	EndTime      string   `json:"end_time"`   // HH:MM
	Location     string   `json:"location,omitempty"`
	Participants []string `json:"participants,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// DateRange bounds a free slot search.
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// FindFreeSlotsData is the payload of a find_free_slots intent.
type FindFreeSlotsData struct {
	DateRange       DateRange      `json:"date_range"`
	DurationMinutes int            `json:"duration_minutes"`
	Constraints     map[string]any `json:"constraints,omitempty"`
}

// MoveEventData is the payload of a move_event intent. The event is
// identified either by EventID or by Title plus OriginalDate.
type MoveEventData struct {
	EventID      string `json:"event_id,omitempty"`
	Title        string `json:"title,omitempty"`
	OriginalDate string `json:"original_date,omitempty"`

	NewDate      string `json:"new_date"`       // YYYY-MM-DD
	NewStartTime string `json:"new_start_time"` // HH:MM
	NewEndTime   string `json:"new_end_time"`   // HH:MM
}

// DeleteEventData is the payload of a delete_event intent. The event
// is identified either by EventID or by Title plus Date.
type DeleteEventData struct {
	EventID string `json:"event_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Date    string `json:"date,omitempty"`
}

func decodeData[T any](raw json.RawMessage) (*T, error) {
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateEventData decodes the payload as create_event data.
func (i *Intent) CreateEventData() (*CreateEventData, error) {
	return decodeData[CreateEventData](i.Data)
}

// FindFreeSlotsData decodes the payload as find_free_slots data.
func (i *Intent) FindFreeSlotsData() (*FindFreeSlotsData, error) {
	return decodeData[FindFreeSlotsData](i.Data)
}

// MoveEventData decodes the payload as move_event data.
func (i *Intent) MoveEventData() (*MoveEventData, error) {
	return decodeData[MoveEventData](i.Data)
}

// DeleteEventData decodes the payload as delete_event data.
func (i *Intent) DeleteEventData() (*DeleteEventData, error) {
	return decodeData[DeleteEventData](i.Data)
}

// ParseRequest asks the pipeline to parse user text.
type ParseRequest struct {
	Text       string `json:"text"`
	UserID     int32  `json:"user_id,omitempty"`
	CalendarID int32  `json:"calendar_id,omitempty"`
}

// ParseResponse is the parse result. ErrorDetails carries structured
// diagnostics such as the raw LLM output or field validation errors.
type ParseResponse struct {
	Success      bool           `json:"success"`
	Intent       *Intent        `json:"intent,omitempty"`
	Error        string         `json:"error,omitempty"`
	ErrorDetails map[string]any `json:"error_details,omitempty"`
}

// ExecuteRequest asks the pipeline to execute a parsed intent.
type ExecuteRequest struct {
	Intent     *Intent `json:"intent"`
	UserID     int32   `json:"user_id"`
	CalendarID int32   `json:"calendar_id"`
	DryRun     bool    `json:"dry_run,omitempty"`
}

// ExecuteResponse is the execution result. A low confidence intent
// yields Success true with NeedsClarification set: the pipeline worked,
// it just needs more input before acting.
type ExecuteResponse struct {
	Success              bool                   `json:"success"`
	NeedsClarification   bool                   `json:"needs_clarification,omitempty"`
	Result               map[string]any         `json:"result,omitempty"`
	Message              string                 `json:"message,omitempty"`
	Error                string                 `json:"error,omitempty"`
	ErrorDetails         map[string]any         `json:"error_details,omitempty"`
	ConstraintValidation *constraint.Validation `json:"constraint_validation,omitempty"`
}
