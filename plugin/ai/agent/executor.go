package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/plugin/constraint"
	apperrors "github.com/Kantisaranucheep/schedule-assistant/internal/errors"
	"github.com/Kantisaranucheep/schedule-assistant/internal/observability"
	"github.com/Kantisaranucheep/schedule-assistant/server/service/schedule"
	"github.com/Kantisaranucheep/schedule-assistant/server/timezone"
	"github.com/Kantisaranucheep/schedule-assistant/store"
)

// DefaultConfidenceThreshold gates execution of parsed intents.
const DefaultConfidenceThreshold = 0.7

// Executor runs parsed intents against the schedule service. The
// constraint client is optional and strictly advisory: its failures
// degrade the response but never block execution.
type Executor struct {
	schedule   schedule.Service
	constraint constraint.Client
	metrics    *observability.Metrics
	threshold  float64
}

// NewExecutor creates an Executor. The constraint client and metrics
// sink may be nil. A non-positive threshold falls back to the default.
func NewExecutor(svc schedule.Service, cc constraint.Client, metrics *observability.Metrics, threshold float64) *Executor {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Executor{schedule: svc, constraint: cc, metrics: metrics, threshold: threshold}
}

// Execute runs an intent through the gate sequence: intent type check,
// payload validation, confidence gate, then the per-type handler.
// Pipeline failures are carried in the response, not as a Go error.
func (e *Executor) Execute(ctx context.Context, request *ExecuteRequest) *ExecuteResponse {
	start := time.Now()
	rc := observability.NewRequestContext(slog.Default(), "execute", request.UserID)

	resp := e.execute(ctx, rc, request)

	if e.metrics != nil {
		e.metrics.RecordExecute(time.Since(start), !resp.Success)
	}
	if resp.Success {
		rc.Info("intent executed",
			slog.Bool("needs_clarification", resp.NeedsClarification),
			slog.Bool("dry_run", request.DryRun),
			slog.Int64("elapsed_ms", rc.Elapsed()))
	} else {
		rc.Warn("intent execution failed",
			slog.String("error", resp.Error),
			slog.Int64("elapsed_ms", rc.Elapsed()))
	}
	return resp
}

func (e *Executor) execute(ctx context.Context, rc *observability.RequestContext, request *ExecuteRequest) *ExecuteResponse {
	intent := request.Intent
	if intent == nil {
		return executeFailure(apperrors.InvalidArgument("intent is required"))
	}

	// The intent type check runs before the confidence gate: an
	// unsupported intent is a hard failure regardless of how confident
	// the model was about it.
	if !intent.Type.IsExecutable() {
		supported := make([]string, 0, len(SupportedIntents()))
		for _, t := range SupportedIntents() {
			supported = append(supported, string(t))
		}
		return executeFailure(apperrors.UnsupportedIntent(string(intent.Type), supported))
	}

	if fieldErrors := ValidatePayload(intent); len(fieldErrors) > 0 {
		return executeFailure(apperrors.SchemaValidation(string(intent.Type), fieldErrors))
	}

	if intent.Confidence < e.threshold {
		if e.metrics != nil {
			e.metrics.RecordLowConfidence()
		}
		message := intent.ClarificationQuestion
		if message == "" {
			message = "Could you please clarify your request?"
		}
		return &ExecuteResponse{
			Success:            true,
			NeedsClarification: true,
			Message:            message,
		}
	}

	switch intent.Type {
	case IntentCreateEvent:
		return e.executeCreateEvent(ctx, rc, request)
	case IntentFindFreeSlots:
		return e.executeFindFreeSlots(ctx, rc, request)
	case IntentMoveEvent:
		return e.executeMoveEvent(ctx, rc, request)
	case IntentDeleteEvent:
		return e.executeDeleteEvent(ctx, rc, request)
	}
	return executeFailure(apperrors.InvalidArgument("no handler for intent type: " + string(intent.Type)))
}

func (e *Executor) executeCreateEvent(ctx context.Context, rc *observability.RequestContext, request *ExecuteRequest) *ExecuteResponse {
	data, err := request.Intent.CreateEventData()
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("invalid event data: " + err.Error()))
	}

	loc := e.userLocation(ctx, request.UserID)
	start, end, perr := resolveTimes(data.Date, data.StartTime, data.EndTime, loc)
	if perr != nil {
		return executeFailure(perr)
	}

	validation := e.checkOverlap(ctx, rc, request.CalendarID, start, end, "")

	if request.DryRun {
		return &ExecuteResponse{
			Success: true,
			Result: map[string]any{
				"action":  "create_event",
				"dry_run": true,
				"would_create": map[string]any{
					"title":    data.Title,
					"start_at": start.Format(time.RFC3339),
					"end_at":   end.Format(time.RFC3339),
					"location": data.Location,
				},
			},
			Message:              fmt.Sprintf("Would create event: %s (%s)", data.Title, timezone.FormatInterval(start, end, loc)),
			ConstraintValidation: validation,
		}
	}

	event, err := e.schedule.CreateEvent(ctx, request.UserID, &schedule.CreateEventRequest{
		CalendarID:  request.CalendarID,
		Title:       data.Title,
		Description: data.Description,
		Location:    data.Location,
		Start:       start,
		End:         end,
		Timezone:    loc.String(),
		CreatedBy:   store.EventCreatorAgent,
	})
	if err != nil {
		return conflictOrFailure(err, validation)
	}

	return &ExecuteResponse{
		Success: true,
		Result: map[string]any{
			"action": "create_event",
			"event":  eventSummary(event),
		},
		Message: fmt.Sprintf("Event '%s' created on %s from %s to %s",
			data.Title, data.Date, data.StartTime, data.EndTime),
		ConstraintValidation: validation,
	}
}

func (e *Executor) executeFindFreeSlots(ctx context.Context, rc *observability.RequestContext, request *ExecuteRequest) *ExecuteResponse {
	data, err := request.Intent.FindFreeSlotsData()
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("invalid search data: " + err.Error()))
	}

	loc := e.userLocation(ctx, request.UserID)
	startDate, err := time.ParseInLocation(dateLayout, data.DateRange.StartDate, loc)
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("invalid start_date: " + err.Error()))
	}
	endDate, err := time.ParseInLocation(dateLayout, data.DateRange.EndDate, loc)
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("invalid end_date: " + err.Error()))
	}
	if endDate.Before(startDate) {
		return executeFailure(apperrors.InvalidArgument("end_date is before start_date"))
	}

	validation := e.queryFreeSlots(ctx, rc, request.CalendarID, data)

	duration := time.Duration(data.DurationMinutes) * time.Minute
	slots, err := e.schedule.AvailableSlotsRange(ctx, request.UserID, request.CalendarID, startDate, endDate, duration)
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("availability search failed: " + err.Error()))
	}

	return &ExecuteResponse{
		Success: true,
		Result: map[string]any{
			"action": "find_free_slots",
			"slots":  slots,
			"search_criteria": map[string]any{
				"start_date":       data.DateRange.StartDate,
				"end_date":         data.DateRange.EndDate,
				"duration_minutes": data.DurationMinutes,
			},
		},
		Message: fmt.Sprintf("Found %d free slots of at least %d minutes between %s and %s",
			len(slots), data.DurationMinutes, data.DateRange.StartDate, data.DateRange.EndDate),
		ConstraintValidation: validation,
	}
}

func (e *Executor) executeMoveEvent(ctx context.Context, rc *observability.RequestContext, request *ExecuteRequest) *ExecuteResponse {
	data, err := request.Intent.MoveEventData()
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("invalid move data: " + err.Error()))
	}

	loc := e.userLocation(ctx, request.UserID)
	newStart, newEnd, perr := resolveTimes(data.NewDate, data.NewStartTime, data.NewEndTime, loc)
	if perr != nil {
		return executeFailure(perr)
	}

	var originalDate time.Time
	if data.OriginalDate != "" {
		originalDate, err = time.ParseInLocation(dateLayout, data.OriginalDate, loc)
		if err != nil {
			return executeFailure(apperrors.InvalidArgument("invalid original_date: " + err.Error()))
		}
	}

	validation := e.checkOverlap(ctx, rc, request.CalendarID, newStart, newEnd, data.EventID)

	if request.DryRun {
		return &ExecuteResponse{
			Success: true,
			Result: map[string]any{
				"action":  "move_event",
				"dry_run": true,
				"would_move": map[string]any{
					"event_id": data.EventID,
					"title":    data.Title,
					"start_at": newStart.Format(time.RFC3339),
					"end_at":   newEnd.Format(time.RFC3339),
				},
			},
			Message:              fmt.Sprintf("Would move event to %s at %s", data.NewDate, data.NewStartTime),
			ConstraintValidation: validation,
		}
	}

	event, err := e.schedule.MoveEvent(ctx, request.UserID, &schedule.MoveEventRequest{
		CalendarID:   request.CalendarID,
		EventUID:     data.EventID,
		Title:        data.Title,
		OriginalDate: originalDate,
		NewStart:     newStart,
		NewEnd:       newEnd,
	})
	if err != nil {
		return conflictOrFailure(err, validation)
	}

	return &ExecuteResponse{
		Success: true,
		Result: map[string]any{
			"action": "move_event",
			"event":  eventSummary(event),
		},
		Message: fmt.Sprintf("Event '%s' moved to %s from %s to %s",
			event.Title, data.NewDate, data.NewStartTime, data.NewEndTime),
		ConstraintValidation: validation,
	}
}

func (e *Executor) executeDeleteEvent(ctx context.Context, rc *observability.RequestContext, request *ExecuteRequest) *ExecuteResponse {
	data, err := request.Intent.DeleteEventData()
	if err != nil {
		return executeFailure(apperrors.InvalidArgument("invalid delete data: " + err.Error()))
	}

	loc := e.userLocation(ctx, request.UserID)
	var date time.Time
	if data.Date != "" {
		date, err = time.ParseInLocation(dateLayout, data.Date, loc)
		if err != nil {
			return executeFailure(apperrors.InvalidArgument("invalid date: " + err.Error()))
		}
	}

	target := data.EventID
	if target == "" {
		target = data.Title
	}

	if request.DryRun {
		return &ExecuteResponse{
			Success: true,
			Result: map[string]any{
				"action":  "delete_event",
				"dry_run": true,
				"would_delete": map[string]any{
					"event_id": data.EventID,
					"title":    data.Title,
				},
			},
			Message: fmt.Sprintf("Would delete event: %s", target),
		}
	}

	event, err := e.schedule.CancelEvent(ctx, request.UserID, &schedule.CancelEventRequest{
		CalendarID: request.CalendarID,
		EventUID:   data.EventID,
		Title:      data.Title,
		Date:       date,
	})
	if err != nil {
		return executeFailure(apperrors.NotFound(err.Error()))
	}

	return &ExecuteResponse{
		Success: true,
		Result: map[string]any{
			"action": "delete_event",
			"event":  eventSummary(event),
		},
		Message: fmt.Sprintf("Event '%s' cancelled", event.Title),
	}
}

// userLocation resolves the user's timezone, falling back to UTC.
func (e *Executor) userLocation(ctx context.Context, userID int32) *time.Location {
	config, err := e.schedule.WorkingHours(ctx, userID)
	if err != nil {
		return time.UTC
	}
	loc, _ := timezone.ParseTimezone(config.Timezone)
	return loc
}

// checkOverlap runs the advisory overlap goal. A nil client or a
// failed query returns a degraded validation, never an error.
func (e *Executor) checkOverlap(ctx context.Context, rc *observability.RequestContext, calendarID int32, start, end time.Time, excludeUID string) *constraint.Validation {
	if e.constraint == nil {
		return nil
	}
	goal := constraint.CheckOverlapGoal(calendarID, start.Format(time.RFC3339), end.Format(time.RFC3339), excludeUID)
	result, err := e.constraint.Query(ctx, goal)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordConstraintDegraded()
		}
		rc.Warn("constraint check degraded",
			slog.String(observability.LogFieldErrorCode, string(apperrors.ErrCodeConstraintCheckDegraded)),
			slog.String("error", err.Error()))
		return constraint.Degraded(err)
	}
	return &constraint.Validation{Checked: true, Constraint: "check_overlap", Result: result}
}

func (e *Executor) queryFreeSlots(ctx context.Context, rc *observability.RequestContext, calendarID int32, data *FindFreeSlotsData) *constraint.Validation {
	if e.constraint == nil {
		return nil
	}
	goal := constraint.FreeSlotsGoal(calendarID, data.DateRange.StartDate, data.DateRange.EndDate, data.DurationMinutes)
	result, err := e.constraint.Query(ctx, goal)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordConstraintDegraded()
		}
		rc.Warn("constraint check degraded",
			slog.String(observability.LogFieldErrorCode, string(apperrors.ErrCodeConstraintCheckDegraded)),
			slog.String("error", err.Error()))
		return constraint.Degraded(err)
	}
	return &constraint.Validation{Checked: true, Constraint: "find_free_slots", Result: result}
}

// resolveTimes combines a date with wall clock times in loc.
func resolveTimes(date, startTime, endTime string, loc *time.Location) (time.Time, time.Time, *apperrors.PipelineError) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidArgument("invalid date: " + err.Error())
	}
	startClock, err := timezone.ParseClock(startTime)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidArgument("invalid start time: " + err.Error())
	}
	endClock, err := timezone.ParseClock(endTime)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidArgument("invalid end time: " + err.Error())
	}
	start := timezone.Combine(day, startClock, loc)
	end := timezone.Combine(day, endClock, loc)
	if !end.After(start) {
		return time.Time{}, time.Time{}, apperrors.InvalidArgument("end time must be after start time")
	}
	return start, end, nil
}

// conflictOrFailure maps service errors into a response, attaching the
// conflicting events when the failure is a scheduling conflict.
func conflictOrFailure(err error, validation *constraint.Validation) *ExecuteResponse {
	var conflictErr *schedule.ConflictError
	if errors.As(err, &conflictErr) {
		perr := apperrors.EventConflict(len(conflictErr.Conflicts)).
			WithDetail("conflicts", conflictSummaries(conflictErr.Conflicts))
		resp := executeFailure(perr)
		resp.ConstraintValidation = validation
		return resp
	}
	resp := executeFailure(apperrors.InvalidArgument(err.Error()))
	resp.ConstraintValidation = validation
	return resp
}

func conflictSummaries(events []*store.CalendarEvent) []map[string]any {
	summaries := make([]map[string]any, 0, len(events))
	for _, event := range events {
		summaries = append(summaries, eventSummary(event))
	}
	return summaries
}

func eventSummary(event *store.CalendarEvent) map[string]any {
	return map[string]any{
		"uid":      event.UID,
		"title":    event.Title,
		"start_at": time.Unix(event.StartTs, 0).UTC().Format(time.RFC3339),
		"end_at":   time.Unix(event.EndTs, 0).UTC().Format(time.RFC3339),
		"status":   string(event.Status),
	}
}

// executeFailure converts a pipeline error into an ExecuteResponse.
func executeFailure(err *apperrors.PipelineError) *ExecuteResponse {
	return &ExecuteResponse{
		Success:      false,
		Error:        err.Message,
		ErrorDetails: errorDetails(err),
	}
}
