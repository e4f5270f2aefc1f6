package agent

import (
	"fmt"
	"time"

	apperrors "github.com/Kantisaranucheep/schedule-assistant/internal/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	minSlotDurationMinutes = 15
	maxSlotDurationMinutes = 480
)

// ValidatePayload checks the intent data against the per-type schema.
// It returns nil when the payload is well-formed.
func ValidatePayload(intent *Intent) []apperrors.FieldError {
	if intent.Data == nil {
		if intent.Type == IntentUnknown {
			return nil
		}
		return []apperrors.FieldError{{Field: "data", Message: "payload is required"}}
	}

	switch intent.Type {
	case IntentCreateEvent:
		return validateCreateEvent(intent)
	case IntentFindFreeSlots:
		return validateFindFreeSlots(intent)
	case IntentMoveEvent:
		return validateMoveEvent(intent)
	case IntentDeleteEvent:
		return validateDeleteEvent(intent)
	}
	return nil
}

func validateCreateEvent(intent *Intent) []apperrors.FieldError {
	data, err := intent.CreateEventData()
	if err != nil {
		return []apperrors.FieldError{{Field: "data", Message: err.Error()}}
	}

	var errs []apperrors.FieldError
	if data.Title == "" {
		errs = append(errs, apperrors.FieldError{Field: "title", Message: "title is required"})
	}
	errs = appendDateError(errs, "date", data.Date, true)
	errs = appendTimeError(errs, "start_time", data.StartTime, true)
	errs = appendTimeError(errs, "end_time", data.EndTime, true)
	return errs
}

func validateFindFreeSlots(intent *Intent) []apperrors.FieldError {
	data, err := intent.FindFreeSlotsData()
	if err != nil {
		return []apperrors.FieldError{{Field: "data", Message: err.Error()}}
	}

	var errs []apperrors.FieldError
	errs = appendDateError(errs, "date_range.start_date", data.DateRange.StartDate, true)
	errs = appendDateError(errs, "date_range.end_date", data.DateRange.EndDate, true)
	if data.DurationMinutes < minSlotDurationMinutes || data.DurationMinutes > maxSlotDurationMinutes {
		errs = append(errs, apperrors.FieldError{
			Field:   "duration_minutes",
			Message: fmt.Sprintf("duration must be between %d and %d minutes", minSlotDurationMinutes, maxSlotDurationMinutes),
		})
	}
	return errs
}

func validateMoveEvent(intent *Intent) []apperrors.FieldError {
	data, err := intent.MoveEventData()
	if err != nil {
		return []apperrors.FieldError{{Field: "data", Message: err.Error()}}
	}

	var errs []apperrors.FieldError
	if data.EventID == "" && data.Title == "" {
		errs = append(errs, apperrors.FieldError{
			Field:   "event_id",
			Message: "either event_id or title is required to identify the event",
		})
	}
	errs = appendDateError(errs, "original_date", data.OriginalDate, false)
	errs = appendDateError(errs, "new_date", data.NewDate, true)
	errs = appendTimeError(errs, "new_start_time", data.NewStartTime, true)
	errs = appendTimeError(errs, "new_end_time", data.NewEndTime, true)
	return errs
}

func validateDeleteEvent(intent *Intent) []apperrors.FieldError {
	data, err := intent.DeleteEventData()
	if err != nil {
		return []apperrors.FieldError{{Field: "data", Message: err.Error()}}
	}

	var errs []apperrors.FieldError
	if data.EventID == "" && data.Title == "" {
		errs = append(errs, apperrors.FieldError{
			Field:   "event_id",
			Message: "either event_id or title is required to identify the event",
		})
	}
	errs = appendDateError(errs, "date", data.Date, false)
	return errs
}

func appendDateError(errs []apperrors.FieldError, field, value string, required bool) []apperrors.FieldError {
	if value == "" {
		if required {
			errs = append(errs, apperrors.FieldError{Field: field, Message: field + " is required"})
		}
		return errs
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		errs = append(errs, apperrors.FieldError{Field: field, Message: "date must be in YYYY-MM-DD format"})
	}
	return errs
}

func appendTimeError(errs []apperrors.FieldError, field, value string, required bool) []apperrors.FieldError {
	if value == "" {
		if required {
			errs = append(errs, apperrors.FieldError{Field: field, Message: field + " is required"})
		}
		return errs
	}
	if _, err := time.Parse(timeLayout, value); err != nil {
		errs = append(errs, apperrors.FieldError{Field: field, Message: "time must be in HH:MM format"})
	}
	return errs
}
