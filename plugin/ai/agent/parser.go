package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Kantisaranucheep/schedule-assistant/plugin/ai"
	apperrors "github.com/Kantisaranucheep/schedule-assistant/internal/errors"
	"github.com/Kantisaranucheep/schedule-assistant/internal/observability"
	"github.com/Kantisaranucheep/schedule-assistant/server/timezone"
)

// maxInputLength bounds the user text passed to the LLM.
const maxInputLength = 2000

var codeBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// Parser turns user text into a structured Intent via the LLM.
type Parser struct {
	llm     ai.Client
	metrics *observability.Metrics

	// now is injectable so tests can pin the date context.
	now func() time.Time
}

// NewParser creates a Parser. The metrics sink may be nil.
func NewParser(llm ai.Client, metrics *observability.Metrics) *Parser {
	return &Parser{llm: llm, metrics: metrics, now: time.Now}
}

// Parse converts user text into an Intent. Parse never returns a Go
// error for pipeline failures; they are carried in the response so the
// caller can surface them to the user.
func (p *Parser) Parse(ctx context.Context, request *ParseRequest, tz string) *ParseResponse {
	start := time.Now()
	rc := observability.NewRequestContext(slog.Default(), "parse", request.UserID)

	resp := p.parse(ctx, rc, request, tz)

	if p.metrics != nil {
		p.metrics.RecordParse(time.Since(start), !resp.Success)
	}
	if resp.Success {
		rc.Info("intent parsed",
			slog.String("intent_type", string(resp.Intent.Type)),
			slog.Float64("confidence", resp.Intent.Confidence),
			slog.Int64("elapsed_ms", rc.Elapsed()))
	} else {
		rc.Warn("intent parse failed",
			slog.String("error", resp.Error),
			slog.Int64("elapsed_ms", rc.Elapsed()))
	}
	return resp
}

func (p *Parser) parse(ctx context.Context, rc *observability.RequestContext, request *ParseRequest, tz string) *ParseResponse {
	text := strings.TrimSpace(request.Text)
	if text == "" {
		return failureResponse(apperrors.InvalidArgument("text is required"))
	}
	if len(text) > maxInputLength {
		return failureResponse(apperrors.InvalidArgument("text exceeds maximum length").
			WithDetail("max_length", maxInputLength))
	}
	if p.llm == nil {
		return failureResponse(apperrors.LLMUnavailable("no LLM backend configured", nil))
	}

	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		rc.Warn("invalid timezone, using UTC", slog.String("timezone", tz))
	}
	userPrompt := buildUserPrompt(p.now().In(loc).Format("2006-01-02 15:04"), loc.String(), text)

	raw, err := p.llm.Generate(ctx, parserSystemPrompt, userPrompt)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return failureResponse(apperrors.Timeout("LLM request timed out", err))
		case ctx.Err() != nil:
			return failureResponse(apperrors.ContextCanceled(ctx.Err()))
		}
		return failureResponse(apperrors.LLMUnavailable("LLM request failed", err))
	}

	jsonText, ok := extractJSON(raw)
	if !ok {
		return failureResponse(apperrors.InvalidNLUOutput(raw, "could not extract valid JSON from LLM response"))
	}

	intent, perr := decodeIntent(jsonText, text)
	if perr != nil {
		return failureResponse(perr)
	}
	return &ParseResponse{Success: true, Intent: intent}
}

// IsLLMAvailable reports whether the configured LLM backend responds.
func (p *Parser) IsLLMAvailable(ctx context.Context) bool {
	return p.llm != nil && p.llm.IsAvailable(ctx)
}

// extractJSON pulls a JSON object out of raw LLM output. It tries, in
// order: the whole response, a fenced code block, and the first
// balanced object found in the text.
func extractJSON(raw string) (string, bool) {
	text := strings.TrimSpace(raw)

	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return text, true
	}

	if matches := codeBlockPattern.FindStringSubmatch(text); len(matches) > 1 {
		candidate := strings.TrimSpace(matches[1])
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	for _, candidate := range balancedObjects(text) {
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// balancedObjects scans text for top-level brace-balanced substrings.
// Braces inside JSON strings are skipped.
func balancedObjects(text string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, text[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

// decodeIntent validates the extracted JSON against the intent schema.
// Missing intent_type defaults to unknown; missing confidence to 0.5.
func decodeIntent(jsonText, rawText string) (*Intent, *apperrors.PipelineError) {
	var raw struct {
		IntentType            *string         `json:"intent_type"`
		Confidence            *float64        `json:"confidence"`
		Data                  json.RawMessage `json:"data"`
		ClarificationQuestion string          `json:"clarification_question"`
	}
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, apperrors.InvalidNLUOutput(jsonText, err.Error())
	}

	intentType := IntentUnknown
	if raw.IntentType != nil {
		intentType = IntentType(strings.ToLower(strings.TrimSpace(*raw.IntentType)))
	}
	confidence := 0.5
	if raw.Confidence != nil {
		confidence = *raw.Confidence
	}

	var fieldErrors []apperrors.FieldError
	switch intentType {
	case IntentCreateEvent, IntentFindFreeSlots, IntentMoveEvent, IntentDeleteEvent, IntentUnknown:
	default:
		fieldErrors = append(fieldErrors, apperrors.FieldError{
			Field:   "intent_type",
			Message: "unknown intent type: " + string(intentType),
		})
	}
	if confidence < 0 || confidence > 1 {
		fieldErrors = append(fieldErrors, apperrors.FieldError{
			Field:   "confidence",
			Message: "confidence must be between 0 and 1",
		})
	}
	if len(fieldErrors) > 0 {
		return nil, apperrors.SchemaValidation(string(intentType), fieldErrors)
	}

	return &Intent{
		Type:                  intentType,
		Confidence:            confidence,
		Data:                  raw.Data,
		ClarificationQuestion: raw.ClarificationQuestion,
		RawText:               rawText,
	}, nil
}

// failureResponse converts a pipeline error into a ParseResponse.
func failureResponse(err *apperrors.PipelineError) *ParseResponse {
	return &ParseResponse{
		Success:      false,
		Error:        err.Message,
		ErrorDetails: errorDetails(err),
	}
}

func errorDetails(err *apperrors.PipelineError) map[string]any {
	details := map[string]any{"code": string(err.GetCode())}
	for k, v := range err.Details {
		details[k] = v
	}
	return details
}
