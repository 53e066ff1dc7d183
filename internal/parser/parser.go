package parser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/remindagent/internal/ai"
	"github.com/example/remindagent/pkg/models"
	"go.uber.org/zap"
)

// FallbackConfidence is reported for keyword-parsed requests
const FallbackConfidence = 0.5

// clockPattern matches "6pm", "6 pm" and "12:30am"
var clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)

// day keywords shift the date, period keywords pick an hour when no clock time was given
var (
	dayOffsets = []keyword{{"today", 0}, {"tomorrow", 1}}
	periods    = []keyword{{"morning", 9}, {"afternoon", 14}, {"evening", 18}, {"night", 20}}
	fillers    = map[string]bool{"at": true, "on": true, "by": true, "for": true, "to": true, "this": true}
)

type keyword struct {
	word  string
	value int
}

// Reasoner extracts a task from free-form text through the reasoning service
type Reasoner interface {
	ParseRequest(ctx context.Context, userID, input string, now time.Time) ai.Result[ai.ParsedTask]
}

// Suggester refines the extracted time against the user's patterns
type Suggester interface {
	Suggest(ctx context.Context, userID, taskName, hint string) (models.Suggestion, error)
}

// Parser turns requests like "call mom tomorrow at 6pm" into a task and a time
type Parser struct {
	reasoner  Reasoner
	suggester Suggester
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a parser. reasoner may wrap a nil *ai.Client.
func New(reasoner Reasoner, suggester Suggester, loc *time.Location, logger *zap.Logger) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{
		reasoner:  reasoner,
		suggester: suggester,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source
func (p *Parser) WithClock(now func() time.Time) *Parser {
	p.now = now
	return p
}

// Parse extracts the task and a suggested time from input
func (p *Parser) Parse(ctx context.Context, userID, input string) (models.ParsedRequest, error) {
	now := p.now().In(p.loc)

	res := p.reasoner.ParseRequest(ctx, userID, input, now)
	if !res.OK() {
		return Fallback(now, input, p.loc), nil
	}

	parsed := res.Value
	suggestion, err := p.suggester.Suggest(ctx, userID, parsed.Task, strings.TrimSpace(parsed.SuggestedTime))
	if err != nil {
		return models.ParsedRequest{}, err
	}
	priority, _ := models.ParsePriority(parsed.Priority)

	p.logger.Debug("request parsed by reasoning service",
		zap.String("user_id", userID),
		zap.String("task", parsed.Task))

	return models.ParsedRequest{
		Task: parsed.Task,
		Suggestion: models.Suggestion{
			Time:       suggestion.Time,
			Reasoning:  parsed.Reasoning + " + " + suggestion.Reasoning,
			Confidence: (*parsed.Confidence + suggestion.Confidence) / 2,
		},
		Priority: priority,
	}, nil
}

// Fallback parses input with simple keyword rules. Without any time words
// the task lands tomorrow at 09:00.
func Fallback(now time.Time, input string, loc *time.Location) models.ParsedRequest {
	now = now.In(loc)
	lower := strings.ToLower(input)

	days, hour, minute := 1, 9, 0
	clock := false
	if m := clockPattern.FindStringSubmatch(lower); m != nil {
		if h, mm, ok := clockTime(m); ok {
			hour, minute, clock = h, mm, true
		}
	}
	for _, k := range dayOffsets {
		if strings.Contains(lower, k.word) {
			days = k.value
		}
	}
	if !clock {
		for _, k := range periods {
			if strings.Contains(lower, k.word) {
				hour = k.value
				break
			}
		}
	}

	day := now.AddDate(0, 0, days)
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}

	return models.ParsedRequest{
		Task: taskName(input),
		Suggestion: models.Suggestion{
			Time:       at,
			Reasoning:  fmt.Sprintf("Parsed '%s' - scheduled for %s", input, models.FormatTime(at)),
			Confidence: FallbackConfidence,
		},
		Priority: models.PriorityNormal,
	}
}

func clockTime(m []string) (hour, minute int, ok bool) {
	hour, _ = strconv.Atoi(m[1])
	if hour < 1 || hour > 12 {
		return 0, 0, false
	}
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
		if minute > 59 {
			return 0, 0, false
		}
	}
	switch {
	case m[3] == "pm" && hour != 12:
		hour += 12
	case m[3] == "am" && hour == 12:
		hour = 0
	}
	return hour, minute, true
}

// taskName drops time words and fillers from the input
func taskName(input string) string {
	var words []string
	for _, w := range strings.Fields(clockPattern.ReplaceAllString(input, " ")) {
		lw := strings.ToLower(strings.Trim(w, ",.!?"))
		if lw == "" || fillers[lw] || isTimeWord(lw) {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return "Task"
	}
	return strings.Join(words, " ")
}

func isTimeWord(w string) bool {
	for _, k := range dayOffsets {
		if w == k.word {
			return true
		}
	}
	for _, k := range periods {
		if w == k.word {
			return true
		}
	}
	return false
}
