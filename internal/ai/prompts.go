package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/remindagent/pkg/models"
)

// SuggestTimeRequest carries what the service needs to propose a slot
type SuggestTimeRequest struct {
	UserID   string
	TaskName string
	Profile  models.UserProfile
	Hint     string
	Now      time.Time
}

// DecisionRequest carries what the service needs to evaluate a scheduled task
type DecisionRequest struct {
	TaskName      string
	ScheduledTime time.Time
	Profile       models.UserProfile
	PendingTasks  int
}

func profileJSON(p models.UserProfile) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// SuggestTime asks for the optimal time to schedule a task
func (c *Client) SuggestTime(ctx context.Context, req SuggestTimeRequest) Result[TimeSuggestion] {
	hint := req.Hint
	if hint == "" {
		hint = "Not specified"
	}
	prompt := fmt.Sprintf(`As an intelligent task scheduling agent, suggest the optimal time for this task:

Task: %s
User: %s
User Patterns: %s
User's Preferred Time: %s
Current Time: %s

Consider:
1. User's historical completion patterns
2. Preferred working hours
3. Task complexity and estimated duration
4. Current workload and schedule
5. Optimal productivity windows

Return ONLY a JSON object: {"suggested_time": "YYYY-MM-DD HH:MM", "reasoning": "explanation", "confidence": 0.0-1.0}`,
		req.TaskName, req.UserID, profileJSON(req.Profile), hint, models.FormatTime(req.Now))

	return call[TimeSuggestion](ctx, c, "suggest_time", prompt, 300, 0.3)
}

// Decide asks for priority, rescheduling and break recommendations
func (c *Client) Decide(ctx context.Context, req DecisionRequest) Result[DecisionAdvice] {
	prompt := fmt.Sprintf(`As an intelligent task management agent, analyze this situation and make recommendations:

Task: %s
Scheduled Time: %s
User Patterns: %s
Current Pending Tasks: %d

Provide recommendations for:
1. Task priority (low/normal/high)
2. Whether to suggest rescheduling
3. Productivity tips
4. Break suggestions
5. Task optimization ideas

Return ONLY a JSON object: {
  "priority_level": "low/normal/high",
  "should_reschedule": true/false,
  "productivity_tips": ["tip1", "tip2"],
  "suggested_breaks": ["break1", "break2"],
  "task_optimization": "suggestion"
}`,
		req.TaskName, models.FormatTime(req.ScheduledTime), profileJSON(req.Profile), req.PendingTasks)

	return call[DecisionAdvice](ctx, c, "decide", prompt, 400, 0.4)
}

// Insights asks for an analysis of the user's productivity patterns
func (c *Client) Insights(ctx context.Context, profile models.UserProfile) Result[InsightsAdvice] {
	prompt := fmt.Sprintf(`Based on this user's productivity data, provide actionable insights:

User Patterns: %s

Provide insights about:
1. Best working hours
2. Task completion patterns
3. Areas for improvement
4. Personalized recommendations

Return ONLY a JSON object: {
  "best_hours": "analysis",
  "completion_patterns": "analysis",
  "improvement_areas": ["area1", "area2"],
  "recommendations": ["rec1", "rec2"],
  "productivity_score": 0.0-1.0
}`, profileJSON(profile))

	return call[InsightsAdvice](ctx, c, "insights", prompt, 500, 0.3)
}

// TaskModifications asks how a task could be changed to improve its success rate
func (c *Client) TaskModifications(ctx context.Context, req DecisionRequest) Result[Modifications] {
	prompt := fmt.Sprintf(`Suggest intelligent modifications for this task to improve success rate:

Task: %s
Scheduled Time: %s
User Patterns: %s

Consider:
1. Breaking down complex tasks
2. Optimal timing adjustments
3. Preparation suggestions
4. Related task grouping

Return ONLY a JSON array of suggestions: ["suggestion1", "suggestion2", "suggestion3"]`,
		req.TaskName, models.FormatTime(req.ScheduledTime), profileJSON(req.Profile))

	return call[Modifications](ctx, c, "task_modifications", prompt, 300, 0.4)
}

// ParseRequest extracts a task and time from free-form input
func (c *Client) ParseRequest(ctx context.Context, userID, input string, now time.Time) Result[ParsedTask] {
	prompt := fmt.Sprintf(`As an intelligent task scheduling agent, extract task details and make scheduling decisions:

User Input: %q
User: %s
Current Time: %s

Analyze the input and provide:
1. Task name
2. Suggested optimal time
3. Priority level
4. Any special considerations

Return ONLY a JSON object: {
  "task": "task_name",
  "suggested_time": "YYYY-MM-DD HH:MM",
  "priority": "low/normal/high",
  "reasoning": "explanation",
  "confidence": 0.0-1.0
}`, input, userID, models.FormatTime(now))

	return call[ParsedTask](ctx, c, "parse_request", prompt, 300, 0.3)
}

// ReminderMessage asks for a personalised reminder for a task
func (c *Client) ReminderMessage(ctx context.Context, userID, taskName string, profile models.UserProfile) Result[ReminderContent] {
	prompt := fmt.Sprintf(`Generate a personalized reminder for this task:

Task: %s
User: %s
User Patterns: %s

Create a friendly, motivating reminder that:
1. Acknowledges the user's productivity patterns
2. Provides context about why this time was chosen
3. Includes a productivity tip based on their history
4. Encourages completion

Return ONLY a JSON object: {"subject": "subject line", "body": "message body"}`,
		taskName, userID, profileJSON(profile))

	return call[ReminderContent](ctx, c, "reminder_message", prompt, 400, 0.7)
}
