package decision

import "github.com/example/remindagent/pkg/models"

const (
	// OverloadThreshold is the number of pending tasks above which rescheduling is advised
	OverloadThreshold = 5
	// LowCompletionRate marks users who need tasks decomposed
	LowCompletionRate = 0.5
	// AfternoonHour is the first hour that gets a break suggestion
	AfternoonHour = 14
)

const (
	overloadReasoning = "User has too many pending tasks. Suggesting rescheduling."
	defaultReasoning  = "Workload and completion history look manageable for this task."
	advisedReasoning  = "Recommendations adjusted to the user's productivity patterns."

	decomposeTip   = "Consider breaking this task into smaller chunks"
	afternoonBreak = "Take a 15-minute break before this task"

	heuristicOverloadTip  = "You have many pending tasks. Consider rescheduling some."
	heuristicAttentionTip = "Based on your patterns, this task might need extra attention."
	heuristicAfternoonTip = "Take a short break before this afternoon task."
	heuristicOptimization = "Consider breaking this task into smaller steps if it seems complex"
)

// lowCompletion reports whether the completion-rate rule applies.
// Users without history are unknown, not struggling.
func lowCompletion(profile models.UserProfile) bool {
	return profile.IsEstablished() && profile.CompletionRate < LowCompletionRate
}

// Baseline applies the deterministic rules every decision starts from
func Baseline(pending int, profile models.UserProfile, hour int) *models.Decision {
	d := models.NewDecision()
	if pending > OverloadThreshold {
		d.ShouldReschedule = true
		d.Reasoning = overloadReasoning
	}
	if lowCompletion(profile) {
		d.PriorityLevel = models.PriorityHigh
		d.ProductivityTips = append(d.ProductivityTips, decomposeTip)
	}
	if hour >= AfternoonHour {
		d.SuggestedBreaks = append(d.SuggestedBreaks, afternoonBreak)
	}
	return d
}

// Heuristic is the augmentation used when the reasoning service cannot answer.
// It evaluates the same rules as Baseline and always carries a generic optimization note.
func Heuristic(pending int, profile models.UserProfile, hour int) *models.Decision {
	d := models.NewDecision()
	d.TaskOptimization = heuristicOptimization
	if pending > OverloadThreshold {
		d.ShouldReschedule = true
		d.ProductivityTips = append(d.ProductivityTips, heuristicOverloadTip)
	}
	if lowCompletion(profile) {
		d.PriorityLevel = models.PriorityHigh
		d.ProductivityTips = append(d.ProductivityTips, heuristicAttentionTip)
	}
	if hour >= AfternoonHour {
		d.SuggestedBreaks = append(d.SuggestedBreaks, heuristicAfternoonTip)
	}
	return d
}
