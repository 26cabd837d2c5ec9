package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
	"github.com/harshbansal7/dealsense/pkg/llm"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

// Tail windows per task: "last N entries, or all if fewer".
const (
	summaryWindow     = 50
	keyPointsWindow   = 30
	actionItemsWindow = 40
	topicsWindow      = 50
	sentimentWindow   = 20
)

// callTimeout bounds a single LLM call within a cycle. There is no retry; a
// failed task is reattempted at the next trigger.
const callTimeout = 60 * time.Second

// taskStatus is the outcome of one task within a cycle.
type taskStatus string

const (
	taskCommitted taskStatus = "committed"
	taskNoResult  taskStatus = "no_result"
	taskSkipped   taskStatus = "skipped"
	taskFailed    taskStatus = "failed"
)

// RunCycle runs one analysis cycle synchronously. Callers that ingest on a
// schedule normally rely on the automatic trigger; this entry point serves
// final flushes at teardown and on-demand refreshes.
func (a *Analyst) RunCycle(ctx context.Context) {
	a.runCycle(ctx)
}

// runCycle executes one analysis cycle: snapshot the transcript, run the
// five extraction tasks in order against that snapshot, commit results, and
// persist. The cycle lock guarantees at most one cycle runs at a time; the
// snapshot guarantees concurrent appends are invisible until the next cycle.
func (a *Analyst) runCycle(ctx context.Context) {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	// The cycle is now running, not queued; a trigger arriving from here on
	// schedules a fresh cycle behind this one.
	a.cycleQueued.Store(false)

	a.mu.Lock()
	a.lastCycle = time.Now()
	snapshot := make([]TranscriptEntry, len(a.record.Transcript))
	copy(snapshot, a.record.Transcript)
	a.mu.Unlock()

	if len(snapshot) == 0 {
		if a.metrics != nil {
			a.metrics.CyclesTotal.WithLabelValues("empty").Inc()
		}
		return
	}

	a.log.Info("running analysis cycle", logging.F("transcript_entries", len(snapshot)))

	tasks := []struct {
		kind taskKind
		run  func(context.Context, []TranscriptEntry) (taskStatus, error)
	}{
		{taskSummary, a.runSummary},
		{taskKeyPoints, a.runKeyPoints},
		{taskActionItems, a.runActionItems},
		{taskTopics, a.runTopics},
		{taskSentiment, a.runSentiment},
	}

	for _, task := range tasks {
		status, err := task.run(ctx, snapshot)
		switch {
		case err == nil:
		case dserrors.IsUnavailable(err):
			// No backend: skip the task until the next cycle.
			status = taskSkipped
			a.log.Warn("analysis task skipped",
				logging.F("task", string(task.kind)), logging.Err(err))
		default:
			status = taskFailed
			a.log.Error("analysis task failed",
				logging.F("task", string(task.kind)), logging.Err(err))
		}
		if a.metrics != nil {
			a.metrics.TasksTotal.WithLabelValues(string(task.kind), string(status)).Inc()
		}
	}

	a.mu.Lock()
	a.record.LastUpdated = time.Now()
	a.persistLocked()
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.CyclesTotal.WithLabelValues("completed").Inc()
	}
	a.log.Info("analysis cycle complete")
}

// lastN returns the tail window of the snapshot.
func lastN(entries []TranscriptEntry, n int) []TranscriptEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// formatTranscript renders transcript entries for model consumption.
func formatTranscript(entries []TranscriptEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			entry.Timestamp.Format("15:04:05"), entry.Speaker, entry.Text)
	}
	return b.String()
}

// callPlain issues a plain completion, gated on provider availability.
func (a *Analyst) callPlain(ctx context.Context, prompt string) (string, error) {
	if a.provider == nil || !a.provider.IsAvailable() {
		return "", dserrors.ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if a.metrics != nil {
		a.metrics.LLMCallsTotal.WithLabelValues(a.providerName, "plain").Inc()
	}
	return a.provider.Call(ctx, prompt)
}

// callGrounded issues a grounded completion against a grounding-capable
// provider.
func (a *Analyst) callGrounded(ctx context.Context, provider llm.GroundingProvider, prompt string) (*llm.GroundedResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if a.metrics != nil {
		a.metrics.LLMCallsTotal.WithLabelValues(a.providerName, "grounded").Inc()
	}
	return provider.CallWithGrounding(ctx, prompt)
}

// summaryResult is the structured shape of a summary reply.
type summaryResult struct {
	Summary   string   `json:"summary"`
	KeyThemes []string `json:"key_themes"`
}

// runSummary generates the meeting summary. When the backend is
// grounding-capable the grounded call is attempted first; on grounded
// failure the task falls back to a plain completion, the same policy as key
// points.
func (a *Analyst) runSummary(ctx context.Context, snapshot []TranscriptEntry) (taskStatus, error) {
	window := lastN(snapshot, summaryWindow)
	if len(window) == 0 {
		return taskNoResult, nil
	}

	prompt := a.prompts.Build(ctx, taskSummary, formatTranscript(window))

	if provider, ok := a.provider.(llm.GroundingProvider); ok && provider.IsAvailable() {
		grounded, err := a.callGrounded(ctx, provider, prompt)
		if err != nil {
			a.log.Warn("grounded summary call failed, falling back to plain completion", logging.Err(err))
		} else {
			return a.commitGroundedSummary(grounded)
		}
	}

	response, err := a.callPlain(ctx, prompt)
	if err != nil {
		return taskFailed, err
	}

	var result summaryResult
	if err := decodeTaskResult(response, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	a.mu.Lock()
	a.record.Summary = result.Summary
	a.mu.Unlock()

	a.log.Debug("summary committed", logging.F("chars", len(result.Summary)))
	return taskCommitted, nil
}

// commitGroundedSummary decodes a grounded summary reply and stores both the
// plain summary and its citation-annotated variant.
func (a *Analyst) commitGroundedSummary(grounded *llm.GroundedResponse) (taskStatus, error) {
	var result summaryResult
	if err := decodeTaskResult(grounded.Text, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	content := &GroundedContent{
		Text:              result.Summary,
		TextWithCitations: mergeCitations(result.Summary, grounded.GroundingMetadata),
		GroundingMetadata: grounded.GroundingMetadata,
	}

	a.mu.Lock()
	a.record.Summary = result.Summary
	a.record.GroundedSummary = content
	a.mu.Unlock()

	a.log.Debug("grounded summary committed", logging.F("chars", len(result.Summary)))
	return taskCommitted, nil
}

// keyPointsResult is the structured shape of a key-points reply.
type keyPointsResult struct {
	KeyPoints []string `json:"key_points"`
}

// runKeyPoints extracts the most important points, attempting a grounded
// call first when available and falling back to a plain completion.
func (a *Analyst) runKeyPoints(ctx context.Context, snapshot []TranscriptEntry) (taskStatus, error) {
	window := lastN(snapshot, keyPointsWindow)
	if len(window) == 0 {
		return taskNoResult, nil
	}

	prompt := a.prompts.Build(ctx, taskKeyPoints, formatTranscript(window))

	if provider, ok := a.provider.(llm.GroundingProvider); ok && provider.IsAvailable() {
		grounded, err := a.callGrounded(ctx, provider, prompt)
		if err != nil {
			a.log.Warn("grounded key points call failed, falling back to plain completion", logging.Err(err))
		} else {
			return a.commitGroundedKeyPoints(grounded)
		}
	}

	response, err := a.callPlain(ctx, prompt)
	if err != nil {
		return taskFailed, err
	}

	var result keyPointsResult
	if err := decodeTaskResult(response, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	a.mu.Lock()
	a.record.KeyPoints = result.KeyPoints
	a.mu.Unlock()

	a.log.Debug("key points committed", logging.F("count", len(result.KeyPoints)))
	return taskCommitted, nil
}

// commitGroundedKeyPoints decodes a grounded key-points reply and stores the
// points plus a bullet-joined, citation-annotated rendering.
func (a *Analyst) commitGroundedKeyPoints(grounded *llm.GroundedResponse) (taskStatus, error) {
	var result keyPointsResult
	if err := decodeTaskResult(grounded.Text, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	text := strings.Join(result.KeyPoints, "\n• ")
	if text != "" {
		text = "• " + text
	}

	content := &GroundedContent{
		Text:              text,
		TextWithCitations: mergeCitations(text, grounded.GroundingMetadata),
		GroundingMetadata: grounded.GroundingMetadata,
	}

	a.mu.Lock()
	a.record.KeyPoints = result.KeyPoints
	a.record.GroundedKeyPoints = content
	a.mu.Unlock()

	a.log.Debug("grounded key points committed", logging.F("count", len(result.KeyPoints)))
	return taskCommitted, nil
}

// runActionItems identifies actionable items. Each cycle's list replaces
// the prior one wholesale.
func (a *Analyst) runActionItems(ctx context.Context, snapshot []TranscriptEntry) (taskStatus, error) {
	window := lastN(snapshot, actionItemsWindow)
	if len(window) == 0 {
		return taskNoResult, nil
	}

	prompt := a.prompts.Build(ctx, taskActionItems, formatTranscript(window))
	response, err := a.callPlain(ctx, prompt)
	if err != nil {
		return taskFailed, err
	}

	var result struct {
		ActionItems []ActionItem `json:"action_items"`
	}
	if err := decodeTaskResult(response, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	now := time.Now()
	for i := range result.ActionItems {
		if result.ActionItems[i].ID == "" {
			result.ActionItems[i].ID = uuid.NewString()
		}
		if result.ActionItems[i].Status == "" {
			result.ActionItems[i].Status = StatusPending
		}
		result.ActionItems[i].CreatedAt = now
	}

	a.mu.Lock()
	a.record.ActionItems = result.ActionItems
	a.mu.Unlock()

	a.log.Debug("action items committed", logging.F("count", len(result.ActionItems)))
	return taskCommitted, nil
}

// runTopics identifies the main discussion topics, replaced wholesale per
// cycle.
func (a *Analyst) runTopics(ctx context.Context, snapshot []TranscriptEntry) (taskStatus, error) {
	window := lastN(snapshot, topicsWindow)
	if len(window) == 0 {
		return taskNoResult, nil
	}

	prompt := a.prompts.Build(ctx, taskTopics, formatTranscript(window))
	response, err := a.callPlain(ctx, prompt)
	if err != nil {
		return taskFailed, err
	}

	var result struct {
		Topics []TopicDiscussion `json:"topics"`
	}
	if err := decodeTaskResult(response, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	a.mu.Lock()
	a.record.Topics = result.Topics
	a.mu.Unlock()

	a.log.Debug("topics committed", logging.F("count", len(result.Topics)))
	return taskCommitted, nil
}

// runSentiment analyzes overall sentiment and extracts keywords.
func (a *Analyst) runSentiment(ctx context.Context, snapshot []TranscriptEntry) (taskStatus, error) {
	window := lastN(snapshot, sentimentWindow)
	if len(window) == 0 {
		return taskNoResult, nil
	}

	prompt := a.prompts.Build(ctx, taskSentiment, formatTranscript(window))
	response, err := a.callPlain(ctx, prompt)
	if err != nil {
		return taskFailed, err
	}

	var result struct {
		Sentiment  string   `json:"sentiment"`
		Keywords   []string `json:"keywords"`
		Confidence float64  `json:"confidence"`
	}
	if err := decodeTaskResult(response, &result); err != nil {
		if dserrors.IsNoStructuredBlock(err) {
			return taskNoResult, nil
		}
		return taskFailed, err
	}

	a.mu.Lock()
	a.record.Sentiment = result.Sentiment
	a.record.Keywords = result.Keywords
	a.mu.Unlock()

	a.log.Debug("sentiment committed", logging.F("sentiment", result.Sentiment))
	return taskCommitted, nil
}
