package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/harshbansal7/dealsense/config"
	dserrors "github.com/harshbansal7/dealsense/pkg/errors"
	"github.com/harshbansal7/dealsense/pkg/llm"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

// taskKind identifies one of the five analysis tasks.
type taskKind string

const (
	taskSummary     taskKind = "summary"
	taskKeyPoints   taskKind = "key_points"
	taskActionItems taskKind = "action_items"
	taskTopics      taskKind = "topics"
	taskSentiment   taskKind = "sentiment_keywords"
)

// maxInstructionsLen caps custom instructions before they are rejected.
const maxInstructionsLen = 5000

// deniedPatterns are substrings that disqualify custom instructions. The scan
// is case-insensitive; a match silently downgrades to the default prompt.
var deniedPatterns = []string{
	"<script", "javascript:", "eval(", "function(",
	"import ", "require(", "exec(", "system(",
	"rm ", "del ", "format ", "drop table",
	"alter table", "truncate table",
}

// defaultInstructions is the fixed instruction block for each task. The
// transcript and output contract are appended by defaultPrompt.
var defaultInstructions = map[taskKind]string{
	taskSummary: `Analyze this meeting transcript and provide a comprehensive summary. You MUST use the google_search tool to validate and verify any factual claims, statistics, figures, technical details, company information, or specific statements that can be fact-checked.

Focus on:
- Main topics discussed
- Key decisions made
- Important information shared
- Overall meeting progress and outcomes
- Validation of any claims, facts, or figures mentioned

IMPORTANT: For any factual statements, statistics, company data, technical specifications, or verifiable claims mentioned in the meeting:
1. Use google_search to verify the accuracy
2. Cross-reference multiple sources when possible
3. Note if information cannot be verified or appears outdated
4. Include relevant context from your search results`,

	taskKeyPoints: `Extract the key points from this meeting transcript. Focus on:
- Important decisions or agreements
- Critical information shared
- Action-oriented statements
- Questions that need answers
- Commitments made

Provide the most important takeaways from the discussion.`,

	taskActionItems: `Identify action items from this meeting transcript. Be VERY AGGRESSIVE in finding actionables - look beyond explicit tasks to identify research opportunities, follow-ups, and valuable investigations.

Look for:
- Explicit tasks that need to be completed
- Follow-ups required from discussions
- Decisions that need implementation
- Assignments given to specific people
- Deadlines mentioned
- Research opportunities mentioned or implied
- Unresolved questions that need investigation
- Problems or challenges that need solutions
- Ideas worth developing or validating

EVEN IF NO EXPLICIT TASKS ARE MENTIONED, identify valuable research directions, learning opportunities, or investigative actions that would benefit the participants based on their discussions.

For each action item, identify:
- Description of what needs to be done
- Who is responsible (if mentioned, otherwise suggest who might be best suited)
- Priority level (high/medium/low) based on urgency and importance
- Type: task/research/investigation/follow-up/decision`,

	taskTopics: `Analyze this meeting transcript and identify the main discussion topics. For each topic, provide:
- Topic name/title
- Brief summary of what was discussed
- Key participants involved
- Approximate start time and duration`,

	taskSentiment: `Analyze the sentiment and extract keywords from this meeting transcript.

Determine the overall sentiment of the discussion and identify the most important keywords and phrases.`,
}

// outputContracts is the fenced-JSON output shape requested for each task.
// The ResponseParser depends on replies honoring this convention.
var outputContracts = map[taskKind]string{
	taskSummary: `{
  "summary": "Your comprehensive summary here with validated facts and verified information",
  "key_themes": ["theme1", "theme2", "theme3"]
}`,
	taskKeyPoints: `{
  "key_points": ["point1", "point2", "point3"]
}`,
	taskActionItems: `{
  "action_items": [
    {
      "description": "Task description - be specific about what needs to be done",
      "assignee": "Person name (optional)",
      "priority": "high (only when truly necessary) / medium / low",
      "type": "task/research/investigation/follow-up/decision"
    }
  ]
}`,
	taskTopics: `{
  "topics": [
    {
      "topic": "Topic name",
      "summary": "Brief summary of discussion",
      "participants": ["Speaker1", "Speaker2"],
      "start_time": "HH:MM",
      "duration_minutes": 15
    }
  ]
}`,
	taskSentiment: `{
  "sentiment": "positive/negative/neutral/mixed",
  "keywords": ["keyword1", "keyword2", "keyword3"],
  "confidence": 0.85
}`,
}

// directWrappers is the one-line task statement used when custom instructions
// are inlined directly.
var directWrappers = map[taskKind]string{
	taskSummary:     "Analyze this meeting transcript and provide a comprehensive summary.",
	taskKeyPoints:   "Extract the most important key points from this meeting transcript.",
	taskActionItems: "Identify all actionable items from this meeting transcript, including who is responsible, priority level, and type (task/research/investigation/follow-up/decision).",
	taskTopics:      "Analyze this meeting transcript and identify the main discussion topics, with a brief summary, key participants, approximate start time, and duration for each.",
	taskSentiment:   "Analyze the sentiment and extract important keywords from this meeting transcript.",
}

// taskDescriptions feeds the meta prompt of the generated strategy.
var taskDescriptions = map[taskKind]string{
	taskSummary:     "creating comprehensive meeting summaries",
	taskKeyPoints:   "extracting key points and important takeaways",
	taskActionItems: "identifying actionable items and next steps",
	taskTopics:      "analyzing discussion topics and themes",
	taskSentiment:   "analyzing sentiment and extracting keywords",
}

// promptBuilder turns an analysis task plus a transcript window into a
// provider-ready prompt, honoring validated custom instructions when present.
type promptBuilder struct {
	instructions string
	strategy     config.PromptStrategy
	provider     llm.Provider
	log          logging.Logger
}

func newPromptBuilder(agentCfg config.AgentConfig, provider llm.Provider, log logging.Logger) *promptBuilder {
	strategy := agentCfg.PromptStrategy
	if strategy == "" {
		strategy = config.PromptStrategyDirect
	}
	return &promptBuilder{
		instructions: agentCfg.CustomInstructions,
		strategy:     strategy,
		provider:     provider,
		log:          log,
	}
}

// Build returns the prompt for one task over the given formatted transcript.
// A malformed or unsafe custom prompt degrades to the default template rather
// than failing the task.
func (b *promptBuilder) Build(ctx context.Context, task taskKind, transcript string) string {
	if strings.TrimSpace(b.instructions) == "" {
		return b.defaultPrompt(task, transcript)
	}

	if err := validateInstructions(b.instructions); err != nil {
		b.log.Warn("custom instructions rejected, using default prompt",
			logging.F("task", string(task)), logging.Err(err))
		return b.defaultPrompt(task, transcript)
	}

	if b.strategy == config.PromptStrategyGenerated {
		taskPrompt, err := b.generateTaskPrompt(ctx, task)
		if err != nil {
			b.log.Warn("failed to generate task prompt, falling back to direct",
				logging.F("task", string(task)), logging.Err(err))
		} else {
			return b.assemble(task, taskPrompt+"\n\nBased on your expertise and role described above, "+lowerFirst(directWrappers[task]), transcript)
		}
	}

	direct := directWrappers[task] + "\n\nAdditional Instructions: " + b.instructions
	return b.assemble(task, direct, transcript)
}

// defaultPrompt assembles the fixed template for a task.
func (b *promptBuilder) defaultPrompt(task taskKind, transcript string) string {
	return b.assemble(task, defaultInstructions[task], transcript)
}

// assemble appends the transcript slot and the fenced-JSON output contract.
func (b *promptBuilder) assemble(task taskKind, instructions, transcript string) string {
	return fmt.Sprintf("%s\n\nTranscript:\n%s\n\nProvide your response in the following JSON format within a code block:\n```json\n%s\n```",
		instructions, transcript, outputContracts[task])
}

// generateTaskPrompt issues the meta call that turns the custom role
// description into task-specific operating instructions.
func (b *promptBuilder) generateTaskPrompt(ctx context.Context, task taskKind) (string, error) {
	if b.provider == nil || !b.provider.IsAvailable() {
		return "", dserrors.ErrUnavailable
	}

	metaPrompt := fmt.Sprintf(`Given this role description for an analyst agent:

%s

Generate specific instructions for how this agent should approach %s in meetings. Focus on their expertise, experience level, analytical style, and specific methodologies they should use. Provide clear, actionable guidance that captures their unique approach to this type of analysis.

Keep the response focused and professional, as these instructions will be used directly in LLM prompts.`, b.instructions, taskDescriptions[task])

	response, err := b.provider.Call(ctx, metaPrompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate task prompt: %w", err)
	}

	taskPrompt := strings.TrimSpace(response)
	if taskPrompt == "" {
		return "", fmt.Errorf("task prompt: %w", dserrors.ErrEmptyResponse)
	}
	return taskPrompt, nil
}

// validateInstructions rejects oversized instructions and instructions
// carrying denylisted substrings.
func validateInstructions(instructions string) error {
	if len(instructions) > maxInstructionsLen {
		return fmt.Errorf("%w: length %d exceeds %d", dserrors.ErrUnsafeInstructions, len(instructions), maxInstructionsLen)
	}

	lower := strings.ToLower(instructions)
	for _, pattern := range deniedPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("%w: contains %q", dserrors.ErrUnsafeInstructions, pattern)
		}
	}
	return nil
}

// lowerFirst lowercases the first rune of a sentence fragment.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
