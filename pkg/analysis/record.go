// Package analysis implements the meeting-analysis pipeline: transcript
// ingestion, periodic LLM-driven extraction of structured insight, citation
// merging for grounded results, and persistence of the analysis record.
package analysis

import (
	"time"

	"github.com/harshbansal7/dealsense/pkg/llm"
)

// ActionItem priority levels.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ActionItem statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Record is the full analysis state for one meeting. JSON field names are a
// compatibility surface shared with the persisted file and API consumers.
type Record struct {
	MeetingID         string            `json:"meeting_id"`
	MeetingURL        string            `json:"meeting_url"`
	StartTime         time.Time         `json:"start_time"`
	LastUpdated       time.Time         `json:"last_updated"`
	Transcript        []TranscriptEntry `json:"transcript"`
	Summary           string            `json:"summary"`
	GroundedSummary   *GroundedContent  `json:"grounded_summary,omitempty"`
	KeyPoints         []string          `json:"key_points"`
	GroundedKeyPoints *GroundedContent  `json:"grounded_key_points,omitempty"`
	ActionItems       []ActionItem      `json:"action_items"`
	Topics            []TopicDiscussion `json:"topics"`
	Participants      []string          `json:"participants"`
	DurationMinutes   float64           `json:"duration_minutes"`
	WordCount         int               `json:"word_count"`
	Sentiment         string            `json:"sentiment"`
	Keywords          []string          `json:"keywords"`
}

// TranscriptEntry is a single merged utterance. Entries are appended in
// arrival order and never mutated or removed.
type TranscriptEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	IsAgent   bool      `json:"is_agent"`
}

// ActionItem is an actionable item identified in the meeting. Each cycle's
// list replaces the prior one wholesale.
type ActionItem struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Assignee    string    `json:"assignee,omitempty"`
	Priority    string    `json:"priority"` // high, medium, low
	Type        string    `json:"type,omitempty"` // task, research, investigation, follow-up, decision
	Status      string    `json:"status"` // pending, in_progress, completed
	CreatedAt   time.Time `json:"created_at"`
}

// TopicDiscussion is a discussion topic identified in the meeting. StartTime
// is a human-readable "HH:MM" string as produced by the model, not a
// timestamp.
type TopicDiscussion struct {
	Topic           string   `json:"topic"`
	StartTime       string   `json:"start_time"`
	DurationMinutes float64  `json:"duration_minutes"`
	Summary         string   `json:"summary"`
	Participants    []string `json:"participants"`
}

// GroundedContent is generated text paired with its citation-annotated
// variant and the grounding metadata that produced it.
type GroundedContent struct {
	Text              string                 `json:"text"`
	TextWithCitations string                 `json:"text_with_citations"`
	GroundingMetadata *llm.GroundingMetadata `json:"grounding_metadata,omitempty"`
}

// NewRecord creates an empty record for a meeting.
func NewRecord(meetingID, meetingURL string) *Record {
	now := time.Now()
	return &Record{
		MeetingID:    meetingID,
		MeetingURL:   meetingURL,
		StartTime:    now,
		LastUpdated:  now,
		Transcript:   []TranscriptEntry{},
		KeyPoints:    []string{},
		ActionItems:  []ActionItem{},
		Topics:       []TopicDiscussion{},
		Participants: []string{},
	}
}

// Clone returns a deep copy of the record so callers cannot mutate shared
// state through the query surface.
func (r *Record) Clone() *Record {
	out := *r

	out.Transcript = make([]TranscriptEntry, len(r.Transcript))
	copy(out.Transcript, r.Transcript)

	out.KeyPoints = make([]string, len(r.KeyPoints))
	copy(out.KeyPoints, r.KeyPoints)

	out.ActionItems = make([]ActionItem, len(r.ActionItems))
	copy(out.ActionItems, r.ActionItems)

	out.Topics = make([]TopicDiscussion, len(r.Topics))
	for i, topic := range r.Topics {
		t := topic
		t.Participants = make([]string, len(topic.Participants))
		copy(t.Participants, topic.Participants)
		out.Topics[i] = t
	}

	out.Participants = make([]string, len(r.Participants))
	copy(out.Participants, r.Participants)

	out.Keywords = make([]string, len(r.Keywords))
	copy(out.Keywords, r.Keywords)

	if r.GroundedSummary != nil {
		out.GroundedSummary = r.GroundedSummary.clone()
	}
	if r.GroundedKeyPoints != nil {
		out.GroundedKeyPoints = r.GroundedKeyPoints.clone()
	}

	return &out
}

func (g *GroundedContent) clone() *GroundedContent {
	out := *g
	if g.GroundingMetadata != nil {
		md := *g.GroundingMetadata

		md.WebSearchQueries = make([]string, len(g.GroundingMetadata.WebSearchQueries))
		copy(md.WebSearchQueries, g.GroundingMetadata.WebSearchQueries)

		md.GroundingChunks = make([]llm.GroundingChunk, len(g.GroundingMetadata.GroundingChunks))
		copy(md.GroundingChunks, g.GroundingMetadata.GroundingChunks)

		md.GroundingSupports = make([]llm.GroundingSupport, len(g.GroundingMetadata.GroundingSupports))
		for i, s := range g.GroundingMetadata.GroundingSupports {
			sc := s
			sc.ChunkIndices = make([]int, len(s.ChunkIndices))
			copy(sc.ChunkIndices, s.ChunkIndices)
			md.GroundingSupports[i] = sc
		}

		out.GroundingMetadata = &md
	}
	return &out
}
