package analysis

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harshbansal7/dealsense/config"
	"github.com/harshbansal7/dealsense/pkg/llm"
	"github.com/harshbansal7/dealsense/pkg/logging"
)

const (
	// defaultSpeaker labels utterances that arrive without a speaker.
	defaultSpeaker = "Participant"

	// cycleInterval is the elapsed time since the last cycle start that
	// triggers a new analysis cycle.
	cycleInterval = 5 * time.Minute

	// cycleBatchSize triggers a cycle whenever the transcript length is an
	// exact multiple of it.
	cycleBatchSize = 20
)

// Segment is one raw utterance fragment from the speech pipeline. A batch of
// segments is merged into a single transcript entry. A zero Timestamp means
// the fragment carried none; the merged entry then keeps its arrival time,
// so the epoch instant itself is not representable.
type Segment struct {
	Speaker   string  `json:"speaker,omitempty"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp,omitempty"` // epoch seconds
}

// Analyst owns the analysis record for one meeting: it ingests utterance
// batches, schedules and runs analysis cycles, and persists the record.
//
// Two locks protect it. mu is a reader/writer lock over the record's mutable
// fields; it is held briefly for ingestion, snapshots, and commits, never
// across LLM calls. cycleMu serializes analysis cycles so at most one runs
// at a time regardless of how many triggers fire.
type Analyst struct {
	cfg          config.AgentConfig
	providerName string
	provider     llm.Provider
	prompts      *promptBuilder
	store        *Store
	log          logging.Logger
	metrics      *Metrics

	mu        sync.RWMutex
	record    *Record
	lastCycle time.Time

	cycleMu sync.Mutex
	// cycleQueued coalesces triggers: a scheduled-but-not-started cycle
	// absorbs further triggers instead of queueing redundant runs.
	cycleQueued atomic.Bool
}

// NewAnalyst creates an analyst for one meeting, seeding its record from the
// newest persisted file with the same meeting identity when one exists.
func NewAnalyst(agentCfg config.AgentConfig, llmCfg config.LLMConfig, provider llm.Provider, store *Store, log logging.Logger, metrics *Metrics) *Analyst {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.With(logging.F("meeting_id", agentCfg.MeetingID))

	a := &Analyst{
		cfg:          agentCfg,
		providerName: llmCfg.Provider,
		provider:     provider,
		prompts:      newPromptBuilder(agentCfg, provider, log),
		store:        store,
		log:          log,
		metrics:      metrics,
		record:       NewRecord(agentCfg.MeetingID, agentCfg.MeetingURL),
	}

	if store != nil {
		if err := store.Load(a.record); err != nil {
			log.Warn("could not load existing analysis", logging.Err(err))
		}
	}

	return a
}

// Append ingests one utterance batch. Fragment texts are concatenated with
// single spaces in arrival order; the entry's speaker is the last fragment
// that supplied one, and its timestamp the last fragment that supplied one.
// A batch whose concatenated text is empty is dropped without any side
// effect. On success the record is persisted and the cycle trigger is
// evaluated; a due cycle starts asynchronously.
func (a *Analyst) Append(batch []Segment) {
	if len(batch) == 0 {
		return
	}

	var text strings.Builder
	speaker := defaultSpeaker
	timestamp := time.Now()

	for _, seg := range batch {
		if seg.Speaker != "" {
			speaker = seg.Speaker
		}
		if seg.Text != "" {
			if text.Len() > 0 {
				text.WriteString(" ")
			}
			text.WriteString(seg.Text)
		}
		if seg.Timestamp != 0 {
			timestamp = time.Unix(int64(seg.Timestamp), 0)
		}
	}

	entryText := text.String()
	if entryText == "" {
		return
	}

	a.mu.Lock()
	a.record.Transcript = append(a.record.Transcript, TranscriptEntry{
		Timestamp: timestamp,
		Speaker:   speaker,
		Text:      entryText,
		IsAgent:   false,
	})
	a.addParticipantLocked(speaker)
	a.record.WordCount += len(strings.Fields(entryText))
	a.record.DurationMinutes = time.Since(a.record.StartTime).Minutes()
	a.record.LastUpdated = time.Now()

	// Persisting under the record lock serializes bursty ingestion through
	// the file write; accepted latency trade-off.
	a.persistLocked()

	due := time.Since(a.lastCycle) > cycleInterval ||
		len(a.record.Transcript)%cycleBatchSize == 0
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.TranscriptEntriesTotal.Inc()
	}

	if due {
		a.scheduleCycle()
	}
}

// addParticipantLocked inserts a speaker into the participant set, first
// occurrence only, order preserved. Caller holds mu.
func (a *Analyst) addParticipantLocked(speaker string) {
	for _, p := range a.record.Participants {
		if p == speaker {
			return
		}
	}
	a.record.Participants = append(a.record.Participants, speaker)
}

// persistLocked saves the record. Failures are logged and non-fatal; the
// in-memory record stays authoritative. Caller holds mu.
func (a *Analyst) persistLocked() {
	if a.store == nil {
		return
	}
	if err := a.store.Save(a.record); err != nil {
		a.log.Error("failed to save analysis record", logging.Err(err))
		if a.metrics != nil {
			a.metrics.PersistFailuresTotal.Inc()
		}
	}
}

// scheduleCycle starts an analysis cycle asynchronously. Triggers that fire
// while a cycle is already queued are absorbed.
func (a *Analyst) scheduleCycle() {
	if !a.cycleQueued.CompareAndSwap(false, true) {
		return
	}
	go a.runCycle(context.Background())
}

// Analysis returns a deep copy of the current record.
func (a *Analyst) Analysis() *Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.record.Clone()
}

// Report returns a human-readable rendering of the current record.
func (a *Analyst) Report() string {
	return RenderReport(a.Analysis())
}
