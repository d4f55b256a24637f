package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/hirewise/interview-assistant/internal/model"
	"github.com/rs/zerolog"
)

// Controller drives one candidate through the question sequence. All state
// mutation happens inside a single goroutine: manual submits, staged-text
// updates, timer ticks, and summary arrival are commands funneled through one
// channel, so a timer-fired auto-submit and a user submit can never both
// record an answer for the same index.
type Controller struct {
	cfg        Config
	scorer     Scorer
	summarizer Summarizer
	store      SnapshotStore
	sink       ProjectionSink
	log        zerolog.Logger

	cmds   chan command
	done   chan struct{}
	closed sync.Once
	events chan Event

	// Owned by the run goroutine; never touched from outside it.
	state  *model.SessionState
	staged string
	ticker Ticker
}

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdStage
	cmdState
	cmdSummary
)

type command struct {
	kind commandKind
	text string
	auto bool
	// expectIndex rejects submissions for an already-advanced question;
	// -1 means "current question, whatever it is" (timer auto-submit).
	expectIndex int
	reply       chan cmdResult
}

type cmdResult struct {
	state model.SessionState
	err   error
}

// newController starts a controller over an existing state. The state must
// have passed Validate.
func newController(
	cfg Config,
	scorer Scorer,
	summarizer Summarizer,
	store SnapshotStore,
	sink ProjectionSink,
	log zerolog.Logger,
	state *model.SessionState,
) *Controller {
	// A resumed snapshot may carry an exhausted countdown; give the current
	// question its full budget again rather than auto-submitting on arrival.
	if !state.Completed && state.RemainingSeconds <= 0 {
		state.RemainingSeconds = state.Questions[state.CurrentIndex].AllottedSeconds
	}

	c := &Controller{
		cfg:        cfg,
		scorer:     scorer,
		summarizer: summarizer,
		store:      store,
		sink:       sink,
		log:        log.With().Str("component", "session_controller").Str("candidate_id", state.CandidateID.String()).Logger(),
		cmds:       make(chan command),
		done:       make(chan struct{}),
		events:     make(chan Event, 64),
		state:      state,
	}
	go c.run()
	return c
}

// SubmitAnswer records an answer for the question at expectIndex. Pass the
// index the client believes is active; a mismatch returns ErrStaleSubmission
// instead of answering the wrong question.
func (c *Controller) SubmitAnswer(ctx context.Context, text string, expectIndex int) (model.SessionState, error) {
	return c.do(ctx, command{kind: cmdSubmit, text: text, expectIndex: expectIndex})
}

// Stage replaces the draft answer text the timer will auto-submit on expiry.
func (c *Controller) Stage(ctx context.Context, text string) error {
	_, err := c.do(ctx, command{kind: cmdStage, text: text})
	return err
}

// State returns a copy of the current session state.
func (c *Controller) State(ctx context.Context) (model.SessionState, error) {
	return c.do(ctx, command{kind: cmdState})
}

// Events returns the controller's event stream. The channel is closed when
// the controller shuts down.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Close stops the run loop and cancels any pending timer. Idempotent.
func (c *Controller) Close() {
	c.closed.Do(func() { close(c.done) })
}

func (c *Controller) do(ctx context.Context, cmd command) (model.SessionState, error) {
	cmd.reply = make(chan cmdResult, 1)
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return model.SessionState{}, ErrSessionClosed
	case <-ctx.Done():
		return model.SessionState{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.state, res.err
	case <-c.done:
		return model.SessionState{}, ErrSessionClosed
	case <-ctx.Done():
		return model.SessionState{}, ctx.Err()
	}
}

func (c *Controller) run() {
	c.restartTimer()
	defer func() {
		c.stopTimer()
		close(c.events)
	}()

	for {
		select {
		case <-c.done:
			return

		case cmd := <-c.cmds:
			var res cmdResult
			switch cmd.kind {
			case cmdSubmit:
				res.state, res.err = c.handleSubmit(cmd.text, false, cmd.expectIndex)
			case cmdStage:
				c.staged = cmd.text
				res.state = c.state.Clone()
			case cmdState:
				res.state = c.state.Clone()
			case cmdSummary:
				c.applySummary(cmd.text)
				res.state = c.state.Clone()
			}
			if cmd.reply != nil {
				cmd.reply <- res
			}

		case <-c.tickC():
			c.handleTick()
		}
	}
}

func (c *Controller) tickC() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

func (c *Controller) restartTimer() {
	c.stopTimer()
	if !c.state.Completed {
		c.ticker = c.cfg.tickerFactory()()
	}
}

func (c *Controller) stopTimer() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) handleTick() {
	if c.state.Completed {
		return
	}

	c.state.RemainingSeconds--
	if c.state.RemainingSeconds < 0 {
		c.state.RemainingSeconds = 0
	}
	c.state.UpdatedAt = time.Now()
	c.persist()
	c.publish(Event{
		Type:             EventTick,
		QuestionIndex:    c.state.CurrentIndex,
		RemainingSeconds: c.state.RemainingSeconds,
	})

	if c.state.RemainingSeconds > 0 {
		return
	}

	// Time is up: submit whatever is staged, possibly nothing.
	c.stopTimer()
	if _, err := c.handleSubmit(c.staged, true, -1); err != nil {
		c.log.Error().Err(err).Int("question", c.state.CurrentIndex).Msg("auto-submit failed")
	}
}

func (c *Controller) handleSubmit(text string, auto bool, expectIndex int) (model.SessionState, error) {
	if c.state.Completed {
		return c.state.Clone(), ErrSessionCompleted
	}
	if expectIndex >= 0 && expectIndex != c.state.CurrentIndex {
		return c.state.Clone(), ErrStaleSubmission
	}

	text = strings.TrimSpace(text)
	if text == "" && !auto {
		return c.state.Clone(), ErrEmptyAnswer
	}

	idx := c.state.CurrentIndex
	q := c.state.Questions[idx]

	var score int
	if text == "" && !c.cfg.AllowEmptyAutoSubmit {
		// Unanswered question on timeout: seed the floor score without a
		// gateway round-trip. Rejecting would stall the session forever.
		score = c.cfg.ScoreMin
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.GatewayTimeout)
		s, err := c.scorer.ScoreAnswer(ctx, q.Text, text)
		cancel()
		if err != nil {
			if !auto {
				// Recoverable: no record appended, question stays active,
				// the candidate may retry the same answer.
				return c.state.Clone(), fmt.Errorf("%w: %s", ErrScoringUnavailable, err)
			}
			// An auto-submit has no one to retry it; fall back to the
			// neutral score so the session keeps moving.
			c.log.Warn().Err(err).Int("question", idx).Msg("scoring failed on auto-submit, seeding neutral score")
			s = c.cfg.neutralScore()
		}
		score = s
	}

	recorded := score
	c.state.Answers = append(c.state.Answers, model.AnswerRecord{
		Question:        q.Text,
		Answer:          text,
		Difficulty:      q.Difficulty,
		AllottedSeconds: q.AllottedSeconds,
		Score:           &recorded,
	})
	c.state.CurrentIndex++
	c.state.UpdatedAt = time.Now()
	c.staged = ""

	if c.state.CurrentIndex < c.state.TotalQuestions {
		c.state.RemainingSeconds = c.state.Questions[c.state.CurrentIndex].AllottedSeconds
		c.restartTimer()
	} else {
		final := roundMean(c.state.Answers)
		c.state.Completed = true
		c.state.FinalScore = &final
		c.state.RemainingSeconds = 0
		c.stopTimer()
	}

	c.persist()
	c.project()

	c.publish(Event{
		Type:             EventAnswer,
		QuestionIndex:    idx,
		RemainingSeconds: c.state.RemainingSeconds,
		Auto:             auto,
		Score:            &recorded,
	})

	if c.state.Completed {
		c.publish(Event{
			Type:          EventCompleted,
			QuestionIndex: idx,
			FinalScore:    c.state.FinalScore,
		})
		// Summary is best-effort and must not block completion.
		transcript := append([]model.AnswerRecord(nil), c.state.Answers...)
		go c.fetchSummary(transcript)
	}

	return c.state.Clone(), nil
}

// applySummary records a late-arriving summary. Completion and the final
// score are already durable by the time this runs.
func (c *Controller) applySummary(summary string) {
	if !c.state.Completed || summary == "" {
		return
	}
	c.state.Summary = summary
	c.state.UpdatedAt = time.Now()
	c.persist()
	c.project()
	c.publish(Event{
		Type:       EventSummary,
		FinalScore: c.state.FinalScore,
		Summary:    summary,
	})
}

// fetchSummary runs outside the command loop and feeds its result back in as
// a command, preserving the single-writer rule.
func (c *Controller) fetchSummary(transcript []model.AnswerRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.GatewayTimeout)
	defer cancel()

	summary, err := c.summarizer.Summarize(ctx, transcript)
	if err != nil {
		// Non-fatal: the session is completed either way, summary stays empty.
		c.log.Warn().Err(err).Msg("summary gateway failed")
		return
	}

	select {
	case c.cmds <- command{kind: cmdSummary, text: summary}:
	case <-c.done:
	}
}

// persist writes the snapshot after the in-memory mutation it reflects.
// Write failures are logged, not surfaced: the session keeps running and the
// next mutation retries the write (last-write-wins store).
func (c *Controller) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.GatewayTimeout)
	defer cancel()
	if err := c.store.Put(ctx, c.state); err != nil {
		c.log.Error().Err(err).Msg("persist snapshot failed")
	}
}

func (c *Controller) project() {
	status := model.CandidateStatusInProgress
	if c.state.Completed {
		status = model.CandidateStatusCompleted
	}
	update := &model.ProjectionUpdate{
		CandidateID: c.state.CandidateID,
		Status:      status,
		FinalScore:  c.state.FinalScore,
		Summary:     c.state.Summary,
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.GatewayTimeout)
	defer cancel()
	if err := c.sink.Enqueue(ctx, update); err != nil {
		c.log.Error().Err(err).Msg("enqueue projection failed")
	}
}

func (c *Controller) publish(ev Event) {
	select {
	case c.events <- ev:
	default:
		// No listener or a slow one; events are advisory, drop rather than
		// block the state machine.
	}
}

// roundMean is the aggregation rule: arithmetic mean of all per-answer
// scores, rounded to nearest with ties rounding half up.
func roundMean(answers []model.AnswerRecord) int {
	sum := 0
	for _, a := range answers {
		if a.Score != nil {
			sum += *a.Score
		}
	}
	mean := float64(sum) / float64(len(answers))
	return int(math.Floor(mean + 0.5))
}
