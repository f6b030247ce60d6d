package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

// Loop runs one spoken session: question, answer, feedback, sentiment,
// repeated until the user says "exit".
type Loop struct {
	cfg        Config
	capturer   *Capturer
	answerer   *Answerer
	classifier *SentimentClassifier
	speaker    Speaker
	recorder   *metrics.Recorder
	logger     *slog.Logger

	session string

	mu       sync.Mutex
	state    State
	turn     string
	running  bool
	observer Observer
}

// NewLoop wires a session from its components. All of them must share rec.
func NewLoop(cfg Config, c *Capturer, a *Answerer, sc *SentimentClassifier, s Speaker, rec *metrics.Recorder) *Loop {
	cfg = cfg.withDefaults()
	l := &Loop{
		cfg:        cfg,
		capturer:   c,
		answerer:   a,
		classifier: sc,
		speaker:    s,
		recorder:   rec,
		session:    uuid.NewString(),
		state:      AwaitingQuestion,
	}
	l.logger = cfg.Logger.With("component", "assistant.loop", "session", l.session)
	c.OnAttempt(l.attempted)
	return l
}

// SetObserver registers the event observer. Call before Run.
func (l *Loop) SetObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = o
}

// Session returns the session id.
func (l *Loop) Session() string {
	return l.session
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Running reports whether Run is in progress.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Recorder returns the session's metrics recorder.
func (l *Loop) Recorder() *metrics.Recorder {
	return l.recorder
}

// Run drives the session until the user says exit or ctx is cancelled,
// then prints and speaks the metrics summary and returns it.
func (l *Loop) Run(ctx context.Context) metrics.Summary {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	l.logger.Info("session started")

	var question, feedback string
	state := AwaitingQuestion
	l.enter(state)

	for state != SessionEnded {
		if ctx.Err() != nil {
			l.logger.Info("session interrupted", "error", ctx.Err())
			state = SessionEnded
			break
		}

		switch state {
		case AwaitingQuestion:
			l.newTurn()
			fmt.Fprintln(l.cfg.Out, "\n--- Ask a General Knowledge Question ---")

			text, ok := l.capturer.Capture(ctx, QuestionPrompt, l.cfg.Retries)
			if !ok {
				continue
			}
			if l.isExit(text) {
				fmt.Fprintln(l.cfg.Out, "Exiting the session and displaying metrics.")
				state = SessionEnded
				continue
			}
			question = text
			l.publish(EventQuestion, question, "")
			state = AnsweringAndSpeaking

		case AnsweringAndSpeaking:
			answer := l.answerer.Answer(ctx, question)
			l.publish(EventAnswer, answer, "")
			l.say(ctx, answer)
			state = AwaitingFeedback

		case AwaitingFeedback:
			text, ok := l.capturer.Capture(ctx, FeedbackPrompt, l.cfg.Retries)
			if !ok {
				l.pause(ctx)
				state = AwaitingQuestion
				break
			}
			feedback = text
			l.publish(EventFeedback, feedback, "")
			state = AnalyzingFeedback

		case AnalyzingFeedback:
			label := l.classifier.Classify(ctx, feedback)
			l.publish(EventSentiment, label, "")
			l.say(ctx, "Your feedback sentiment is detected as: "+label)
			l.pause(ctx)
			state = AwaitingQuestion
		}

		l.enter(state)
	}

	l.enter(SessionEnded)

	summary := l.recorder.Summary()
	fmt.Fprintln(l.cfg.Out)
	fmt.Fprintln(l.cfg.Out, summary.String())
	l.publish(EventSummary, summary.String(), "")
	l.say(ctx, summary.Spoken())

	l.logger.Info("session ended",
		"throughput", summary.Throughput,
		"answer_calls", summary.AnswerCalls,
		"sentiment_calls", summary.SentimentCalls,
	)
	return summary
}

// IsExit reports whether text is the spoken exit command, ignoring case and
// surrounding whitespace.
func IsExit(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), ExitCommand)
}

// IsExitLenient is IsExit that also accepts trailing sentence punctuation,
// as transcription models add it ("Exit.").
func IsExitLenient(text string) bool {
	return IsExit(strings.TrimRight(strings.TrimSpace(text), ".!?"))
}

func (l *Loop) isExit(text string) bool {
	if l.cfg.LenientExit {
		return IsExitLenient(text)
	}
	return IsExit(text)
}

// enter records a state transition; repeated entries of the same state are not republished.
func (l *Loop) enter(s State) {
	l.mu.Lock()
	prev := l.state
	l.state = s
	l.mu.Unlock()

	if prev == s && s != AwaitingQuestion {
		return
	}
	l.logger.Debug("state", "from", prev, "to", s)
	l.publish(EventState, "", string(prev))
}

func (l *Loop) newTurn() {
	l.mu.Lock()
	l.turn = uuid.NewString()
	l.mu.Unlock()
}

func (l *Loop) attempted(a Attempt) {
	detail := a.Outcome.Kind.String()
	if a.Outcome.Err != nil {
		detail += ": " + a.Outcome.Err.Error()
	}
	l.publish(EventAttempt, a.Outcome.Transcript, detail)
}

func (l *Loop) publish(kind EventKind, text, detail string) {
	l.mu.Lock()
	obs := l.observer
	ev := Event{
		Kind:    kind,
		Session: l.session,
		Turn:    l.turn,
		State:   l.state,
		Text:    text,
		Detail:  detail,
		Time:    time.Now(),
	}
	l.mu.Unlock()

	if obs != nil {
		obs(ev)
	}
}

func (l *Loop) say(ctx context.Context, text string) {
	if err := l.speaker.Speak(ctx, text); err != nil {
		l.logger.Warn("speak failed", "error", err)
	}
}

func (l *Loop) pause(ctx context.Context) {
	_ = sleep(ctx, l.cfg.Pause)
}
