package metrics_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

type failingSampler struct{}

func (failingSampler) SampleMB() (float64, error) { return 0, errors.New("no procfs") }

func TestRecorderAppendOnly(t *testing.T) {
	r := metrics.NewRecorder()

	r.RecordLatency(1500 * time.Millisecond)
	r.RecordLatency(500 * time.Millisecond)
	r.RecordMemory(100)
	r.RecordMemory(-5)
	r.IncThroughput()
	r.IncThroughput()
	r.RecordAnswer(true)
	r.RecordAnswer(false)
	r.RecordSentiment(true)

	snap := r.Snapshot()

	if got := snap.Latencies; len(got) != 2 || got[0] != 1.5 || got[1] != 0.5 {
		t.Errorf("latencies = %v", got)
	}
	if got := snap.Memory; len(got) != 2 || got[1] != 0 {
		t.Errorf("negative memory should clamp to zero, got %v", got)
	}
	if snap.Throughput != 2 {
		t.Errorf("throughput = %d", snap.Throughput)
	}
	if got := snap.Answers; len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("answers = %v", got)
	}
	if got := snap.Sentiments; len(got) != 1 || got[0] != 1 {
		t.Errorf("sentiments = %v", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := metrics.NewRecorder()
	r.RecordAnswer(true)

	snap := r.Snapshot()
	snap.Answers[0] = 0

	if r.Snapshot().Answers[0] != 1 {
		t.Error("mutating a snapshot must not affect the recorder")
	}
}

func TestSampleMemory(t *testing.T) {
	r := metrics.NewRecorder()

	t.Run("static sampler appends", func(t *testing.T) {
		if err := r.SampleMemory(metrics.StaticSampler(42)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := r.Snapshot().Memory; len(got) != 1 || got[0] != 42 {
			t.Errorf("memory = %v", got)
		}
	})

	t.Run("failing sampler records nothing", func(t *testing.T) {
		if err := r.SampleMemory(failingSampler{}); err == nil {
			t.Error("expected error")
		}
		if got := r.Snapshot().Memory; len(got) != 1 {
			t.Errorf("memory = %v", got)
		}
	})

	t.Run("process sampler reports something", func(t *testing.T) {
		mb, err := metrics.NewProcessSampler().SampleMB()
		if err != nil {
			t.Skipf("process sampling unavailable: %v", err)
		}
		if mb <= 0 {
			t.Errorf("expected positive RSS, got %v", mb)
		}
	})
}

func TestOnUpdate(t *testing.T) {
	r := metrics.NewRecorder()
	var seen []int
	r.OnUpdate(func(s metrics.Snapshot) { seen = append(seen, s.Throughput) })

	r.IncThroughput()
	r.RecordAnswer(true)
	r.IncThroughput()

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 1 || seen[2] != 2 {
		t.Errorf("update callbacks = %v", seen)
	}
}

func TestSummary(t *testing.T) {
	t.Run("empty recorder reports zeros", func(t *testing.T) {
		s := metrics.NewRecorder().Summary()
		if s.AvgLatencySec != 0 || s.AvgMemoryMB != 0 || s.AnswerSuccessPct != 0 || s.SentimentSuccessPct != 0 {
			t.Errorf("expected zero summary, got %+v", s)
		}
		if math.IsNaN(s.AvgLatencySec) {
			t.Error("average must not be NaN")
		}
	})

	t.Run("averages and percentages", func(t *testing.T) {
		r := metrics.NewRecorder()
		r.RecordLatency(time.Second)
		r.RecordLatency(3 * time.Second)
		r.RecordMemory(10)
		r.RecordMemory(20)
		r.RecordMemory(30)
		r.IncThroughput()
		r.IncThroughput()
		r.RecordAnswer(true)
		r.RecordAnswer(true)
		r.RecordAnswer(false)
		r.RecordAnswer(true)
		r.RecordSentiment(true)
		r.RecordSentiment(false)

		s := r.Summary()
		if s.Throughput != 2 {
			t.Errorf("throughput = %d", s.Throughput)
		}
		if s.AvgLatencySec != 2 {
			t.Errorf("avg latency = %v", s.AvgLatencySec)
		}
		if s.AvgMemoryMB != 20 {
			t.Errorf("avg memory = %v", s.AvgMemoryMB)
		}
		if s.AnswerSuccessPct != 75 {
			t.Errorf("answer pct = %v", s.AnswerSuccessPct)
		}
		if s.SentimentSuccessPct != 50 {
			t.Errorf("sentiment pct = %v", s.SentimentSuccessPct)
		}
		if s.AnswerCalls != 4 || s.SentimentCalls != 2 {
			t.Errorf("call counts = %d/%d", s.AnswerCalls, s.SentimentCalls)
		}

		out := s.String()
		for _, want := range []string{
			"Total Requests Processed (Throughput): 2",
			"Average Latency (seconds): 2.000",
			"Average Memory Usage (MB): 20.00",
			"Response Accuracy: 75.0%",
			"Sentiment Analysis Accuracy: 50.0%",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
		if !strings.Contains(s.Spoken(), "2 questions") {
			t.Errorf("spoken summary = %q", s.Spoken())
		}
	})
}
