package metrics

import (
	"fmt"
	"strings"
)

// Summary is the end-of-session report.
type Summary struct {
	Throughput          int     `json:"throughput"`
	AvgLatencySec       float64 `json:"avg_latency_s"`
	AvgMemoryMB         float64 `json:"avg_memory_mb"`
	AnswerSuccessPct    float64 `json:"answer_success_pct"`
	SentimentSuccessPct float64 `json:"sentiment_success_pct"`

	LatencySamples int `json:"latency_samples"`
	MemorySamples  int `json:"memory_samples"`
	AnswerCalls    int `json:"answer_calls"`
	SentimentCalls int `json:"sentiment_calls"`
}

// Summarize computes a Summary from a snapshot.
// Empty sequences report zero rather than NaN.
func Summarize(s Snapshot) Summary {
	return Summary{
		Throughput:          s.Throughput,
		AvgLatencySec:       mean(s.Latencies),
		AvgMemoryMB:         mean(s.Memory),
		AnswerSuccessPct:    percent(s.Answers),
		SentimentSuccessPct: percent(s.Sentiments),
		LatencySamples:      len(s.Latencies),
		MemorySamples:       len(s.Memory),
		AnswerCalls:         len(s.Answers),
		SentimentCalls:      len(s.Sentiments),
	}
}

// String renders the report as printed at session end.
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("--- LLMOps Metrics ---\n")
	fmt.Fprintf(&b, "Total Requests Processed (Throughput): %d\n", s.Throughput)
	fmt.Fprintf(&b, "Average Latency (seconds): %.3f\n", s.AvgLatencySec)
	fmt.Fprintf(&b, "Average Memory Usage (MB): %.2f\n", s.AvgMemoryMB)
	fmt.Fprintf(&b, "Response Accuracy: %.1f%%\n", s.AnswerSuccessPct)
	fmt.Fprintf(&b, "Sentiment Analysis Accuracy: %.1f%%", s.SentimentSuccessPct)
	return b.String()
}

// Spoken renders a short form suitable for text-to-speech.
func (s Summary) Spoken() string {
	return fmt.Sprintf(
		"Session complete. I answered %d questions with an average latency of %.1f seconds. "+
			"Response accuracy was %.0f percent and sentiment accuracy was %.0f percent.",
		s.Throughput, s.AvgLatencySec, s.AnswerSuccessPct, s.SentimentSuccessPct)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func percent(tally []int) float64 {
	if len(tally) == 0 {
		return 0
	}
	var sum int
	for _, v := range tally {
		sum += v
	}
	return float64(sum) / float64(len(tally)) * 100
}
