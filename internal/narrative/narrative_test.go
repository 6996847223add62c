package narrative_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/narrative"
)

func TestRenderer_Render_FullResult(t *testing.T) {
	t.Parallel()

	renderer := narrative.New()

	result := &core.AnalysisResult{
		Transcript: "I love sports and the weather is great.",
		Sentiment:  &core.Sentiment{Label: "positive", Confidence: 0.82},
		Topics: []core.Topic{
			{Label: "sports", Confidence: 0.95},
			{Label: "weather", Confidence: 0.62},
		},
		Intents: []core.Intent{
			{Label: "inform", Confidence: 0.88},
		},
	}

	text, err := renderer.Render(result)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, expected := range []string{
		"### Polarity / Sentiment",
		"**positive**",
		"**0.82**",
		"### Topics",
		"- sports (confidence 0.95)",
		"- weather (confidence 0.62)",
		"### Intent",
		"an intent of:",
		"- inform (confidence 0.88)",
	} {
		if !strings.Contains(text, expected) {
			t.Errorf("Expected narrative to contain %q, got:\n%s", expected, text)
		}
	}
}

func TestRenderer_Render_MultipleIntents(t *testing.T) {
	t.Parallel()

	renderer := narrative.New()

	result := &core.AnalysisResult{
		Transcript: "",
		Sentiment:  nil,
		Topics:     nil,
		Intents: []core.Intent{
			{Label: "greeting", Confidence: 0.9},
			{Label: "farewell", Confidence: 0.4},
		},
	}

	text, err := renderer.Render(result)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(text, "multiple intents, including:") {
		t.Errorf("Expected the multiple intents phrasing, got:\n%s", text)
	}
}

func TestRenderer_Render_EmptyResult(t *testing.T) {
	t.Parallel()

	renderer := narrative.New()

	result := &core.AnalysisResult{
		Transcript: "",
		Sentiment:  nil,
		Topics:     nil,
		Intents:    nil,
	}

	text, err := renderer.Render(result)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(text, "No significant topics were detected.") {
		t.Errorf("Expected the no-topics phrasing, got:\n%s", text)
	}

	if !strings.Contains(text, "No clear intent was identified.") {
		t.Errorf("Expected the no-intent phrasing, got:\n%s", text)
	}
}

func TestRenderer_Render_CapsTopicsByConfidence(t *testing.T) {
	t.Parallel()

	renderer := narrative.New()

	topics := make([]core.Topic, 0, narrative.TopTopics+3)
	for index := range narrative.TopTopics + 3 {
		topics = append(topics, core.Topic{
			Label:      fmt.Sprintf("topic-%d", index),
			Confidence: float64(index) / 10,
		})
	}

	result := &core.AnalysisResult{
		Transcript: "",
		Sentiment:  nil,
		Topics:     topics,
		Intents:    nil,
	}

	text, err := renderer.Render(result)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	rendered := strings.Count(text, "- topic-")
	if rendered != narrative.TopTopics {
		t.Errorf("Expected %d topics in the narrative, got %d", narrative.TopTopics, rendered)
	}

	// The lowest-confidence entries are the ones that must be dropped.
	if strings.Contains(text, "- topic-0 ") || strings.Contains(text, "- topic-1 ") {
		t.Errorf("Expected the lowest-confidence topics to be dropped, got:\n%s", text)
	}

	if topics[0].Label != "topic-0" {
		t.Error("Expected the caller's topic slice to keep its order")
	}
}
