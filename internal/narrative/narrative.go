// Package narrative renders an analysis result into a short markdown
// narrative: overall sentiment, the top topics by confidence, and the
// detected intents.
package narrative

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
)

// TopTopics caps how many topics the narrative mentions.
const TopTopics = 5

const narrativeTemplate = `### Polarity / Sentiment
The overall sentiment of the text is **{{.SentimentLabel}}** with a confidence score of **{{printf "%.2f" .SentimentScore}}**.

### Topics
{{if .Topics}}The main topics discussed include:
{{range .Topics}}- {{.Label}} (confidence {{printf "%.2f" .Confidence}})
{{end}}{{else}}No significant topics were detected.
{{end}}
### Intent
{{if .Intents}}The text suggests {{if .MultipleIntents}}multiple intents, including:{{else}}an intent of:{{end}}
{{range .Intents}}- {{.Label}} (confidence {{printf "%.2f" .Confidence}})
{{end}}{{else}}No clear intent was identified.{{end}}`

// view is the flattened data handed to the template.
type view struct {
	SentimentLabel  string
	SentimentScore  float64
	Topics          []core.Topic
	Intents         []core.Intent
	MultipleIntents bool
}

// Renderer turns analysis results into narratives. Safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// New creates a renderer with the narrative template parsed upfront.
func New() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("narrative").Parse(narrativeTemplate)),
	}
}

// Render produces the markdown narrative for the result. Absent sentiment
// renders with an empty label and a zero score rather than an invented one.
func (r *Renderer) Render(result *core.AnalysisResult) (string, error) {
	data := view{
		SentimentLabel:  "",
		SentimentScore:  0,
		Topics:          topTopics(result.Topics),
		Intents:         result.Intents,
		MultipleIntents: len(result.Intents) > 1,
	}

	if result.Sentiment != nil {
		data.SentimentLabel = result.Sentiment.Label
		data.SentimentScore = result.Sentiment.Confidence
	}

	var builder strings.Builder

	err := r.tmpl.Execute(&builder, data)
	if err != nil {
		return "", fmt.Errorf("failed to render narrative: %w", err)
	}

	return strings.TrimSpace(builder.String()), nil
}

// topTopics returns the highest-confidence topics, at most TopTopics of
// them, without reordering the caller's slice.
func topTopics(topics []core.Topic) []core.Topic {
	sorted := make([]core.Topic, len(topics))
	copy(sorted, topics)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	if len(sorted) > TopTopics {
		sorted = sorted[:TopTopics]
	}

	return sorted
}
