package extraction

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/logger"
)

const enrichBatchSize = 40

// VendorCategory is one enrichment label pair for a transaction
// description.
type VendorCategory struct {
	Vendor   string `json:"vendor"`
	Category string `json:"category"`
}

// Enricher labels transaction descriptions with vendor and category
// fields in batches. A batch whose response cannot be used verbatim is
// replaced with neutral labels rather than partially applied.
type Enricher struct {
	completer llm.Completer
	batchSize int
}

func NewEnricher(completer llm.Completer) *Enricher {
	return &Enricher{completer: completer, batchSize: enrichBatchSize}
}

// Enrich returns one label per description, in input order. It never
// fails: batches that error out or come back with the wrong length are
// filled with {"", "Other"}.
func (e *Enricher) Enrich(ctx context.Context, descriptions []string) []VendorCategory {
	out := make([]VendorCategory, 0, len(descriptions))
	for start := 0; start < len(descriptions); start += e.batchSize {
		end := start + e.batchSize
		if end > len(descriptions) {
			end = len(descriptions)
		}
		out = append(out, e.enrichBatch(ctx, descriptions[start:end])...)
	}
	return out
}

func (e *Enricher) enrichBatch(ctx context.Context, batch []string) []VendorCategory {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(batch)
	if err != nil {
		return neutralLabels(len(batch))
	}

	raw, err := e.completer.Complete(ctx, enricherSystemPrompt, string(payload))
	if err != nil {
		log.Warn().Err(err).Int("batch_size", len(batch)).Msg("enrichment call failed, using neutral labels")
		return neutralLabels(len(batch))
	}

	var labels []VendorCategory
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &labels); err != nil {
		log.Warn().Err(err).Str("content", truncate(raw, 300)).Msg("enrichment response is not a JSON array, using neutral labels")
		return neutralLabels(len(batch))
	}
	if len(labels) != len(batch) {
		log.Warn().Int("want", len(batch)).Int("got", len(labels)).Msg("enrichment response length mismatch, using neutral labels")
		return neutralLabels(len(batch))
	}

	for i := range labels {
		labels[i].Vendor = strings.TrimSpace(labels[i].Vendor)
		labels[i].Category = strings.TrimSpace(labels[i].Category)
		if labels[i].Category == "" {
			labels[i].Category = "Other"
		}
	}
	return labels
}

func neutralLabels(n int) []VendorCategory {
	labels := make([]VendorCategory, n)
	for i := range labels {
		labels[i] = VendorCategory{Vendor: "", Category: "Other"}
	}
	return labels
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, from a model response.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "sql" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
