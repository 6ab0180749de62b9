package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrich(t *testing.T) {
	completer := &fakeCompleter{response: `[
		{"vendor": "Starbucks", "category": "Restaurants & Cafes"},
		{"vendor": "NIKHIL AKULA", "category": "Zelle"}
	]`}

	got := NewEnricher(completer).Enrich(context.Background(), []string{
		"STARBUCKS 1234 BALTIMORE MD",
		"Zelle payment from NIKHIL AKULA for Rent; Conf# 12345",
	})

	require.Len(t, got, 2)
	assert.Equal(t, VendorCategory{Vendor: "Starbucks", Category: "Restaurants & Cafes"}, got[0])
	assert.Equal(t, VendorCategory{Vendor: "NIKHIL AKULA", Category: "Zelle"}, got[1])

	require.Len(t, completer.calls, 1)
	var sent []string
	require.NoError(t, json.Unmarshal([]byte(completer.calls[0]), &sent))
	assert.Len(t, sent, 2)
}

func TestEnrichStripsCodeFences(t *testing.T) {
	completer := &fakeCompleter{response: "```json\n[{\"vendor\": \"Amazon\", \"category\": \"Shopping\"}]\n```"}
	got := NewEnricher(completer).Enrich(context.Background(), []string{"AMAZON MARKETPLACE PMTS"})
	require.Len(t, got, 1)
	assert.Equal(t, "Amazon", got[0].Vendor)
}

func TestEnrichNeutralFallback(t *testing.T) {
	tests := []struct {
		name      string
		completer *fakeCompleter
	}{
		{"completion error", &fakeCompleter{err: errors.New("rate limited")}},
		{"not a JSON array", &fakeCompleter{response: "I cannot label these."}},
		{"length mismatch", &fakeCompleter{response: `[{"vendor": "A", "category": "B"}]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEnricher(tt.completer).Enrich(context.Background(), []string{"one", "two"})
			require.Len(t, got, 2)
			for _, label := range got {
				assert.Equal(t, VendorCategory{Vendor: "", Category: "Other"}, label)
			}
		})
	}
}

func TestEnrichBatches(t *testing.T) {
	// Each call answers only for its own batch; a second batch of one
	// description must trigger a second call.
	completer := &batchCompleter{}
	enricher := NewEnricher(completer)
	enricher.batchSize = 3

	descriptions := []string{"a", "b", "c", "d"}
	got := enricher.Enrich(context.Background(), descriptions)

	require.Len(t, got, 4)
	assert.Equal(t, 2, completer.calls)
	for i, label := range got {
		assert.Equal(t, descriptions[i], label.Vendor)
	}
}

func TestEnrichEmptyInput(t *testing.T) {
	completer := &fakeCompleter{}
	got := NewEnricher(completer).Enrich(context.Background(), nil)
	assert.Empty(t, got)
	assert.Empty(t, completer.calls)
}

type batchCompleter struct {
	calls int
}

func (b *batchCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	b.calls++
	var batch []string
	if err := json.Unmarshal([]byte(user), &batch); err != nil {
		return "", err
	}
	labels := make([]VendorCategory, len(batch))
	for i, desc := range batch {
		labels[i] = VendorCategory{Vendor: desc, Category: "Other"}
	}
	out, err := json.Marshal(labels)
	return string(out), err
}
