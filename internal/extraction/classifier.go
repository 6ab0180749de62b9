package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/logger"
	"github.com/finsight-ai/finsight/internal/statement"
)

// Section is one extracted table from a classified statement, keyed by the
// short identifier the model emits (e.g. "purchases_and_adjustments").
type Section struct {
	Key   string
	Table statement.Table
}

// Classified is the structured output of a classification pass: the
// statement kind plus its tabular sections in the order the model
// produced them.
type Classified struct {
	Kind     statement.Kind
	Sections []Section
}

// Classifier turns raw statement markdown into typed sections using an
// LLM completion.
type Classifier struct {
	completer llm.Completer
}

func NewClassifier(completer llm.Completer) *Classifier {
	return &Classifier{completer: completer}
}

type classifiedPayload struct {
	StatementType string                     `json:"statement_type"`
	Sections      map[string]json.RawMessage `json:"sections"`
}

type rawSection struct {
	Columns []string          `json:"columns"`
	Rows    []json.RawMessage `json:"rows"`
}

// Classify sends the statement text to the model and parses the strict
// JSON response. A response that is not valid JSON in the expected shape
// fails loudly rather than being silently repaired.
func (c *Classifier) Classify(ctx context.Context, markdown string) (*Classified, error) {
	log := logger.FromContext(ctx)

	raw, err := c.completer.Complete(ctx, classifierSystemPrompt, markdown)
	if err != nil {
		return nil, fmt.Errorf("classify statement: %w", err)
	}

	var payload classifiedPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Error().Err(err).Str("content", truncate(raw, 500)).Msg("classifier returned malformed JSON")
		return nil, &Error{
			Code:    ErrMalformedOutput,
			Message: "classifier response is not valid JSON",
			Cause:   err,
		}
	}

	out := &Classified{Kind: statement.ParseKind(payload.StatementType)}

	keys, err := sectionOrder([]byte(raw))
	if err != nil {
		// Fall back to map iteration only if the order scan fails,
		// which would mean the payload parse above was also invalid.
		for key := range payload.Sections {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		rawSec, ok := payload.Sections[key]
		if !ok {
			continue
		}
		var sec rawSection
		if err := json.Unmarshal(rawSec, &sec); err != nil {
			log.Warn().Err(err).Str("section", key).Msg("skipping unparseable section")
			continue
		}
		if len(sec.Columns) == 0 {
			log.Warn().Str("section", key).Msg("skipping section with no columns")
			continue
		}
		table := statement.Table{Columns: sec.Columns}
		for _, rawRow := range sec.Rows {
			row, ok := repairRow(rawRow, len(sec.Columns))
			if !ok {
				log.Warn().Str("section", key).Msg("skipping non-list row")
				continue
			}
			table.Rows = append(table.Rows, row)
		}
		out.Sections = append(out.Sections, Section{Key: key, Table: table})
	}

	return out, nil
}

// repairRow coerces a JSON row into a string slice of exactly width
// cells, padding short rows and truncating long ones. Rows that are not
// JSON arrays are rejected.
func repairRow(raw json.RawMessage, width int) ([]string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var cells []any
	if err := dec.Decode(&cells); err != nil {
		return nil, false
	}
	row := make([]string, width)
	for i := 0; i < width; i++ {
		if i >= len(cells) {
			row[i] = ""
			continue
		}
		row[i] = stringifyCell(cells[i])
	}
	return row, true
}

func stringifyCell(v any) string {
	switch cell := v.(type) {
	case nil:
		return ""
	case string:
		return cell
	case json.Number:
		return cell.String()
	case bool:
		if cell {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", cell)
	}
}

// sectionOrder extracts the section keys in the order they appear in the
// response, since encoding/json maps do not preserve it.
func sectionOrder(raw []byte) ([]string, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, err
	}
	sections, ok := outer["sections"]
	if !ok {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(sections))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("sections is not an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in sections", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
