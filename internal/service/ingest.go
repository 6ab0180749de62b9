package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/finsight-ai/finsight/internal/extraction"
	"github.com/finsight-ai/finsight/internal/logger"
	"github.com/finsight-ai/finsight/internal/statement"
	"github.com/finsight-ai/finsight/internal/store"
)

// TextExtractor turns statement PDF bytes into markdown text.
type TextExtractor interface {
	ExtractMarkdown(ctx context.Context, data []byte, filename string) (string, error)
}

// LocalExtractor adapts the PDF text-layer reader to the TextExtractor
// interface for API-keyless development setups.
type LocalExtractor struct {
	extraction.LocalTextExtractor
}

func (l LocalExtractor) ExtractMarkdown(_ context.Context, data []byte, _ string) (string, error) {
	return l.ExtractText(data)
}

// IngestResult summarizes one statement upload.
type IngestResult struct {
	StatementID      int64          `json:"statement_id"`
	Kind             statement.Kind `json:"statement_type"`
	SectionsSaved    int            `json:"sections_saved"`
	RowsSaved        int            `json:"rows_saved"`
	AlreadyProcessed bool           `json:"already_processed"`
	Message          string         `json:"message"`
}

// Ingester runs the statement pipeline: hash, dedupe, extract, classify,
// normalize, enrich, persist.
type Ingester struct {
	store      store.Store
	extractor  TextExtractor
	classifier *extraction.Classifier
	enricher   *extraction.Enricher
}

func NewIngester(s store.Store, extractor TextExtractor, classifier *extraction.Classifier, enricher *extraction.Enricher) *Ingester {
	return &Ingester{store: s, extractor: extractor, classifier: classifier, enricher: enricher}
}

// Ingest processes one uploaded statement for the user. Re-uploading
// bytes that already produced rows short-circuits before any model
// call; a statement that previously saved zero rows is processed again.
func (ing *Ingester) Ingest(ctx context.Context, userID int64, filename string, data []byte) (*IngestResult, error) {
	log := logger.FromContext(ctx)

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	if existing, err := ing.store.GetStatementByHash(ctx, userID, hash); err == nil {
		n, err := ing.store.CountStatementRows(ctx, userID, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("check existing statement: %w", err)
		}
		if n > 0 {
			log.Info().Int64("statement_id", existing.ID).Str("sha256", hash).Msg("statement already on file")
			return &IngestResult{
				StatementID:      existing.ID,
				Kind:             existing.Kind,
				RowsSaved:        n,
				AlreadyProcessed: true,
				Message:          "This statement is already on file.",
			}, nil
		}
		log.Info().Int64("statement_id", existing.ID).Msg("statement exists with no rows, reprocessing")
	}

	markdown, err := ing.extractor.ExtractMarkdown(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("extract statement text: %w", err)
	}

	classified, err := ing.classifier.Classify(ctx, markdown)
	if err != nil {
		return nil, err
	}

	st, err := ing.store.UpsertStatement(ctx, &statement.Statement{
		UserID:           userID,
		SHA256:           hash,
		OriginalFilename: filename,
		Kind:             classified.Kind,
	})
	if err != nil {
		return nil, err
	}

	tables := ing.assembleTables(ctx, classified, markdown)
	statementName := statementDisplayName(filename)

	result := &IngestResult{StatementID: st.ID, Kind: classified.Kind}
	var rows []statement.Row
	for _, sec := range tables {
		sectionRows := sec.Table.ToRows()
		for i := range sectionRows {
			sectionRows[i].StatementName = statementName
			sectionRows[i].StatementKind = classified.Kind
			sectionRows[i].SectionName = sec.Name
			sectionRows[i].StatementID = st.ID
			sectionRows[i].UserID = userID
		}
		if len(sectionRows) == 0 {
			continue
		}
		rows = append(rows, sectionRows...)
		result.SectionsSaved++
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("statement %q produced no rows in any section", filename)
	}
	if err := ing.store.WriteRows(ctx, rows); err != nil {
		return nil, err
	}
	result.RowsSaved = len(rows)
	result.Message = fmt.Sprintf("Statement processed: %d rows saved across %d sections.", result.RowsSaved, result.SectionsSaved)

	log.Info().
		Int64("statement_id", st.ID).
		Str("statement_type", string(classified.Kind)).
		Int("sections", result.SectionsSaved).
		Int("rows", result.RowsSaved).
		Msg("statement ingested")
	return result, nil
}

// sectionTable pairs a canonical section name with its table. Sections
// keep the order the model emitted them in, and two raw keys mapping to
// the same canonical name stay separate entries.
type sectionTable struct {
	Name  string
	Table *statement.Table
}

// assembleTables maps section keys to canonical names, normalizes
// headers and amounts, backfills the credit account summary from the
// raw text and enriches detail sections. Sections missing canonical
// columns are kept; their absent cells persist as NULL.
func (ing *Ingester) assembleTables(ctx context.Context, classified *extraction.Classified, markdown string) []sectionTable {
	log := logger.FromContext(ctx)

	tables := make([]sectionTable, 0, len(classified.Sections))
	for _, sec := range classified.Sections {
		name := statement.MapSectionName(sec.Key, classified.Kind)
		tbl := sec.Table
		tbl.NormalizeHeader()
		tbl.NormalizeAmounts()
		tables = append(tables, sectionTable{Name: name, Table: &tbl})
	}

	if classified.Kind == statement.KindCredit {
		tables = ing.backfillCreditSummary(ctx, tables, markdown)
	}

	for _, sec := range tables {
		if !statement.ShouldEnrich(sec.Name) {
			continue
		}
		descriptions := sec.Table.Column("Description")
		if descriptions == nil {
			log.Warn().Str("section", sec.Name).Msg("section has no Description column, skipping enrichment")
			continue
		}
		labels := ing.enricher.Enrich(ctx, descriptions)
		vendors := make([]string, len(labels))
		categories := make([]string, len(labels))
		for i, l := range labels {
			vendors[i] = l.Vendor
			categories[i] = l.Category
		}
		sec.Table.DropColumn("Vendor")
		sec.Table.DropColumn("Category")
		sec.Table.AppendColumn("Vendor", vendors)
		sec.Table.AppendColumn("Category", categories)
	}

	return tables
}

// statementDisplayName is the uploaded file's base name without its
// extension, the label persisted rows carry.
func statementDisplayName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// backfillCreditSummary recovers summary fields from the raw text when
// the model missed the section entirely or dropped the payment due
// date.
func (ing *Ingester) backfillCreditSummary(ctx context.Context, tables []sectionTable, markdown string) []sectionTable {
	log := logger.FromContext(ctx)

	var tbl *statement.Table
	for _, sec := range tables {
		if sec.Name == statement.CreditAccountSummary {
			tbl = sec.Table
			break
		}
	}
	if tbl != nil && tbl.HasDescription("Payment Due Date") {
		return tables
	}

	fields := statement.FallbackCreditSummary(markdown)
	if len(fields) == 0 {
		return tables
	}
	if tbl == nil {
		tbl = &statement.Table{Columns: []string{"Description", "Amount"}}
		tables = append(tables, sectionTable{Name: statement.CreditAccountSummary, Table: tbl})
	}
	statement.MergeFallbackSummary(tbl, fields)
	log.Info().Int("fields", len(fields)).Msg("backfilled credit account summary from raw text")
	return tables
}
