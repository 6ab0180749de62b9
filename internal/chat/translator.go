package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/logger"
)

// Translator turns a natural-language question into one validated
// read-only SQL statement over the analytical views.
type Translator struct {
	completer llm.Completer
}

func NewTranslator(completer llm.Completer) *Translator {
	return &Translator{completer: completer}
}

// Translate generates SQL for the question. history carries the user's
// recent questions, oldest first, so follow-ups can reuse earlier
// filters. It returns "" (no error) when the model's output does not
// survive validation; callers treat that as "cannot answer".
func (t *Translator) Translate(ctx context.Context, question string, history []string) (string, error) {
	log := logger.FromContext(ctx)

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Recent conversation (from oldest to newest):\n")
		for _, q := range history {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\nThe final question in this list is the CURRENT question you must answer.\n")
		b.WriteString("Use earlier questions only for context when the latest one is vague\n")
		b.WriteString("or says things like 'that month', 'those categories', 'go deeper',\n")
		b.WriteString("'only groceries', etc.\n")
	} else {
		b.WriteString("There is no previous conversation. Treat this as an independent question.\n")
	}
	b.WriteString("\nUser question (the latest one in the conversation):\n")
	b.WriteString(question)
	b.WriteString("\n\nReturn exactly ONE valid SQL SELECT statement that follows the rules.")

	raw, err := t.completer.Complete(ctx, translatorSystemPrompt, b.String())
	if err != nil {
		return "", fmt.Errorf("generate SQL: %w", err)
	}

	sql := ValidateSQL(raw)
	if sql == "" {
		log.Warn().Str("question", question).Str("sql", raw).Msg("generated SQL rejected by validation")
	}
	return sql, nil
}

var fenceRe = regexp.MustCompile(`(?im)^` + "```" + `sql|^` + "```" + `|` + "```" + `$`)

// bannedVerbs are rejected as whole words anywhere in the statement, so
// a column named created_at passes while CREATE TABLE does not.
var bannedVerbs = []string{
	"insert", "update", "delete", "drop",
	"alter", "truncate", "create", "grant", "revoke",
}

var wordRe = regexp.MustCompile(`[a-z_]+`)

// ValidateSQL cleans a model response and enforces the read-only,
// single-statement, tenant-filtered contract. It returns the cleaned
// statement or "" when any check fails.
func ValidateSQL(raw string) string {
	sql := strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(raw), ""))

	var lines []string
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}
	cleaned := strings.TrimSpace(strings.Join(lines, "\n"))
	if cleaned == "" {
		return ""
	}

	low := strings.ToLower(cleaned)
	if !strings.HasPrefix(low, "select") && !strings.HasPrefix(low, "with") {
		return ""
	}
	if !strings.Contains(low, ":user_id") {
		return ""
	}
	for _, word := range wordRe.FindAllString(low, -1) {
		for _, banned := range bannedVerbs {
			if word == banned {
				return ""
			}
		}
	}

	var statements int
	for _, part := range strings.Split(cleaned, ";") {
		if strings.TrimSpace(part) != "" {
			statements++
		}
	}
	if statements > 1 {
		return ""
	}

	return normalizeSQL(cleaned)
}

// normalizeSQL fixes the common model mistake of quoting the raw
// Title-Case column names instead of using the view's lowercase ones.
func normalizeSQL(sql string) string {
	replacements := map[string]string{
		`"Description"`: "description",
		`"Vendor"`:      "vendor",
		`"Category"`:    "category",
	}
	for bad, good := range replacements {
		sql = strings.ReplaceAll(sql, bad, good)
	}
	return sql
}
