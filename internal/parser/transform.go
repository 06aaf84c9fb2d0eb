package parser

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// Accepted shapes for the model's "date" string, tried in order. Formats
// without a zone are interpreted as local wall-clock time.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// draftFromModelOutput decodes the cleaned JSON payload and validates field
// presence and types explicitly; the model's output is untrusted input. The
// returned date is zero when the model's value was missing or unparseable;
// the caller decides the fallback. input is the original user text, used for
// kind inference and as a last-resort description.
func draftFromModelOutput(payload, input string) (*domain.Draft, time.Time, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, time.Time{}, &ContentError{Reason: "response is not valid JSON: " + err.Error(), Raw: payload}
	}

	rawAmount, err := numberField(obj, "amount")
	if err != nil {
		return nil, time.Time{}, &ContentError{Reason: err.Error(), Raw: payload}
	}

	description := stringField(obj, "description")
	if description == "" {
		// Model dropped the label; a truncated echo of the input beats an
		// empty record the user cannot recognize.
		description = truncate(input, 24)
	}

	category := stringField(obj, "category")
	if category == "" {
		category = "其他"
	}

	draft := &domain.Draft{
		// On-screen figures may be negative (e.g. "-9.70"); the sign encodes
		// direction, not value.
		Amount:      math.Abs(rawAmount),
		Kind:        normalizeKind(stringField(obj, "type"), rawAmount, input),
		Category:    category,
		Description: description,
	}

	modelDate := parseModelDate(stringField(obj, "date"))

	return draft, modelDate, nil
}

// normalizeKind resolves the transaction direction. The model's own tag wins
// when it is one of the closed values; otherwise the amount sign and income
// keywords in the input decide, defaulting to expense.
func normalizeKind(tag string, rawAmount float64, input string) domain.Kind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case string(domain.KindExpense), "支出":
		return domain.KindExpense
	case string(domain.KindIncome), "收入":
		return domain.KindIncome
	}

	if rawAmount < 0 {
		return domain.KindExpense
	}
	for _, kw := range []string{"收入", "工资", "转入", "退款", "红包", "入账"} {
		if strings.Contains(input, kw) {
			return domain.KindIncome
		}
	}
	return domain.KindExpense
}

func parseModelDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateFormats {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func stringField(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func numberField(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, &ContentError{Reason: "missing required field \"" + key + "\""}
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		// Some models quote numbers; tolerate "9.70" and "-9.70".
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, &ContentError{Reason: "field \"" + key + "\" is not numeric: " + val}
		}
		return f, nil
	default:
		return 0, &ContentError{Reason: "field \"" + key + "\" has unexpected type"}
	}
}

func truncate(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}
