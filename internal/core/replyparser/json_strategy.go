package replyparser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/models"
)

// JSONArrayStrategy decodes the text between the first '[' and the last ']'
// as a JSON array of objects keyed question, answer, a, b, c.
type JSONArrayStrategy struct{}

func (JSONArrayStrategy) Name() string { return "json" }

func (JSONArrayStrategy) Parse(reply string) (Outcome, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < 0 || end < start {
		return Outcome{}, ErrNotApplicable
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(reply[start:end+1]), &elems); err != nil {
		return Outcome{}, fmt.Errorf("decode array: %w", err)
	}

	var out Outcome
	for i, raw := range elems {
		rec, err := decodeRecord(raw)
		if err != nil {
			out.Dropped = append(out.Dropped, Drop{Index: i, Reason: err.Error()})
			continue
		}
		if missing := missingFields(rec); len(missing) > 0 {
			out.Dropped = append(out.Dropped, Drop{Index: i, Reason: missingReason(missing)})
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// decodeRecord accepts string, number and boolean values; numeric answers
// are common for math questions.
func decodeRecord(raw json.RawMessage) (models.QuestionRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return models.QuestionRecord{}, fmt.Errorf("element is not an object")
	}
	field := func(key string) string {
		switch v := obj[key].(type) {
		case string:
			return strings.TrimSpace(v)
		case json.Number:
			return v.String()
		case bool:
			return fmt.Sprint(v)
		default:
			return ""
		}
	}
	return models.QuestionRecord{
		Question: field("question"),
		Answer:   field("answer"),
		A:        field("a"),
		B:        field("b"),
		C:        field("c"),
	}, nil
}
