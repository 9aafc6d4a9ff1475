// Package replyparser turns raw model replies into validated question records.
package replyparser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/models"
)

// ErrNotApplicable is returned by a strategy when the reply is not in its dialect.
var ErrNotApplicable = errors.New("reply not in this format")

// Drop describes one element a strategy found but could not turn into a record.
type Drop struct {
	Index  int
	Reason string
}

// Outcome is what a strategy extracted from one reply.
type Outcome struct {
	Records []models.QuestionRecord
	Dropped []Drop
}

// Strategy parses one reply dialect.
type Strategy interface {
	Name() string
	Parse(reply string) (Outcome, error)
}

// Result aggregates records and diagnostics across replies.
type Result struct {
	Records     []models.QuestionRecord
	Diagnostics []models.ParseDiagnostic
}

// Dropped counts the elements and replies that produced no record.
func (r Result) Dropped() int { return len(r.Diagnostics) }

// Parser tries its strategies in order; the first that accepts a reply wins.
type Parser struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New returns a parser with JSON-array parsing first and the tagged-line
// dialect as fallback. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Parser {
	return NewWithStrategies(logger, JSONArrayStrategy{}, NewTaggedLineStrategy())
}

// NewWithStrategies returns a parser using the given strategies in priority order.
func NewWithStrategies(logger *slog.Logger, strategies ...Strategy) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{strategies: strategies, logger: logger}
}

// Parse never fails. Records keep reply order, then order within the reply.
func (p *Parser) Parse(replies []string) Result {
	var res Result
	for i, reply := range replies {
		r := p.ParseReply(i, reply)
		res.Records = append(res.Records, r.Records...)
		res.Diagnostics = append(res.Diagnostics, r.Diagnostics...)
	}
	return res
}

// ParseReply parses a single reply; replyIndex is used in diagnostics.
func (p *Parser) ParseReply(replyIndex int, reply string) Result {
	var (
		res     Result
		reasons []string
	)
	for _, s := range p.strategies {
		out, err := s.Parse(reply)
		if err != nil {
			if !errors.Is(err, ErrNotApplicable) {
				reasons = append(reasons, s.Name()+": "+err.Error())
			}
			continue
		}
		if len(out.Records) == 0 && len(out.Dropped) == 0 {
			continue
		}
		res.Records = out.Records
		for _, d := range out.Dropped {
			diag := models.ParseDiagnostic{Reply: replyIndex, Index: d.Index, Reason: d.Reason}
			p.logger.Warn("dropped question record",
				slog.Int("reply", replyIndex),
				slog.Int("index", d.Index),
				slog.String("format", s.Name()),
				slog.String("reason", d.Reason))
			res.Diagnostics = append(res.Diagnostics, diag)
		}
		return res
	}

	reason := "no question records found"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	p.logger.Warn("skipped unparsable reply",
		slog.Int("reply", replyIndex),
		slog.Int("length", len(reply)),
		slog.String("reason", reason))
	res.Diagnostics = append(res.Diagnostics, models.ParseDiagnostic{Reply: replyIndex, Index: -1, Reason: reason})
	return res
}

// missingFields lists the required fields that are empty, in column order.
func missingFields(r models.QuestionRecord) []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"question", r.Question},
		{"answer", r.Answer},
		{"a", r.A},
		{"b", r.B},
		{"c", r.C},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func missingReason(fields []string) string {
	return "missing " + strings.Join(fields, ", ")
}
