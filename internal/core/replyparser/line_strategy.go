package replyparser

import (
	"regexp"
	"strings"

	"github.com/markdave123-py/quizsmith/internal/models"
)

type lineState int

const (
	awaitingQuestion lineState = iota
	inQuestion
)

var (
	questionLine = regexp.MustCompile(`(?i)^question(?:\s*\d+)?(?:\s*[:.)\-]|\s|$)\s*(.*)$`)
	optionLine   = regexp.MustCompile(`(?i)^([a-d])\s*[).:]\s*(.*)$`)
	answerLine   = regexp.MustCompile(`(?i)^(?:correct\s+)?answer\s*[:：]\s*(.*)$`)
	answerLetter = regexp.MustCompile(`(?i)^\(?([a-d])(?:[).:]|\s|$)`)
)

var optionLetters = []string{"a", "b", "c", "d"}

// TaggedLineStrategy reads the line-tagged dialect:
//
//	Question 1: ...
//	a) correct answer
//	b) distractor
//	c) distractor
//	d) distractor
//	Answer: b        (optional; defaults to a)
type TaggedLineStrategy struct{}

func NewTaggedLineStrategy() TaggedLineStrategy { return TaggedLineStrategy{} }

func (TaggedLineStrategy) Name() string { return "tagged-line" }

type pendingQuestion struct {
	stem    []string
	options map[string]string
	answer  string
}

func (TaggedLineStrategy) Parse(reply string) (Outcome, error) {
	var (
		out     Outcome
		state   = awaitingQuestion
		current *pendingQuestion
		index   int
	)

	flush := func() {
		if current == nil {
			return
		}
		rec := current.record()
		if missing := missingFields(rec); len(missing) > 0 {
			out.Dropped = append(out.Dropped, Drop{Index: index, Reason: missingReason(missing)})
		} else {
			out.Records = append(out.Records, rec)
		}
		index++
		current = nil
	}

	for _, raw := range strings.Split(reply, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if m := questionLine.FindStringSubmatch(line); m != nil {
			flush()
			current = &pendingQuestion{options: make(map[string]string)}
			if stem := strings.TrimSpace(m[1]); stem != "" {
				current.stem = append(current.stem, stem)
			}
			state = inQuestion
			continue
		}

		switch state {
		case awaitingQuestion:
			continue
		case inQuestion:
			if m := optionLine.FindStringSubmatch(line); m != nil {
				current.options[strings.ToLower(m[1])] = strings.TrimSpace(m[2])
				continue
			}
			if m := answerLine.FindStringSubmatch(line); m != nil {
				current.answer = strings.TrimSpace(m[1])
				continue
			}
			if len(current.options) == 0 {
				current.stem = append(current.stem, line)
			}
		}
	}
	flush()

	if len(out.Records) == 0 && len(out.Dropped) == 0 {
		return Outcome{}, ErrNotApplicable
	}
	return out, nil
}

// record maps the options onto the table columns: the answer option becomes
// answer and the remaining options fill a, b, c in letter order.
func (q *pendingQuestion) record() models.QuestionRecord {
	correct := q.correctLetter()

	rec := models.QuestionRecord{Question: strings.Join(q.stem, " ")}
	var distractors []string
	if correct == "" {
		rec.Answer = q.answer
	} else {
		rec.Answer = q.options[correct]
	}
	for _, l := range optionLetters {
		if l == correct {
			continue
		}
		if v, ok := q.options[l]; ok && !strings.EqualFold(v, rec.Answer) {
			distractors = append(distractors, v)
		}
	}
	for i, dst := range []*string{&rec.A, &rec.B, &rec.C} {
		if i < len(distractors) {
			*dst = distractors[i]
		}
	}
	return rec
}

// correctLetter resolves the Answer line to an option letter. Without an
// Answer line the first option is correct. An empty result means the
// answer text matched no option.
func (q *pendingQuestion) correctLetter() string {
	if q.answer == "" {
		return "a"
	}
	for _, l := range optionLetters {
		if v, ok := q.options[l]; ok && strings.EqualFold(v, q.answer) {
			return l
		}
	}
	if m := answerLetter.FindStringSubmatch(q.answer); m != nil {
		l := strings.ToLower(m[1])
		if _, ok := q.options[l]; ok {
			return l
		}
	}
	return ""
}

func cleanLine(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.TrimLeft(strings.TrimSpace(s), "#>-* \t")
	return strings.TrimSpace(s)
}
