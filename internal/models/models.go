package models

// UploadedFile is one source document handed to the pipeline.
type UploadedFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Bytes    []byte `json:"-"`
}

// GenerationRequest is the validated form of a quiz request.
type GenerationRequest struct {
	Subject        string `json:"subject"`
	Format         string `json:"format"`
	RequestedCount int    `json:"requested_count"`
	SourceText     string `json:"-"`
}

// Batch is one generative call: a contiguous slice of the source text and
// the number of questions requested for it.
type Batch struct {
	SequenceIndex     int    `json:"sequence_index"`
	TextSlice         string `json:"-"`
	CountForThisBatch int    `json:"count"`
}

// QuestionRecord is one row of the quiz table. A is the first distractor,
// B and C the others.
type QuestionRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	A        string `json:"a"`
	B        string `json:"b"`
	C        string `json:"c"`
}

// FileFailure reports a file that could not be loaded or extracted.
type FileFailure struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BatchFailure reports a batch whose generative call failed.
type BatchFailure struct {
	SequenceIndex int    `json:"batch"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// ParseDiagnostic records a reply or a record inside a reply that the
// parser dropped. Index is -1 when the whole reply was skipped.
type ParseDiagnostic struct {
	Reply  int    `json:"reply"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// PipelineResult is the aggregated output of one request. Records keep
// batch order, then reply order.
type PipelineResult struct {
	Records       []QuestionRecord  `json:"tableData"`
	Format        string            `json:"format"`
	FileFailures  []FileFailure     `json:"file_failures,omitempty"`
	BatchFailures []BatchFailure    `json:"batch_failures,omitempty"`
	Dropped       []ParseDiagnostic `json:"dropped,omitempty"`
	Partial       bool              `json:"partial,omitempty"`
}

// HasFailures reports whether any file or batch failed.
func (r *PipelineResult) HasFailures() bool {
	return len(r.FileFailures) > 0 || len(r.BatchFailures) > 0
}

// TopicQuestion is a question generated from a topic rather than source
// text. Options lists the answer followed by the distractors.
type TopicQuestion struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}
