package grading

// Question type tags. Answerable types contribute to the score; structural
// types only organize presentation and always carry 0 points.
const (
	TypeMCQSingle          = "mcq_single"
	TypeMCQMulti           = "mcq_multi"
	TypeTrueFalse          = "true_false"
	TypeFillTyping         = "fill_typing"
	TypeFillOptions        = "fill_options"
	TypeSentenceOrdering   = "sentence_ordering"
	TypeSentenceCorrection = "sentence_correction"
	TypeMatching           = "matching"
	TypeDialogueDropdown   = "dialogue_dropdown"
	TypeComposite          = "composite_question"

	TypePageBreak      = "page_break"
	TypeReadingPassage = "reading_passage"
	TypeAudioBlock     = "audio_block"
	TypeContentBlock   = "content_block"
)

var answerableTypes = map[string]bool{
	TypeMCQSingle:          true,
	TypeMCQMulti:           true,
	TypeTrueFalse:          true,
	TypeFillTyping:         true,
	TypeFillOptions:        true,
	TypeSentenceOrdering:   true,
	TypeSentenceCorrection: true,
	TypeMatching:           true,
	TypeDialogueDropdown:   true,
	TypeComposite:          true,
}

var structuralTypes = map[string]bool{
	TypePageBreak:      true,
	TypeReadingPassage: true,
	TypeAudioBlock:     true,
	TypeContentBlock:   true,
}

func IsAnswerable(questionType string) bool {
	return answerableTypes[questionType]
}

func IsStructural(questionType string) bool {
	return structuralTypes[questionType]
}

func IsKnownType(questionType string) bool {
	return answerableTypes[questionType] || structuralTypes[questionType]
}

// AllowsAudio reports whether a question type may carry an audio
// attachment. Listening material goes on answerable questions or an
// audio_block; the other structural types are text-only.
func AllowsAudio(questionType string) bool {
	return answerableTypes[questionType] || questionType == TypeAudioBlock
}

// AnswerableTypes returns the answerable type tags, for SQL IN clauses.
func AnswerableTypes() []string {
	types := make([]string, 0, len(answerableTypes))
	for t := range answerableTypes {
		types = append(types, t)
	}
	return types
}

// Result is the verdict for one graded answer. ScoreRatio is 1 or 0 for
// every type except composite_question, where it is the fraction of
// correct sub-items.
type Result struct {
	IsCorrect  bool    `json:"isCorrect"`
	ScoreRatio float64 `json:"scoreRatio"`
}
