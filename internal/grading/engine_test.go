package grading

import (
	"encoding/json"
	"math"
	"testing"
)

func grade(t *testing.T, qType, data, answer string) Result {
	t.Helper()
	return Grade(qType, json.RawMessage(data), json.RawMessage(answer))
}

func TestGradeMCQSingle(t *testing.T) {
	data := `{"options":["Paris","Berlin","Rome"],"correct":"Berlin"}`

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"index answer", `1`, true},
		{"text answer", `"Berlin"`, true},
		{"wrong index", `0`, false},
		{"wrong text", `"Paris"`, false},
		{"out of range index", `7`, false},
		{"null answer", `null`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, TypeMCQSingle, data, tt.answer)
			if res.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.correct)
			}
		})
	}

	// Key stored as index instead of text.
	res := grade(t, TypeMCQSingle, `{"options":["a","b"],"correct":1}`, `"b"`)
	if !res.IsCorrect {
		t.Error("index key with text answer should be correct")
	}
}

func TestGradeMCQMulti(t *testing.T) {
	data := `{"options":["go","went","gone","goes"],"correct":["went","gone"]}`

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"both selected", `[1,2]`, true},
		{"reversed order", `[2,1]`, true},
		{"missing one", `[1]`, false},
		{"extra one", `[0,1,2]`, false},
		{"wrong pair", `[0,3]`, false},
		{"not an array", `"went"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, TypeMCQMulti, data, tt.answer)
			if res.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.correct)
			}
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	if !grade(t, TypeTrueFalse, `{"correct":true}`, `true`).IsCorrect {
		t.Error("matching bool should be correct")
	}
	if grade(t, TypeTrueFalse, `{"correct":true}`, `false`).IsCorrect {
		t.Error("mismatching bool should be incorrect")
	}
	if grade(t, TypeTrueFalse, `{"correct":true}`, `"true"`).IsCorrect {
		t.Error("string answer must not pass a strict bool comparison")
	}
}

func TestGradeFillTyping(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		answer  string
		correct bool
	}{
		{"case and whitespace", `{"correct":"café"}`, `" Café "`, true},
		{"punctuation stripped", `{"correct":"I am fine."}`, `"i am fine"`, true},
		{"legacy correct_answer field", `{"correct_answer":"hello"}`, `"Hello!"`, true},
		{"no accent folding", `{"correct":"café"}`, `"cafe"`, false},
		{"wrong word", `{"correct":"hello"}`, `"goodbye"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, TypeFillTyping, tt.data, tt.answer)
			if res.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", res.IsCorrect, tt.correct)
			}
		})
	}
}

func TestGradeFillOptions(t *testing.T) {
	if !grade(t, TypeFillOptions, `{"correct":"an"}`, `"an"`).IsCorrect {
		t.Error("exact match should be correct")
	}
	// fill_options is strict, unlike fill_typing.
	if grade(t, TypeFillOptions, `{"correct":"an"}`, `"An"`).IsCorrect {
		t.Error("case must matter for fill_options")
	}
}

func TestGradeSentenceOrdering(t *testing.T) {
	data := `{"correct_order":["I","like","tea"]}`
	if !grade(t, TypeSentenceOrdering, data, `["I","like","tea"]`).IsCorrect {
		t.Error("matching order should be correct")
	}
	if grade(t, TypeSentenceOrdering, data, `["tea","like","I"]`).IsCorrect {
		t.Error("wrong order should be incorrect")
	}
	if grade(t, TypeSentenceOrdering, data, `["I","like"]`).IsCorrect {
		t.Error("short answer should be incorrect")
	}
}

func TestGradeSentenceCorrection(t *testing.T) {
	data := `{"correct_sentence":"She goes to school."}`
	if !grade(t, TypeSentenceCorrection, data, `"she goes to school"`).IsCorrect {
		t.Error("normalized match should be correct")
	}
	if grade(t, TypeSentenceCorrection, data, `"she go to school"`).IsCorrect {
		t.Error("different words should be incorrect")
	}
}

func TestGradeMatching(t *testing.T) {
	data := `{"correct_pairs":[["dog","Hund"],["cat","Katze"]]}`
	if !grade(t, TypeMatching, data, `[["cat","Katze"],["dog","Hund"]]`).IsCorrect {
		t.Error("pair list order should not matter")
	}
	if grade(t, TypeMatching, data, `[["dog","Katze"],["cat","Hund"]]`).IsCorrect {
		t.Error("crossed pairs should be incorrect")
	}
	if grade(t, TypeMatching, data, `[["dog","Hund"]]`).IsCorrect {
		t.Error("missing pair should be incorrect")
	}
}

func TestGradeDialogueDropdown(t *testing.T) {
	data := `{"dialogue":[
		{"speaker":"A","text":"Hello!"},
		{"speaker":"B","options":["Hi","Bye"],"correct":0},
		{"speaker":"A","options":["Fine","Bad"],"correct":0}
	]}`

	if !grade(t, TypeDialogueDropdown, data, `{"1":0,"2":0}`).IsCorrect {
		t.Error("all blanks correct should pass")
	}
	if grade(t, TypeDialogueDropdown, data, `{"1":0,"2":1}`).IsCorrect {
		t.Error("one wrong blank should fail")
	}
	if grade(t, TypeDialogueDropdown, data, `{"1":0}`).IsCorrect {
		t.Error("missing blank should fail")
	}
}

func TestGradeComposite(t *testing.T) {
	data := `{"items":[
		{"type":"option","options":["is","are"],"correct":"is"},
		{"type":"blank","correct":"went"}
	]}`

	t.Run("half credit", func(t *testing.T) {
		res := grade(t, TypeComposite, data, `{"0":0,"1":"walked"}`)
		if res.IsCorrect {
			t.Error("partially correct composite must not be IsCorrect")
		}
		if math.Abs(res.ScoreRatio-0.5) > 1e-9 {
			t.Errorf("ScoreRatio = %v, want 0.5", res.ScoreRatio)
		}
	})

	t.Run("full credit", func(t *testing.T) {
		res := grade(t, TypeComposite, data, `{"0":"is","1":" Went "}`)
		if !res.IsCorrect || res.ScoreRatio != 1 {
			t.Errorf("got %+v, want fully correct", res)
		}
	})

	t.Run("multi blank positional", func(t *testing.T) {
		multi := `{"items":[{"type":"blank","correct":["a","b"]}]}`
		if !grade(t, TypeComposite, multi, `{"0":["A","B"]}`).IsCorrect {
			t.Error("positional sub-blanks should match after normalization")
		}
		if grade(t, TypeComposite, multi, `{"0":["b","a"]}`).IsCorrect {
			t.Error("swapped sub-blanks should fail")
		}
	})

	t.Run("no answer", func(t *testing.T) {
		res := grade(t, TypeComposite, data, `null`)
		if res.IsCorrect || res.ScoreRatio != 0 {
			t.Errorf("got %+v, want zero", res)
		}
	})
}

func TestGradeFailClosed(t *testing.T) {
	tests := []struct {
		name   string
		qType  string
		data   string
		answer string
	}{
		{"unknown type", "essay", `{"correct":"x"}`, `"x"`},
		{"structural type", TypePageBreak, `{}`, `"x"`},
		{"malformed data", TypeMCQSingle, `[1,2,3]`, `1`},
		{"invalid json data", TypeMCQSingle, `{`, `1`},
		{"invalid json answer", TypeMCQSingle, `{"options":["a"],"correct":"a"}`, `{`},
		{"missing key", TypeFillTyping, `{}`, `"x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, tt.qType, tt.data, tt.answer)
			if res.IsCorrect || res.ScoreRatio != 0 {
				t.Errorf("got %+v, want fail-closed zero result", res)
			}
		})
	}
}

func TestIsAnswerable(t *testing.T) {
	for _, typ := range AnswerableTypes() {
		if !IsAnswerable(typ) || IsStructural(typ) {
			t.Errorf("%s misclassified", typ)
		}
	}
	for _, typ := range []string{TypePageBreak, TypeReadingPassage, TypeAudioBlock, TypeContentBlock} {
		if IsAnswerable(typ) || !IsStructural(typ) {
			t.Errorf("%s misclassified", typ)
		}
	}
	if IsKnownType("essay") {
		t.Error("essay is not a known type")
	}
}
