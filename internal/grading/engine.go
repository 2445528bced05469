package grading

import (
	"encoding/json"
	"strconv"
)

// strategy grades one decoded answer against one decoded answer key.
type strategy func(data map[string]interface{}, answer interface{}) Result

var strategies = map[string]strategy{
	TypeMCQSingle:          gradeMCQSingle,
	TypeMCQMulti:           gradeMCQMulti,
	TypeTrueFalse:          gradeTrueFalse,
	TypeFillTyping:         gradeFillTyping,
	TypeFillOptions:        gradeFillOptions,
	TypeSentenceOrdering:   gradeSentenceOrdering,
	TypeSentenceCorrection: gradeSentenceCorrection,
	TypeMatching:           gradeMatching,
	TypeDialogueDropdown:   gradeDialogueDropdown,
	TypeComposite:          gradeComposite,
}

// Grade compares a submitted answer against the question's answer key.
// Unknown types and malformed questions or answers grade as incorrect;
// grading never fails, so one bad question cannot abort a submit pass.
func Grade(questionType string, data, userAnswer json.RawMessage) (res Result) {
	defer func() {
		if recover() != nil {
			res = Result{}
		}
	}()

	s, ok := strategies[questionType]
	if !ok {
		return Result{}
	}

	var d map[string]interface{}
	if err := json.Unmarshal(data, &d); err != nil || d == nil {
		return Result{}
	}

	var a interface{}
	if len(userAnswer) > 0 {
		if err := json.Unmarshal(userAnswer, &a); err != nil {
			return Result{}
		}
	}

	return s(d, a)
}

// resolveOption maps an index-or-text value to option text. A JSON number
// is treated as an index into options; a string is taken as the text itself.
func resolveOption(options []string, v interface{}) (string, bool) {
	switch x := v.(type) {
	case float64:
		i := int(x)
		if i >= 0 && i < len(options) {
			return options[i], true
		}
	case string:
		return x, true
	}
	return "", false
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

// textKey returns the first non-empty string among the named fields;
// legacy questions store free-text keys under varying names.
func textKey(d map[string]interface{}, fields ...string) string {
	for _, f := range fields {
		if s, ok := d[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func gradeMCQSingle(d map[string]interface{}, a interface{}) Result {
	options := stringSlice(d["options"])
	key, ok := resolveOption(options, d["correct"])
	if !ok || key == "" {
		return Result{}
	}
	got, ok := resolveOption(options, a)
	if !ok {
		return Result{}
	}
	if got == key {
		return Result{IsCorrect: true, ScoreRatio: 1}
	}
	return Result{}
}

func gradeMCQMulti(d map[string]interface{}, a interface{}) Result {
	options := stringSlice(d["options"])
	keyTexts := stringSlice(d["correct"])
	if len(keyTexts) == 0 {
		return Result{}
	}

	selected, ok := a.([]interface{})
	if !ok {
		return Result{}
	}
	resolved := make([]string, 0, len(selected))
	for _, v := range selected {
		text, ok := resolveOption(options, v)
		if !ok {
			return Result{}
		}
		resolved = append(resolved, text)
	}

	if len(resolved) != len(keyTexts) {
		return Result{}
	}
	for _, k := range keyTexts {
		found := false
		for _, r := range resolved {
			if r == k {
				found = true
				break
			}
		}
		if !found {
			return Result{}
		}
	}
	return Result{IsCorrect: true, ScoreRatio: 1}
}

func gradeTrueFalse(d map[string]interface{}, a interface{}) Result {
	key, ok := d["correct"].(bool)
	if !ok {
		return Result{}
	}
	got, ok := a.(bool)
	if !ok {
		return Result{}
	}
	if got == key {
		return Result{IsCorrect: true, ScoreRatio: 1}
	}
	return Result{}
}

func gradeFillTyping(d map[string]interface{}, a interface{}) Result {
	key := textKey(d, "correct", "correct_answer")
	got, ok := a.(string)
	if key == "" || !ok {
		return Result{}
	}
	if NormalizeText(got) == NormalizeText(key) {
		return Result{IsCorrect: true, ScoreRatio: 1}
	}
	return Result{}
}

func gradeFillOptions(d map[string]interface{}, a interface{}) Result {
	key := textKey(d, "correct")
	got, ok := a.(string)
	if key == "" || !ok {
		return Result{}
	}
	if got == key {
		return Result{IsCorrect: true, ScoreRatio: 1}
	}
	return Result{}
}

func gradeSentenceOrdering(d map[string]interface{}, a interface{}) Result {
	key := stringSlice(d["correct_order"])
	got := stringSlice(a)
	if len(key) == 0 || len(got) != len(key) {
		return Result{}
	}
	for i := range key {
		if got[i] != key[i] {
			return Result{}
		}
	}
	return Result{IsCorrect: true, ScoreRatio: 1}
}

func gradeSentenceCorrection(d map[string]interface{}, a interface{}) Result {
	key := textKey(d, "correct_sentence", "correct")
	got, ok := a.(string)
	if key == "" || !ok {
		return Result{}
	}
	if NormalizeText(got) == NormalizeText(key) {
		return Result{IsCorrect: true, ScoreRatio: 1}
	}
	return Result{}
}

func pairSlice(v interface{}) [][2]string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([][2]string, 0, len(raw))
	for _, e := range raw {
		p, ok := e.([]interface{})
		if !ok || len(p) < 2 {
			return nil
		}
		a, okA := p[0].(string)
		b, okB := p[1].(string)
		if !okA || !okB {
			return nil
		}
		out = append(out, [2]string{a, b})
	}
	return out
}

func gradeMatching(d map[string]interface{}, a interface{}) Result {
	key := pairSlice(d["correct_pairs"])
	got := pairSlice(a)
	if len(key) == 0 || len(got) != len(key) {
		return Result{}
	}
	// Pair order is free, pair sides are not.
	for _, kp := range key {
		found := false
		for _, gp := range got {
			if gp == kp {
				found = true
				break
			}
		}
		if !found {
			return Result{}
		}
	}
	return Result{IsCorrect: true, ScoreRatio: 1}
}

func gradeDialogueDropdown(d map[string]interface{}, a interface{}) Result {
	entries, ok := d["dialogue"].([]interface{})
	if !ok || len(entries) == 0 {
		return Result{}
	}
	ansMap, _ := a.(map[string]interface{})

	for i, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			return Result{}
		}
		// Entries without options are plain dialogue lines and pass.
		if _, hasOptions := entry["options"]; !hasOptions {
			continue
		}
		key, ok := entry["correct"].(float64)
		if !ok {
			return Result{}
		}
		got, ok := ansMap[strconv.Itoa(i)].(float64)
		if !ok || int(got) != int(key) {
			return Result{}
		}
	}
	return Result{IsCorrect: true, ScoreRatio: 1}
}

// blankKeys normalizes a blank item's key to its list of sub-blanks.
func blankKeys(v interface{}) []string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	case []interface{}:
		return stringSlice(x)
	}
	return nil
}

func compositeItemCorrect(item map[string]interface{}, val interface{}) bool {
	switch item["type"] {
	case "option", "dropdown":
		options := stringSlice(item["options"])
		key, ok := resolveOption(options, item["correct"])
		if !ok || key == "" {
			return false
		}
		got, ok := resolveOption(options, val)
		return ok && got == key
	case "blank":
		keys := blankKeys(item["correct"])
		var got []string
		switch v := val.(type) {
		case string:
			got = []string{v}
		case []interface{}:
			got = stringSlice(v)
		}
		if len(keys) == 0 || len(got) != len(keys) {
			return false
		}
		for i := range keys {
			if NormalizeText(got[i]) != NormalizeText(keys[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func gradeComposite(d map[string]interface{}, a interface{}) Result {
	items, ok := d["items"].([]interface{})
	if !ok || len(items) == 0 {
		return Result{}
	}
	ansMap, _ := a.(map[string]interface{})

	correct := 0
	for i, it := range items {
		item, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		var val interface{}
		if ansMap != nil {
			val = ansMap[strconv.Itoa(i)]
		}
		if compositeItemCorrect(item, val) {
			correct++
		}
	}

	ratio := float64(correct) / float64(len(items))
	return Result{IsCorrect: correct == len(items), ScoreRatio: ratio}
}
