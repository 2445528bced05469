package grading

import "encoding/json"

// Answer-key fields that must never reach a student before completion.
var keyFields = []string{
	"correct", "correct_answer", "correct_sentence", "correct_order", "correct_pairs",
}

// StripKeyFields returns a copy of question data with every answer-key
// field removed. For dialogue_dropdown the per-entry key is removed; for
// composite questions each blank item's key is replaced by a blank_count
// hint so the client can render the right number of inputs.
func StripKeyFields(questionType string, data json.RawMessage) json.RawMessage {
	var d map[string]interface{}
	if err := json.Unmarshal(data, &d); err != nil || d == nil {
		return json.RawMessage("{}")
	}

	for _, f := range keyFields {
		delete(d, f)
	}

	switch questionType {
	case TypeDialogueDropdown:
		if entries, ok := d["dialogue"].([]interface{}); ok {
			for _, e := range entries {
				if entry, ok := e.(map[string]interface{}); ok {
					delete(entry, "correct")
				}
			}
		}
	case TypeComposite:
		if items, ok := d["items"].([]interface{}); ok {
			for _, it := range items {
				item, ok := it.(map[string]interface{})
				if !ok {
					continue
				}
				if item["type"] == "blank" {
					item["blank_count"] = len(blankKeys(item["correct"]))
				}
				delete(item, "correct")
			}
		}
	}

	out, err := json.Marshal(d)
	if err != nil {
		return json.RawMessage("{}")
	}
	return out
}
