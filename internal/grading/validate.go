package grading

import (
	"encoding/json"
	"fmt"
)

// ValidateData checks a question's payload shape at the authoring boundary
// so unvalidated data never reaches the engine. Structural types carry no
// answer key and accept any object.
func ValidateData(questionType string, data json.RawMessage) error {
	if !IsKnownType(questionType) {
		return fmt.Errorf("unknown question type %q", questionType)
	}
	if IsStructural(questionType) {
		return nil
	}

	var d map[string]interface{}
	if err := json.Unmarshal(data, &d); err != nil || d == nil {
		return fmt.Errorf("question data must be a JSON object")
	}

	switch questionType {
	case TypeMCQSingle:
		if len(stringSlice(d["options"])) == 0 {
			return fmt.Errorf("mcq_single requires non-empty options")
		}
		if _, ok := resolveOption(stringSlice(d["options"]), d["correct"]); !ok {
			return fmt.Errorf("mcq_single requires a correct option text or index")
		}
	case TypeMCQMulti:
		if len(stringSlice(d["options"])) == 0 {
			return fmt.Errorf("mcq_multi requires non-empty options")
		}
		if len(stringSlice(d["correct"])) == 0 {
			return fmt.Errorf("mcq_multi requires a non-empty correct list")
		}
	case TypeTrueFalse:
		if _, ok := d["correct"].(bool); !ok {
			return fmt.Errorf("true_false requires a boolean correct field")
		}
	case TypeFillTyping:
		if textKey(d, "correct", "correct_answer") == "" {
			return fmt.Errorf("fill_typing requires correct or correct_answer text")
		}
	case TypeFillOptions:
		if textKey(d, "correct") == "" {
			return fmt.Errorf("fill_options requires correct text")
		}
	case TypeSentenceOrdering:
		if len(stringSlice(d["correct_order"])) == 0 {
			return fmt.Errorf("sentence_ordering requires a non-empty correct_order")
		}
	case TypeSentenceCorrection:
		if textKey(d, "correct_sentence", "correct") == "" {
			return fmt.Errorf("sentence_correction requires correct_sentence or correct text")
		}
	case TypeMatching:
		if len(pairSlice(d["correct_pairs"])) == 0 {
			return fmt.Errorf("matching requires non-empty correct_pairs")
		}
	case TypeDialogueDropdown:
		entries, ok := d["dialogue"].([]interface{})
		if !ok || len(entries) == 0 {
			return fmt.Errorf("dialogue_dropdown requires a non-empty dialogue")
		}
		for i, e := range entries {
			entry, ok := e.(map[string]interface{})
			if !ok {
				return fmt.Errorf("dialogue entry %d must be an object", i)
			}
			if _, hasOptions := entry["options"]; !hasOptions {
				continue
			}
			options := stringSlice(entry["options"])
			idx, ok := entry["correct"].(float64)
			if len(options) == 0 || !ok || int(idx) < 0 || int(idx) >= len(options) {
				return fmt.Errorf("dialogue entry %d requires options and a correct index in range", i)
			}
		}
	case TypeComposite:
		items, ok := d["items"].([]interface{})
		if !ok || len(items) == 0 {
			return fmt.Errorf("composite_question requires non-empty items")
		}
		for i, it := range items {
			item, ok := it.(map[string]interface{})
			if !ok {
				return fmt.Errorf("composite item %d must be an object", i)
			}
			switch item["type"] {
			case "option", "dropdown":
				options := stringSlice(item["options"])
				if len(options) == 0 {
					return fmt.Errorf("composite item %d requires non-empty options", i)
				}
				if _, ok := resolveOption(options, item["correct"]); !ok {
					return fmt.Errorf("composite item %d requires a correct option", i)
				}
			case "blank":
				if len(blankKeys(item["correct"])) == 0 {
					return fmt.Errorf("composite item %d requires a correct blank key", i)
				}
			default:
				return fmt.Errorf("composite item %d has unknown type %v", i, item["type"])
			}
		}
	}

	return nil
}
