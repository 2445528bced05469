package grading

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStripKeyFieldsTopLevel(t *testing.T) {
	data := json.RawMessage(`{"options":["a","b"],"correct":"b","prompt":"pick one"}`)
	out := StripKeyFields(TypeMCQSingle, data)

	var d map[string]interface{}
	if err := json.Unmarshal(out, &d); err != nil {
		t.Fatalf("stripped data is not valid JSON: %v", err)
	}
	if _, ok := d["correct"]; ok {
		t.Error("correct must be stripped")
	}
	if d["prompt"] != "pick one" {
		t.Error("non-key fields must survive")
	}
}

func TestStripKeyFieldsDialogue(t *testing.T) {
	data := json.RawMessage(`{"dialogue":[{"text":"hi"},{"options":["a","b"],"correct":1}]}`)
	out := StripKeyFields(TypeDialogueDropdown, data)
	if strings.Contains(string(out), "correct") {
		t.Errorf("per-entry keys leaked: %s", out)
	}
}

func TestStripKeyFieldsComposite(t *testing.T) {
	data := json.RawMessage(`{"items":[
		{"type":"option","options":["x","y"],"correct":"x"},
		{"type":"blank","correct":["a","b"]}
	]}`)
	out := StripKeyFields(TypeComposite, data)
	if strings.Contains(string(out), `"correct"`) {
		t.Errorf("composite keys leaked: %s", out)
	}

	var d struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(out, &d); err != nil {
		t.Fatal(err)
	}
	if bc, ok := d.Items[1]["blank_count"].(float64); !ok || int(bc) != 2 {
		t.Errorf("blank_count = %v, want 2", d.Items[1]["blank_count"])
	}
}

func TestStripKeyFieldsMalformed(t *testing.T) {
	out := StripKeyFields(TypeMCQSingle, json.RawMessage(`{broken`))
	if string(out) != "{}" {
		t.Errorf("malformed data must strip to empty object, got %s", out)
	}
}
