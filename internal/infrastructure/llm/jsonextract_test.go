package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSONObjectFenced(t *testing.T) {
	t.Parallel()

	text := "Here you go:\n```json\n{\"title\": \"Hi\", \"tags\": [\"a\", \"b\"]}\n```\nEnjoy!"
	obj, err := ExtractJSONObject(text)
	if err != nil {
		t.Fatalf("ExtractJSONObject: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		t.Fatalf("extracted object is not valid JSON: %v", err)
	}
	if parsed["title"] != "Hi" {
		t.Fatalf("unexpected title: %v", parsed["title"])
	}
}

func TestExtractJSONObjectFencedWithoutLanguageTag(t *testing.T) {
	t.Parallel()

	obj, err := ExtractJSONObject("```\n{\"a\": 1}\n```")
	if err != nil {
		t.Fatalf("ExtractJSONObject: %v", err)
	}
	if obj != `{"a": 1}` {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestExtractJSONObjectBareBraces(t *testing.T) {
	t.Parallel()

	text := `Sure! The answer is {"a": {"b": 2}, "c": "with } brace"} and nothing else.`
	obj, err := ExtractJSONObject(text)
	if err != nil {
		t.Fatalf("ExtractJSONObject: %v", err)
	}
	if obj != `{"a": {"b": 2}, "c": "with } brace"}` {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestExtractJSONObjectHonorsEscapes(t *testing.T) {
	t.Parallel()

	text := `{"quote": "she said \"}\" loudly"}`
	obj, err := ExtractJSONObject(text)
	if err != nil {
		t.Fatalf("ExtractJSONObject: %v", err)
	}
	if obj != text {
		t.Fatalf("unexpected object: %s", obj)
	}
}

func TestExtractJSONObjectNone(t *testing.T) {
	t.Parallel()

	if _, err := ExtractJSONObject("no json here, sorry"); !errors.Is(err, ErrNoJSONObject) {
		t.Fatalf("expected ErrNoJSONObject, got %v", err)
	}

	// An unclosed object is also a failure.
	if _, err := ExtractJSONObject(`{"a": 1`); !errors.Is(err, ErrNoJSONObject) {
		t.Fatalf("expected ErrNoJSONObject for unclosed object, got %v", err)
	}
}
