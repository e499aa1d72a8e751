package batch

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseTaskIDs_SingleNumber(t *testing.T) {
	ids, err := ParseTaskIDs(float64(42), "taskIds")
	if err != nil {
		t.Fatalf("ParseTaskIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 42 {
		t.Errorf("ids = %v, want [42]", ids)
	}
}

func TestParseTaskIDs_StringForms(t *testing.T) {
	ids, err := ParseTaskIDs("42", "taskIds")
	if err != nil {
		t.Fatalf("ParseTaskIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 42 {
		t.Errorf("ids = %v, want [42]", ids)
	}

	ids, err = ParseTaskIDs([]interface{}{"7", float64(8), " 9 "}, "taskIds")
	if err != nil {
		t.Fatalf("ParseTaskIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 8 || ids[2] != 9 {
		t.Errorf("ids = %v, want [7 8 9]", ids)
	}
}

func TestParseTaskIDs_Array(t *testing.T) {
	ids, err := ParseTaskIDs([]interface{}{float64(1), float64(2), float64(3)}, "taskIds")
	if err != nil {
		t.Fatalf("ParseTaskIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("ids = %v, want [1 2 3]", ids)
	}
}

func TestParseTaskIDs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		param interface{}
	}{
		{"nil", nil},
		{"non-numeric string", "abc"},
		{"empty string", ""},
		{"empty array", []interface{}{}},
		{"array with non-numeric string", []interface{}{float64(1), "two"}},
		{"zero id", float64(0)},
		{"negative id", float64(-5)},
		{"array with zero", []interface{}{float64(1), float64(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTaskIDs(tt.param, "taskIds"); err == nil {
				t.Errorf("expected error for %v", tt.param)
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	ids := []int64{1, 2, 3}

	results := ProcessBatch(ids, func(id int64) (string, error) {
		if id == 2 {
			return "", errors.New("task not found")
		}
		return "done", nil
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status != "success" || results[2].Status != "success" {
		t.Error("expected tasks 1 and 3 to succeed")
	}
	if results[1].Status != "error" || results[1].Error != "task not found" {
		t.Errorf("result[1] = %+v, want error 'task not found'", results[1])
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult(1, "done"),
		NewErrorResult(2, errors.New("boom")),
		NewSuccessResult(3, "done"),
	}

	var br BatchResult
	if err := json.Unmarshal([]byte(FormatResults(results)), &br); err != nil {
		t.Fatalf("failed to unmarshal batch result: %v", err)
	}

	if br.Total != 3 {
		t.Errorf("Total = %d, want 3", br.Total)
	}
	if br.Successful != 2 {
		t.Errorf("Successful = %d, want 2", br.Successful)
	}
	if br.Failed != 1 {
		t.Errorf("Failed = %d, want 1", br.Failed)
	}
	if br.Results[1].Error != "boom" {
		t.Errorf("Results[1].Error = %q, want boom", br.Results[1].Error)
	}
}
