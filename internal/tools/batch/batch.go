package batch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result represents the result of a single operation in a batch
type Result struct {
	ID     int64  `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseTaskIDs parses a parameter that can be either a single task ID or an
// array of task IDs. JSON numbers arrive as float64; string forms like "42"
// are accepted since the tool schema declares the argument as a string.
func ParseTaskIDs(param interface{}, paramName string) ([]int64, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []int64

	switch v := param.(type) {
	case float64:
		result = []int64{int64(v)}
	case int64:
		result = []int64{v}
	case int:
		result = []int64{int64(v)}
	case string:
		id, err := parseTaskIDString(v, paramName)
		if err != nil {
			return nil, err
		}
		result = []int64{id}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			switch n := item.(type) {
			case float64:
				result = append(result, int64(n))
			case int64:
				result = append(result, n)
			case int:
				result = append(result, int64(n))
			case string:
				id, err := parseTaskIDString(n, fmt.Sprintf("%s[%d]", paramName, i))
				if err != nil {
					return nil, err
				}
				result = append(result, id)
			default:
				return nil, fmt.Errorf("%s[%d] must be a number", paramName, i)
			}
		}
	default:
		return nil, fmt.Errorf("%s must be a number or array of numbers", paramName)
	}

	for i, id := range result {
		if id <= 0 {
			return nil, fmt.Errorf("%s[%d] must be a positive task ID", paramName, i)
		}
	}

	return result, nil
}

// parseTaskIDString parses a numeric string form of a task ID.
func parseTaskIDString(s, name string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("%s cannot be empty", name)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a numeric task ID, got %q", name, s)
	}
	return id, nil
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}

	for _, r := range results {
		if r.Status == "success" {
			br.Successful++
		} else {
			br.Failed++
		}
	}

	jsonBytes, _ := json.MarshalIndent(br, "", "  ")
	return string(jsonBytes)
}

// ProcessBatch executes a function on each task ID and collects results.
// fn should return (result string, error) for each ID. Failures do not stop
// the batch; each task gets its own result entry.
func ProcessBatch(ids []int64, fn func(id int64) (string, error)) []Result {
	results := make([]Result, 0, len(ids))

	for _, id := range ids {
		result := Result{ID: id}
		res, err := fn(id)
		if err != nil {
			result.Status = "error"
			result.Error = err.Error()
		} else {
			result.Status = "success"
			result.Result = res
		}
		results = append(results, result)
	}

	return results
}

// NewSuccessResult creates a success result
func NewSuccessResult(id int64, message string) Result {
	return Result{
		ID:     id,
		Status: "success",
		Result: message,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(id int64, err error) Result {
	return Result{
		ID:     id,
		Status: "error",
		Error:  err.Error(),
	}
}
