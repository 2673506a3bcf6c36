package jsonrepair

import (
	"encoding/json"
	"testing"
)

func TestRepair_ValidInputUnchanged(t *testing.T) {
	tests := []string{
		`{}`,
		`[]`,
		`{"a": 1, "b": [2, 3]}`,
		`[{"date":"2025-03-01","description":"Salary","amount":500000}]`,
		`{"s": "braces in strings { [ are ignored"}`,
		`{"esc": "quote \" and backslash \\ stay put"}`,
	}

	for _, in := range tests {
		if got := Repair(in); got != in {
			t.Errorf("Repair(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		`{"a": 1`,
		`[{"a": "unterminated`,
		`{"a": {"b": [1, 2`,
	}
	for _, in := range inputs {
		once := Repair(in)
		twice := Repair(once)
		if once != twice {
			t.Errorf("Repair not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestRepair_Truncation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"open object", `{"a": 1`, `{"a": 1}`},
		{"open array", `[1, 2`, `[1, 2]`},
		{"nested", `{"a": [1, {"b": 2`, `{"a": [1, {"b": 2}]}`},
		{"mid string", `{"a": "hel`, `{"a": "hel"}`},
		{"dangling escape dropped", `{"a": "x\`, `{"a": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repair(tt.in); got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Truncating a well-formed document at any offset must yield output a
// standard JSON parser accepts.
func TestRepair_ArbitraryTruncationParses(t *testing.T) {
	full := `[{"date":"2025-03-01","description":"Salary \"bonus\"","amount":500000.50,` +
		`"direction":"income","category":"salary"},{"date":"2025-03-02",` +
		`"description":"POS Shoprite","amount":12500,"direction":"expense"}]`

	for cut := 1; cut <= len(full); cut++ {
		repaired := Repair(full[:cut])
		var v interface{}
		if err := json.Unmarshal([]byte(repaired), &v); err != nil {
			// A cut inside a bare literal (e.g. "tru" of true, or "5.") is
			// beyond structural repair; those fall to the lenient tier.
			var probe interface{}
			if smartErr := SmartUnmarshal(full[:cut], &probe); smartErr != nil {
				t.Errorf("offset %d: %q does not parse after repair: %v", cut, repaired, err)
			}
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `[1]`, `[1]`},
		{"plain fence", "```\n[1]\n```", `[1]`},
		{"json fence", "```json\n[1, 2]\n```", `[1, 2]`},
		{"unterminated fence", "```json\n[1", `[1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSmartUnmarshal(t *testing.T) {
	type tx struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
	}

	t.Run("clean json", func(t *testing.T) {
		var out []tx
		err := SmartUnmarshal(`[{"description":"a","amount":1}]`, &out)
		if err != nil || len(out) != 1 {
			t.Fatalf("err=%v out=%v", err, out)
		}
	})

	t.Run("fenced and truncated", func(t *testing.T) {
		var out []tx
		err := SmartUnmarshal("```json\n[{\"description\":\"a\",\"amount\":1},{\"description\":\"b\"", &out)
		if err != nil {
			t.Fatalf("SmartUnmarshal: %v", err)
		}
		if len(out) == 0 || out[0].Description != "a" {
			t.Fatalf("expected first element recovered, got %v", out)
		}
	})

	t.Run("single quotes via lenient tier", func(t *testing.T) {
		var out []tx
		err := SmartUnmarshal(`[{'description': 'a', 'amount': 1}]`, &out)
		if err != nil {
			t.Fatalf("SmartUnmarshal: %v", err)
		}
		if len(out) != 1 || out[0].Amount != 1 {
			t.Fatalf("got %v", out)
		}
	})
}
