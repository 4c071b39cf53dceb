package model_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// TestCell tests cell construction and serialization.
//
// WHY: Clients parse the tables with a split-oriented reader. A NaN leaking into
// the body is invalid JSON and breaks the whole response.
func TestCell(t *testing.T) {
	day := time.Date(2020, 3, 16, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cell model.Cell
		json string
		text string
	}{
		{"number", model.Num(1.5), "1.5", "1.5"},
		{"integer index", model.Num(0), "0", "0"},
		{"NaN is null", model.Num(math.NaN()), "null", ""},
		{"infinity is null", model.Num(math.Inf(-1)), "null", ""},
		{"string", model.Str("Sharpe"), `"Sharpe"`, "Sharpe"},
		{"date", model.Date(day), `"2020-03-16T00:00:00.000Z"`, "2020-03-16T00:00:00.000Z"},
		{"bool", model.Bool(true), "true", "true"},
		{"null", model.Null, "null", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.cell)
			if err != nil {
				t.Fatalf("Marshal() returned unexpected error: %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("Expected JSON %s, got %s", tt.json, data)
			}
			if tt.cell.String() != tt.text {
				t.Errorf("Expected text %q, got %q", tt.text, tt.cell.String())
			}

			var back model.Cell
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() returned unexpected error: %v", err)
			}
			if back.String() != tt.text {
				t.Errorf("Expected %q after decoding, got %q", tt.text, back.String())
			}
		})
	}
}

func TestTable(t *testing.T) {
	table := model.NewTable([]string{"A", "B"})
	table.AppendRow(model.Str("Sharpe"), []model.Cell{model.Num(1), model.Num(2)})
	table.AppendRow(model.Str("CAGR"), []model.Cell{model.Num(0.1), model.Null})

	t.Run("looks up cells", func(t *testing.T) {
		c, ok := table.Cell("CAGR", "A")
		if v, isNum := c.Float(); !ok || !isNum || v != 0.1 {
			t.Errorf("Expected 0.1, got %v", c)
		}
		if _, ok := table.Cell("CAGR", "C"); ok {
			t.Error("Expected unknown column to miss")
		}
	})

	t.Run("filters rows in the given order", func(t *testing.T) {
		got := table.FilterRows([]string{"CAGR", "Missing", "Sharpe"})
		if len(got.Index) != 2 || got.Index[0].String() != "CAGR" || got.Index[1].String() != "Sharpe" {
			t.Errorf("Unexpected rows %v", got.Index)
		}
	})

	t.Run("numeric index rows", func(t *testing.T) {
		dd := model.NewTable([]string{"drawdown"})
		dd.AppendRow(model.Num(0), []model.Cell{model.Num(-0.3)})
		dd.AppendRow(model.Num(1), []model.Cell{model.Num(-0.1)})
		c, ok := dd.Cell("1", "drawdown")
		if v, _ := c.Float(); !ok || v != -0.1 {
			t.Errorf("Expected -0.1, got %v", c)
		}
	})

	t.Run("serializes split oriented", func(t *testing.T) {
		data, err := json.Marshal(table)
		if err != nil {
			t.Fatalf("Marshal() returned unexpected error: %v", err)
		}
		want := `{"columns":["A","B"],"index":["Sharpe","CAGR"],"data":[[1,2],[0.1,null]]}`
		if string(data) != want {
			t.Errorf("Expected %s, got %s", want, data)
		}
	})
}

func TestResultBundle_MarshalJSON(t *testing.T) {
	var bundle model.ResultBundle
	bundle.Add("zeta", model.NewTable([]string{"A"}))
	bundle.Add("alpha", model.NewTable([]string{"B"}))

	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("Marshal() returned unexpected error: %v", err)
	}
	want := `{"zeta":{"columns":["A"],"index":[],"data":[]},"alpha":{"columns":["B"],"index":[],"data":[]}}`
	if string(data) != want {
		t.Errorf("Expected insertion order %s, got %s", want, data)
	}

	var empty model.ResultBundle
	if data, _ := json.Marshal(empty); string(data) != "{}" {
		t.Errorf("Expected {}, got %s", data)
	}
}
