package model

import (
	"math"
	"testing"

	"github.com/matzehuels/lineup/pkg/errors"
)

func TestMeanWithMissingChild(t *testing.T) {
	c := mean(t, num(t, "a"), num(t, "b"), num(t, "c"))
	row := Row{"a": 10.0, "c": 4.0}

	got := c.Value(row, 0).(float64)
	if math.Abs(got-14.0/3.0) > 1e-9 {
		t.Errorf("Value = %v, want %v", got, 14.0/3.0)
	}
	if label := c.Label(row, 0); label != "4.67" {
		t.Errorf("Label = %q, want %q", label, "4.67")
	}
}

func TestMissingSubstitute(t *testing.T) {
	c := mean(t, num(t, "a"), num(t, "b"))
	c.SetMissingValue(2)
	// (10 + 2) / 2
	if got := c.Value(Row{"a": 10.0}, 0); got != 6.0 {
		t.Errorf("Value = %v, want 6", got)
	}
	c.SetMissingValue(math.NaN())
	if c.MissingValue() != 0 {
		t.Errorf("NaN substitute should reset to 0, got %v", c.MissingValue())
	}
}

func TestNoVisibleChildrenYieldsSubstitute(t *testing.T) {
	a := num(t, "a")
	c := mean(t, a)
	c.SetMissingValue(7)
	a.SetVisible(false)

	row := Row{"a": math.NaN()}
	if got := c.Value(row, 0); got != 7.0 {
		t.Errorf("Value = %v, want substitute 7", got)
	}
	if got := c.Number(row, 0); !math.IsNaN(got) {
		t.Errorf("Number = %v, want NaN before substitution", got)
	}
}

func TestReductions(t *testing.T) {
	row := Row{"a": 1.0, "b": 4.0, "c": 10.0}
	tests := []struct {
		kind    Kind
		weights []float64
		want    float64
	}{
		{KindStack, []float64{1, 1, 1}, 15},
		{KindStack, []float64{2, 0.5, 0}, 4},
		{KindMean, []float64{1, 1, 1}, 5},
		{KindMean, []float64{3, 1, 0}, 7.0 / 4.0},
		{KindMin, []float64{5, 5, 5}, 1},
		{KindMax, []float64{0, 0, 0}, 10},
		{KindMedian, []float64{1, 1, 1}, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, err := NewCompositeNumberColumn(&Descriptor{Type: tt.kind})
			if err != nil {
				t.Fatal(err)
			}
			for _, name := range []string{"a", "b", "c"} {
				if err := c.Push(num(t, name)); err != nil {
					t.Fatal(err)
				}
			}
			c.SetWeights(tt.weights)
			if got := c.Value(row, 0).(float64); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeights(t *testing.T) {
	a, b := num(t, "a"), num(t, "b")
	c, _ := NewCompositeNumberColumn(&Descriptor{Type: KindStack})
	_ = c.Push(a)
	_ = c.Push(b)

	if err := c.SetWeight(b, -3); err != nil {
		t.Fatal(err)
	}
	if got := c.Weights(); got[0] != 1 || got[1] != 0 {
		t.Errorf("Weights = %v, want [1 0]", got)
	}
	if err := c.SetWeight(num(t, "x"), 1); !errors.Is(err, errors.ErrCodeNotAChild) {
		t.Errorf("SetWeight(non-child) = %v, want NOT_A_CHILD", err)
	}

	var dirty int
	c.On(EventDirtyValues, func(Event) { dirty++ })
	c.SetWeights([]float64{0.25, 0.75})
	c.SetWeights([]float64{0.25, 0.75})
	if dirty != 1 {
		t.Errorf("SetWeights should emit once per change, got %d", dirty)
	}

	_ = c.Remove(a)
	_ = c.Push(a)
	if c.Weight(a) != 1 {
		t.Errorf("re-added child should start at weight 1, got %v", c.Weight(a))
	}
}

func TestCompositeCompareIsTotal(t *testing.T) {
	c := mean(t, num(t, "a"))
	rows := []Row{{"a": 2.0}, {}, {"a": math.NaN()}, {"a": -1.0}}
	for i, a := range rows {
		for j, b := range rows {
			if got, rev := c.Compare(a, b, i, j), c.Compare(b, a, j, i); got != -rev {
				t.Errorf("Compare(%d,%d)=%d but reverse is %d", i, j, got, rev)
			}
		}
	}
	// Missing values compare as the substitute 0.
	if got := c.Compare(rows[1], rows[2], 1, 2); got != 0 {
		t.Errorf("two missing values should tie, got %d", got)
	}
	if got := c.Compare(rows[1], rows[3], 1, 3); got != 1 {
		t.Errorf("substitute 0 should sort above -1, got %d", got)
	}
}

func TestScriptColumn(t *testing.T) {
	c, err := NewScriptColumn(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Script() != DefaultScript {
		t.Errorf("Script = %q, want %q", c.Script(), DefaultScript)
	}
	_ = c.Push(num(t, "a"))
	_ = c.Push(num(t, "b"))

	row := Row{"a": 3.0, "b": 5.0}
	if got := c.Value(row, 0); got != 5.0 {
		t.Errorf("max(values) = %v, want 5", got)
	}

	if err := c.SetScript("values[0] * weights[0] + n"); err != nil {
		t.Fatal(err)
	}
	if got := c.Value(row, 0); got != 5.0 {
		t.Errorf("values[0]*weights[0]+n = %v, want 5", got)
	}

	err = c.SetScript("values[")
	if !errors.Is(err, errors.ErrCodeInvalidScript) {
		t.Fatalf("SetScript(invalid) = %v, want INVALID_SCRIPT", err)
	}
	if c.Script() != "values[0] * weights[0] + n" {
		t.Errorf("invalid script should keep the previous one, got %q", c.Script())
	}

	// Runtime errors resolve to the substitute.
	_ = c.SetScript("values[5]")
	if got := c.Value(row, 0); got != 0.0 {
		t.Errorf("failing script = %v, want substitute 0", got)
	}
}

func TestScriptSeesRawMissingValues(t *testing.T) {
	c, err := NewScriptColumn(&Descriptor{Type: KindScript, Script: "raws[0] != raws[0] ? -1 : values[0]"})
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Push(num(t, "a"))
	if got := c.Value(Row{}, 0); got != -1.0 {
		t.Errorf("Value = %v, want -1 for a missing raw value", got)
	}
	if got := c.Value(Row{"a": 2.0}, 0); got != 2.0 {
		t.Errorf("Value = %v, want 2", got)
	}
}

func TestNewScriptColumnInvalid(t *testing.T) {
	_, err := NewScriptColumn(&Descriptor{Type: KindScript, Script: "max("})
	if !errors.Is(err, errors.ErrCodeInvalidScript) {
		t.Errorf("err = %v, want INVALID_SCRIPT", err)
	}
}
