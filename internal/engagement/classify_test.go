package engagement

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestClassifyWeightedScore(t *testing.T) {
	probs := []float32{0.7, 0.1, 0.1, 0.05, 0.03, 0.02}

	res, err := Classify(probs)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if res.Class.Label != "Actively Looking" {
		t.Errorf("Expected predicted class %q, got %q", "Actively Looking", res.Class.Label)
	}
	if math.Abs(res.Confidence-0.7) > 1e-6 {
		t.Errorf("Expected confidence 0.7, got %g", res.Confidence)
	}

	// 0.7*1.0 + 0.1*0.6 + 0.1*0.5 + 0.05*0.3 + 0.03*0.2 + 0.02*0.1
	want := 0.833
	if math.Abs(res.Score-want) > 1e-6 {
		t.Errorf("Expected score %g, got %g", want, res.Score)
	}

	if len(res.Probabilities) != NumClasses {
		t.Errorf("Expected %d probability entries, got %d", NumClasses, len(res.Probabilities))
	}
	if math.Abs(res.Probabilities["Drowsy"]-0.02) > 1e-6 {
		t.Errorf("Expected Drowsy probability 0.02, got %g", res.Probabilities["Drowsy"])
	}
}

func TestClassifyTieBreaksToLowestOrdinal(t *testing.T) {
	// Confused and Distracted exactly tied; Confused has the lower ordinal.
	probs := []float32{0.1, 0.3, 0.1, 0.3, 0.1, 0.1}

	res, err := Classify(probs)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Class.Label != "Confused" {
		t.Errorf("Expected tie to resolve to %q, got %q", "Confused", res.Class.Label)
	}
}

func TestClassifyOneHotScoreEqualsWeight(t *testing.T) {
	// A fully certain prediction scores exactly the class weight, which also
	// pins the score range to [0.1, 1.0].
	for i, c := range Classes {
		probs := make([]float32, NumClasses)
		probs[i] = 1

		res, err := Classify(probs)
		if err != nil {
			t.Fatalf("Classify failed for ordinal %d: %v", i, err)
		}
		if res.Class.Label != c.Label {
			t.Errorf("Ordinal %d: expected class %q, got %q", i, c.Label, res.Class.Label)
		}
		if math.Abs(res.Score-c.Weight) > 1e-6 {
			t.Errorf("Ordinal %d: expected score %g, got %g", i, c.Weight, res.Score)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	probs := []float32{0.2, 0.2, 0.15, 0.15, 0.2, 0.1}

	first, err := Classify(probs)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	second, err := Classify(probs)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}

func TestClassifyRejectsBadVectors(t *testing.T) {
	cases := []struct {
		name  string
		probs []float32
	}{
		{"too short", []float32{0.5, 0.5}},
		{"too long", []float32{0.2, 0.2, 0.2, 0.2, 0.1, 0.05, 0.05}},
		{"nil", nil},
		{"sum too low", []float32{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}},
		{"sum too high", []float32{0.5, 0.5, 0.5, 0.1, 0.1, 0.1}},
		{"negative entry", []float32{1.2, -0.2, 0, 0, 0, 0}},
	}

	for _, tc := range cases {
		if _, err := Classify(tc.probs); !errors.Is(err, ErrBadVector) {
			t.Errorf("%s: expected ErrBadVector, got %v", tc.name, err)
		}
	}
}

func TestLabelsOrdinalOrder(t *testing.T) {
	labels := Labels()
	if len(labels) != NumClasses {
		t.Fatalf("Expected %d labels, got %d", NumClasses, len(labels))
	}
	for i, c := range Classes {
		if labels[i] != c.Label {
			t.Errorf("Index %d: expected %q, got %q", i, c.Label, labels[i])
		}
		if c.Ordinal != i {
			t.Errorf("Class %q: ordinal %d does not match position %d", c.Label, c.Ordinal, i)
		}
	}
}
