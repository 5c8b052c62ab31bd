// Package engagement holds the fixed six-class engagement taxonomy and maps
// raw model probabilities onto it.
package engagement

// NumClasses is the width of the model's output vector.
const NumClasses = 6

// Class is one of the engagement states the model predicts. Ordinal is the
// class's position in the model output vector and must match the order the
// model was trained with.
type Class struct {
	Label   string
	Ordinal int
	Weight  float64
}

// Classes lists every engagement state in ordinal order. The weights encode
// how much each state counts toward the overall engagement score: confused
// students are still engaged (just struggling), talking to peers is social
// engagement, drowsy is nearly none.
var Classes = [NumClasses]Class{
	{Label: "Actively Looking", Ordinal: 0, Weight: 1.0},
	{Label: "Confused", Ordinal: 1, Weight: 0.6},
	{Label: "Talking to Peers", Ordinal: 2, Weight: 0.5},
	{Label: "Distracted", Ordinal: 3, Weight: 0.3},
	{Label: "Bored", Ordinal: 4, Weight: 0.2},
	{Label: "Drowsy", Ordinal: 5, Weight: 0.1},
}

// Labels returns the class labels in ordinal order.
func Labels() []string {
	out := make([]string, NumClasses)
	for i, c := range Classes {
		out[i] = c.Label
	}
	return out
}
