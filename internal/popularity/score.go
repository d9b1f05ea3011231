package popularity

// Weights maps a metric-type code to how strongly that signal counts
// towards a port's score. codes absent from the table weigh 1.0.
type Weights map[string]float64

// weights reflect engagement level: actively playing counts for more
// than a page visit.
func DefaultWeights() Weights {
	return Weights{
		"1":  1.0, // Visits
		"2":  2.0, // Want to Play
		"3":  5.0, // Playing
		"4":  4.0, // Played
		"5":  3.0, // 24hr Peak Players
		"6":  3.0, // Positive Reviews
		"7":  1.0, // Negative Reviews
		"8":  2.0, // Total Reviews
		"9":  4.0, // Global Top Sellers
		"10": 2.5, // Most Wishlisted Upcoming
	}
}

func (w Weights) Of(code string) float64 {
	weight, present := w[code]
	if !present {
		return 1.0
	}
	return weight
}

func (w Weights) Max() float64 {
	max := 0.0
	for _, weight := range w {
		if weight > max {
			max = weight
		}
	}
	return max
}

// Score computes the normalised weighted score for one port's metric
// block. dividing by (number of metrics * max weight) keeps ports with
// many metric types comparable to ports with few, and de-weights ports
// that only carry low-importance signals. no metrics scores zero.
func (w Weights) Score(metrics map[string]float64) float64 {
	if len(metrics) == 0 {
		return 0
	}

	score := 0.0
	for code, value := range metrics {
		score += value * w.Of(code)
	}

	return score / (float64(len(metrics)) * w.Max())
}
