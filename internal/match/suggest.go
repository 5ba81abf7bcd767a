package match

// DefaultThreshold is the minimum similarity of a useful suggestion.
const DefaultThreshold = 0.6

// Closest returns the candidate most similar to name, or false when none
// reaches threshold. Ties are broken by candidate order.
func Closest(name string, candidates []string, threshold float64) (string, bool) {
	var (
		best  string
		score float64
	)

	for _, c := range candidates {
		s := Similarity(name, c)
		if s > score {
			best, score = c, s
		}
	}

	if best == "" || score < threshold {
		return "", false
	}

	return best, true
}
