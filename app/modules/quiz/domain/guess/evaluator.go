// Package guess implements the fuzzy matching that decides whether a
// free-text guess names a song or artist. Matching is stateless: normalize
// both sides, try exact equality, then fall back to a length-tiered
// Damerau-Levenshtein tolerance when typo tolerance is enabled.
package guess

import "strings"

// strippedPunctuation is removed from both guesses and accepted answers
// before comparison.
const strippedPunctuation = ` '".,-?!_:;()[]{}`

// Normalize folds case, maps "&" to "and", and strips the configured
// punctuation set.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "and")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(strippedPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CheckSimilarity reports whether the guess matches any accepted answer.
// An exact match after normalization always succeeds. With typo tolerance:
//
//	len <= 4:  exact match only
//	len 5..6:  edit distance <= 1
//	len >  6:  edit distance <= 2, and at most 2 combined insertions and
//	           deletions (a same-length transposition-heavy near match is
//	           accepted where an insertion-heavy one of equal distance is
//	           not)
//
// where len is the normalized answer length.
func CheckSimilarity(guessText string, answers []string, typoTolerant bool) bool {
	guessNorm := Normalize(guessText)
	if guessNorm == "" {
		return false
	}
	for _, answer := range answers {
		answerNorm := Normalize(answer)
		if answerNorm == "" {
			continue
		}
		if guessNorm == answerNorm {
			return true
		}
		if !typoTolerant {
			continue
		}
		if withinTolerance(guessNorm, answerNorm) {
			return true
		}
	}
	return false
}

func withinTolerance(guessNorm, answerNorm string) bool {
	length := len([]rune(answerNorm))
	switch {
	case length <= 4:
		return false
	case length <= 6:
		dist, _ := Distance(guessNorm, answerNorm)
		return dist <= 1
	default:
		dist, indels := Distance(guessNorm, answerNorm)
		return dist <= 2 && indels <= 2
	}
}

// Distance computes the Damerau-Levenshtein distance (optimal string
// alignment: substitutions, insertions, deletions, and adjacent
// transpositions each cost 1) between a and b, along with the combined
// insertion+deletion count of a minimal alignment. Ties between equally
// cheap alignments resolve toward fewer insertions and deletions.
func Distance(a, b string) (dist, indels int) {
	ra := []rune(a)
	rb := []rune(b)
	n := len(ra)
	m := len(rb)
	if n == 0 {
		return m, m
	}
	if m == 0 {
		return n, n
	}

	// d tracks edit cost, id tracks the indel count of the chosen alignment.
	d := make([][]int, n+1)
	id := make([][]int, n+1)
	for i := 0; i <= n; i++ {
		d[i] = make([]int, m+1)
		id[i] = make([]int, m+1)
		d[i][0] = i
		id[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
		id[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			subCost := 1
			if ra[i-1] == rb[j-1] {
				subCost = 0
			}

			// Substitution or match.
			bestCost := d[i-1][j-1] + subCost
			bestIndels := id[i-1][j-1]

			// Deletion from a.
			if cost := d[i-1][j] + 1; cost < bestCost ||
				(cost == bestCost && id[i-1][j]+1 < bestIndels) {
				bestCost = cost
				bestIndels = id[i-1][j] + 1
			}

			// Insertion into a.
			if cost := d[i][j-1] + 1; cost < bestCost ||
				(cost == bestCost && id[i][j-1]+1 < bestIndels) {
				bestCost = cost
				bestIndels = id[i][j-1] + 1
			}

			// Adjacent transposition.
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if cost := d[i-2][j-2] + 1; cost < bestCost ||
					(cost == bestCost && id[i-2][j-2] < bestIndels) {
					bestCost = cost
					bestIndels = id[i-2][j-2]
				}
			}

			d[i][j] = bestCost
			id[i][j] = bestIndels
		}
	}

	return d[n][m], id[n][m]
}
