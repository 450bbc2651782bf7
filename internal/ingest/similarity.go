package ingest

// levenshteinDistance returns the rune-level edit distance between a and b.
func levenshteinDistance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if string(ar) == string(br) {
		return 0
	}
	if len(ar) < len(br) {
		ar, br = br, ar
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ar {
		curr := make([]int, len(br)+1)
		curr[0] = i + 1
		for j, cb := range br {
			ins := curr[j] + 1
			del := prev[j+1] + 1
			sub := prev[j]
			if ca != cb {
				sub++
			}
			curr[j+1] = min(ins, del, sub)
		}
		prev = curr
	}
	return prev[len(prev)-1]
}

// Similarity returns 1 - distance/maxLen, in [0,1]. Two empty strings are identical.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(a, b))/float64(longest)
}
