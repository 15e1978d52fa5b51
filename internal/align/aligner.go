package align

// AlignedPair is one diagonal move of the global alignment: reference cue
// RefIndex matched target cue TgtIndex with the given similarity score.
type AlignedPair struct {
	RefIndex int
	TgtIndex int
	Score    float64
}

// Backtrace moves.
const (
	moveNone byte = iota
	moveDiag
	moveSkipRef
	moveSkipTgt
)

// Align runs a Needleman–Wunsch global alignment over the similarity
// matrix and returns matched index pairs in order. The emitted pairs are
// strictly increasing in both indices; skip moves emit nothing.
//
// Ties break diagonal > skip-reference > skip-target, so equal-score
// paths prefer keeping cues matched. Time and space are O(N·M); inputs
// in the low thousands per side are the expected production scale.
func Align(matrix *Matrix, gapPenalty float64) []AlignedPair {
	n, m := matrix.Dims()
	if n == 0 || m == 0 {
		return nil
	}

	cols := m + 1
	dp := make([]float64, (n+1)*cols)
	ptr := make([]byte, (n+1)*cols)

	for i := 1; i <= n; i++ {
		dp[i*cols] = dp[(i-1)*cols] - gapPenalty
		ptr[i*cols] = moveSkipRef
	}
	for j := 1; j <= m; j++ {
		dp[j] = dp[j-1] - gapPenalty
		ptr[j] = moveSkipTgt
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			match := dp[(i-1)*cols+j-1] + matrix.At(i-1, j-1)
			skipRef := dp[(i-1)*cols+j] - gapPenalty
			skipTgt := dp[i*cols+j-1] - gapPenalty

			best, way := match, moveDiag
			if skipRef > best {
				best, way = skipRef, moveSkipRef
			}
			if skipTgt > best {
				best, way = skipTgt, moveSkipTgt
			}
			dp[i*cols+j] = best
			ptr[i*cols+j] = way
		}
	}

	var pairs []AlignedPair
	i, j := n, m
	for i > 0 || j > 0 {
		switch ptr[i*cols+j] {
		case moveDiag:
			pairs = append(pairs, AlignedPair{RefIndex: i - 1, TgtIndex: j - 1, Score: matrix.At(i-1, j-1)})
			i--
			j--
		case moveSkipRef:
			i--
		case moveSkipTgt:
			j--
		default:
			return reversePairs(pairs)
		}
	}
	return reversePairs(pairs)
}

func reversePairs(pairs []AlignedPair) []AlignedPair {
	for left, right := 0, len(pairs)-1; left < right; left, right = left+1, right-1 {
		pairs[left], pairs[right] = pairs[right], pairs[left]
	}
	return pairs
}
