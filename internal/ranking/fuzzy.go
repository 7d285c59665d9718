package ranking

import "strings"

// Similarity returns a case-insensitive similarity in [0, 1]: 1 when either
// string contains the other, otherwise the Levenshtein distance normalized by
// the longer length. An empty string is only similar to another empty string.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		if a == b {
			return 1.0
		}
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	longer := max(len(ra), len(rb))
	return float64(longer-levenshteinDistance(ra, rb)) / float64(longer)
}

// levenshteinDistance calculates the edit distance between two rune slices.
func levenshteinDistance(a, b []rune) int {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 0; i <= m; i++ {
		for j := 0; j <= n; j++ {
			switch {
			case i == 0:
				dp[i][j] = j
			case j == 0:
				dp[i][j] = i
			case a[i-1] == b[j-1]:
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
			}
		}
	}
	return dp[m][n]
}
