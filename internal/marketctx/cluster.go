package marketctx

import (
	"math"
	"sort"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// clusterTickers partitions the portfolio into correlation clusters over the
// trailing return window. Tickers without enough history are left out of the
// assignment. Advisory segmentation only; scoring never reads it.
func (a *Analyzer) clusterTickers(table contracts.PriceTable, tickers []string) contracts.ClusterAssignment {
	var eligible []string
	var returns [][]float64
	for _, ticker := range tickers {
		closes := table.Closes(ticker)
		if len(closes) < a.cfg.ClusterWindow+1 {
			continue
		}
		eligible = append(eligible, ticker)
		returns = append(returns, pctReturns(closes, a.cfg.ClusterWindow))
	}

	assignment := make(contracts.ClusterAssignment, len(eligible))
	switch len(eligible) {
	case 0:
		return assignment
	case 1:
		assignment[eligible[0]] = 0
		return assignment
	}

	dist := distanceMatrix(returns)

	k := a.cfg.TargetClusters
	if k > len(eligible) {
		k = len(eligible)
	}
	if k < 2 {
		k = 2
	}

	for i, clusterID := range agglomerate(dist, k) {
		assignment[eligible[i]] = clusterID
	}
	return assignment
}

// pctReturns computes the trailing window of daily percentage returns.
func pctReturns(closes []float64, window int) []float64 {
	tail := closes[len(closes)-window-1:]
	returns := make([]float64, window)
	for i := 1; i < len(tail); i++ {
		if tail[i-1] == 0 {
			returns[i-1] = 0
			continue
		}
		returns[i-1] = tail[i]/tail[i-1] - 1
	}
	return returns
}

// distanceMatrix converts pairwise Pearson correlation into a distance
// max(1-corr, 0): perfectly correlated series are distance 0, uncorrelated
// ones distance 1.
func distanceMatrix(returns [][]float64) [][]float64 {
	n := len(returns)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Max(1-pearson(returns[i], returns[j]), 0)
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}

func pearson(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// agglomerate runs average-linkage hierarchical clustering over a
// precomputed distance matrix, merging the closest pair until k clusters
// remain. Returns the cluster id per input index, ids numbered by each
// cluster's lowest member index for determinism.
func agglomerate(dist [][]float64, k int) []int {
	n := len(dist)
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > k {
		bestI, bestJ := 0, 1
		bestD := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := averageLinkage(dist, clusters[i], clusters[j])
				if d < bestD {
					bestD = d
					bestI, bestJ = i, j
				}
			}
		}
		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}

	sort.Slice(clusters, func(i, j int) bool {
		return minIndex(clusters[i]) < minIndex(clusters[j])
	})

	ids := make([]int, n)
	for clusterID, members := range clusters {
		for _, idx := range members {
			ids[idx] = clusterID
		}
	}
	return ids
}

func averageLinkage(dist [][]float64, a, b []int) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

func minIndex(members []int) int {
	min := members[0]
	for _, m := range members[1:] {
		if m < min {
			min = m
		}
	}
	return min
}
