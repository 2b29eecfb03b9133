package cluster

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/ahuang11/landsat-ml-cookbook/compute"
)

// kmeans runs Lloyd's algorithm with k-means++ seeding on the rows of data.
// All randomness flows from the seed, ties resolve to the lowest index, and
// the assignment step fans out over the session, so repeated runs over the
// same input produce identical labels.
func kmeans(s *compute.Session, data *mat.Dense, k int, seed int64, maxIter int) ([]int, error) {
	n, d := data.Dims()
	rng := rand.New(rand.NewSource(seed))
	centroids := kmeansppInit(rng, data, k)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for iter := 0; iter < maxIter; iter++ {
		next := make([]int, n)
		err := s.Each(n, func(i int) error {
			next[i] = nearestCentroid(data.RawRowView(i), centroids)
			return nil
		})
		if err != nil {
			return nil, err
		}

		changed := false
		for i := range next {
			if next[i] != labels[i] {
				changed = true
				break
			}
		}
		labels = next
		if !changed {
			logrus.Debugf("kmeans converged after %d iterations", iter+1)
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i, c := range labels {
			counts[c]++
			row := data.RawRowView(i)
			for j, v := range row {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // keep the previous centroid
			}
			for j := 0; j < d; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}
	return labels, nil
}

// kmeansppInit picks k starting centroids, each subsequent one drawn with
// probability proportional to its squared distance from the nearest centroid
// already chosen.
func kmeansppInit(rng *rand.Rand, data *mat.Dense, k int) [][]float64 {
	n, _ := data.Dims()
	centroids := make([][]float64, 0, k)
	first := rng.Intn(n)
	centroids = append(centroids, append([]float64(nil), data.RawRowView(first)...))

	minDists := make([]float64, n)
	for i := range minDists {
		minDists[i] = math.Inf(1)
	}
	for len(centroids) < k {
		latest := centroids[len(centroids)-1]
		var total float64
		for i := 0; i < n; i++ {
			if dist := sqDistance(data.RawRowView(i), latest); dist < minDists[i] {
				minDists[i] = dist
			}
			total += minDists[i]
		}
		idx := 0
		if total > 0 {
			target := rng.Float64() * total
			var cum float64
			for i := 0; i < n; i++ {
				cum += minDists[i]
				if cum >= target {
					idx = i
					break
				}
			}
		} else {
			idx = rng.Intn(n)
		}
		centroids = append(centroids, append([]float64(nil), data.RawRowView(idx)...))
	}
	return centroids
}

func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, cent := range centroids {
		if dist := sqDistance(row, cent); dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best
}

func sqDistance(a, b []float64) float64 {
	var sq float64
	for i := range a {
		diff := a[i] - b[i]
		sq += diff * diff
	}
	return sq
}
