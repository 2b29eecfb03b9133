package cluster

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/ahuang11/landsat-ml-cookbook/compute"
	"github.com/ahuang11/landsat-ml-cookbook/raster"
)

const defaultKMeansIter = 300

// SpectralClustering assigns each sample a label in [0, Clusters) by
// clustering the spectral embedding of an RBF similarity graph. A fixed
// Seed with identical input reproduces identical labels; which label number
// a physical feature lands on is still arbitrary between independent fits,
// so cross-run correspondence remains a manual step.
type SpectralClustering struct {
	// Clusters is the number of groups to split the samples into.
	Clusters int
	// Seed drives every random choice in the fit.
	Seed int64
	// Gamma is the RBF kernel coefficient. Zero selects the default
	// heuristic 1/n_features.
	Gamma float64
	// InitMaxIter caps the k-means iterations used to cluster the
	// embedding. Zero selects the default cap.
	InitMaxIter int
}

// Fit clusters the rows of the sample matrix, fanning the affinity and
// assignment work over the session's workers.
func (sc SpectralClustering) Fit(s *compute.Session, m *raster.SampleMatrix) ([]int, error) {
	n, d := m.Values.Dims()
	if n == 0 {
		return nil, fmt.Errorf("cluster: no samples to fit")
	}
	if sc.Clusters <= 0 {
		return nil, fmt.Errorf("cluster: cluster count must be positive, got %d", sc.Clusters)
	}
	if sc.Clusters > n {
		return nil, fmt.Errorf("cluster: %d clusters for %d samples", sc.Clusters, n)
	}
	gamma := sc.Gamma
	if gamma == 0 {
		gamma = 1 / float64(d)
	}
	maxIter := sc.InitMaxIter
	if maxIter <= 0 {
		maxIter = defaultKMeansIter
	}
	logrus.Infof("spectral clustering: %d samples, %d bands, k=%d, gamma=%.4f", n, d, sc.Clusters, gamma)

	affinity, err := rbfAffinity(s, m.Values, gamma)
	if err != nil {
		return nil, err
	}

	embedding, err := spectralEmbedding(affinity, sc.Clusters)
	if err != nil {
		return nil, err
	}

	labels, err := kmeans(s, embedding, sc.Clusters, sc.Seed, maxIter)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// rbfAffinity computes the dense pairwise similarity matrix
// exp(-gamma * ||xi - xj||^2), row-parallel over the session.
func rbfAffinity(s *compute.Session, x *mat.Dense, gamma float64) (*mat.SymDense, error) {
	n, d := x.Dims()
	data := make([]float64, n*n)
	err := s.Each(n, func(i int) error {
		for j := i; j < n; j++ {
			var sq float64
			for c := 0; c < d; c++ {
				diff := x.At(i, c) - x.At(j, c)
				sq += diff * diff
			}
			a := math.Exp(-gamma * sq)
			data[i*n+j] = a
			data[j*n+i] = a
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mat.NewSymDense(n, data), nil
}

// spectralEmbedding returns the row-normalized eigenvectors belonging to the
// k largest eigenvalues of the symmetric-normalized affinity matrix.
func spectralEmbedding(affinity *mat.SymDense, k int) (*mat.Dense, error) {
	n := affinity.SymmetricDim()

	invSqrtDeg := make([]float64, n)
	for i := 0; i < n; i++ {
		var deg float64
		for j := 0; j < n; j++ {
			deg += affinity.At(i, j)
		}
		invSqrtDeg[i] = 1 / math.Sqrt(deg)
	}
	norm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			norm.SetSym(i, j, affinity.At(i, j)*invSqrtDeg[i]*invSqrtDeg[j])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(norm, true); !ok {
		return nil, fmt.Errorf("cluster: eigendecomposition of the normalized affinity failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back ascending; the embedding uses the top k columns.
	embedding := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < k; c++ {
			embedding.Set(i, c, vecs.At(i, n-k+c))
		}
	}
	for i := 0; i < n; i++ {
		row := embedding.RawRowView(i)
		var sq float64
		for _, v := range row {
			sq += v * v
		}
		if l := math.Sqrt(sq); l > 0 {
			for c := range row {
				row[c] /= l
			}
		}
	}
	return embedding, nil
}
