// Package optimizer refines palette centroids with k-means style passes.
//
// Three strategies form a closed set:
//
//   - None: pass-through, centroids are returned unchanged.
//   - KMeans: Lloyd's algorithm; every sample moves to its nearest centroid,
//     centroids move to the occurrence-weighted mean of their samples.
//     Tends to give smooth gradients.
//   - WeightedKMeans: the same loop, but reassignment prefers centroids that
//     already cover many pixels. Tends to serve images dominated by a few
//     frequent colors better.
//
// All strategies run a fixed number of iterations. A pass that would raise
// the total weighted error is discarded, so optimizing never makes a palette
// worse. A centroid left without samples is reseeded on the sample with the
// largest weighted residual, so the number of centroids never shrinks.
package optimizer
