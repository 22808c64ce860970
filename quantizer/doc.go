// Package quantizer grows a palette by repeatedly splitting color clusters.
//
// A Quantizer starts with one cluster holding every distinct color of a
// histogram. Each Step splits the cluster with the largest weighted error along
// its axis of greatest variance, at the weighted median, so palette entries
// concentrate where the visible error is worst:
//
//	q, err := quantizer.New(h, cs)
//	for q.NumColors() < 16 && q.Step() {
//	}
//	palette := q.Colors()
//
// Clusters are arena records identified by their position; splitting appends
// and optimizing never renumbers, so an index stays attached to the same
// cluster for the lifetime of a Quantizer chain.
package quantizer
