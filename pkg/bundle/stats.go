package bundle

// Stats is a read-only diagnostic aggregate over a set of body bundles,
// consumed by the executor's Resources assembly as an optional extra, not
// part of the core observation contract.
type Stats struct {
	TotalBundles    int
	ByRealm         map[string]int
	TotalChunks     int
	AverageChunks   float64
	TotalMediaBytes int64
}

// ComputeStats aggregates Stats across bundles.
func ComputeStats(bundles []*BundleBody) Stats {
	s := Stats{ByRealm: map[string]int{}}
	for _, b := range bundles {
		s.TotalBundles++
		s.ByRealm[b.URI.Resource.Realm]++
		s.TotalChunks += len(b.Chunks)
		for _, m := range b.Media {
			s.TotalMediaBytes += int64(len(m.Blob))
		}
	}
	if s.TotalBundles > 0 {
		s.AverageChunks = float64(s.TotalChunks) / float64(s.TotalBundles)
	}
	return s
}
