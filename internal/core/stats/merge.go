package stats

// Merge folds consecutive groups of bucketsPerGroup buckets into one bucket each. Inside a
// group, fields of later buckets overwrite the same fields of earlier ones; values are
// never summed. A trailing group shorter than bucketsPerGroup is dropped, so callers pass
// an exact multiple.
func Merge(buckets []DayBucket, bucketsPerGroup int) []MergedBucket {
	if bucketsPerGroup <= 0 {
		return nil
	}

	merged := make([]MergedBucket, 0, len(buckets)/bucketsPerGroup)
	for start := 0; start+bucketsPerGroup <= len(buckets); start += bucketsPerGroup {
		acc := MergedBucket{}
		for _, bucket := range buckets[start : start+bucketsPerGroup] {
			for field, value := range bucket {
				acc[field] = value
			}
		}
		merged = append(merged, acc)
	}
	return merged
}
