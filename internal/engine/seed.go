package engine

import (
	"hash/fnv"
	"strings"
	"time"
)

// Seed ranges. The location seed is stable per route; the time seed changes
// once per 10-minute bucket.
const (
	locationSeedRange = 10
	timeSeedRange     = 20
	bucketMinutes     = 10
)

// Seeds are the bounded pseudo-random perturbations applied by the signal
// normalizer and aggregator. They exist so that identical routes queried in
// different time windows do not return byte-identical verdicts, while
// evaluations within the same 10-minute bucket reproduce exactly.
type Seeds struct {
	// Location is in [0, 10), derived from a stable hash of the route key.
	Location int
	// Time is in [0, 20), derived from the hour and 10-minute bucket.
	Time int
}

// NewSeeds derives the perturbation seeds for a route at an instant.
// The hash is FNV-1a over the UTF-8 bytes of the lower-cased
// "origin_destination" key, which is stable across runs and platforms.
func NewSeeds(origin, destination string, now time.Time) Seeds {
	key := strings.ToLower(origin + "_" + destination)

	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	bucket := now.Minute() / bucketMinutes

	return Seeds{
		Location: int(h.Sum32() % locationSeedRange),
		Time:     (now.Hour()*6 + bucket) % timeSeedRange,
	}
}

// BucketStart returns the beginning of the 10-minute bucket containing t,
// the unit of reproducibility for verdict evaluation.
func BucketStart(t time.Time) time.Time {
	return t.Truncate(bucketMinutes * time.Minute)
}
