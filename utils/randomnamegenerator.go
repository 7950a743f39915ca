package utils

import (
	"math/rand"

	"github.com/Pallinder/go-randomdata"
)

// RandomNameGenerator hands out unique silly names. randomdata keeps its
// source in a package variable, so generators must not be used concurrently.
type RandomNameGenerator struct {
	used map[string]struct{}
}

func NewRandomNameGenerator(seed int64) *RandomNameGenerator {
	randomdata.CustomRand(rand.New(rand.NewSource(seed)))
	return &RandomNameGenerator{used: make(map[string]struct{})}
}

func (rng *RandomNameGenerator) RandomName() string {
	for attempt := 0; ; attempt++ {
		name := randomdata.SillyName()
		if attempt > 16 {
			name += " " + randomdata.StringNumberExt(1, "", 3)
		}
		// avoid duplicate names
		if _, exists := rng.used[name]; !exists {
			rng.used[name] = struct{}{}
			return name
		}
	}
}
