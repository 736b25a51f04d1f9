package podiumcheck

import (
	"math/rand/v2"

	"github.com/okian/podium/internal/domain/model"
)

// generateUpdates builds n random podium updates. Slot communities within an
// update are always distinct.
func generateUpdates(cfg *Config, n int) []Update {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out := make([]Update, n)
	for i := range out {
		out[i] = generateUpdate(rng, cfg)
	}
	return out
}

func generateUpdate(rng *rand.Rand, cfg *Config) Update {
	u := Update{SportID: cfg.Sports[rng.IntN(len(cfg.Sports))]}
	perm := rng.Perm(len(cfg.Communities))
	slots := [model.PodiumSlots]**string{&u.First, &u.Second, &u.Third}
	for i, slot := range slots {
		if i >= len(perm) || rng.Float64() < cfg.EmptySlotP {
			continue
		}
		id := cfg.Communities[perm[i]]
		*slot = &id
	}
	return u
}
