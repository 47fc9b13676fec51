package service

import "math/rand/v2"

var (
	monikerAdjectives = []string{
		"Curious", "Thoughtful", "Friendly", "Wise", "Kind", "Bright", "Calm", "Bold",
		"Gentle", "Quiet", "Warm", "Swift", "Keen", "Mellow", "Witty", "Steady",
		"Clever", "Patient", "Brave", "Humble", "Serene", "Lively", "Earnest", "Noble",
	}
	monikerAnimals = []string{
		"Owl", "Fox", "Bear", "Deer", "Wolf", "Hawk", "Otter", "Raven",
		"Cat", "Hare", "Seal", "Crane", "Lynx", "Dove", "Elk", "Finch",
	}
	monikerNouns = []string{
		"Storm", "River", "Mountain", "Ocean", "Forest", "Meadow", "Canyon", "Valley",
		"Edge", "Dawn", "Dusk", "Star", "Moon", "Cloud", "Wave", "Wind",
	}
)

// RandomMoniker returns a public name such as "Curious Owl" or "Calm River".
func RandomMoniker() string {
	adjective := monikerAdjectives[rand.IntN(len(monikerAdjectives))]
	if rand.IntN(2) == 0 {
		return adjective + " " + monikerAnimals[rand.IntN(len(monikerAnimals))]
	}
	return adjective + " " + monikerNouns[rand.IntN(len(monikerNouns))]
}
