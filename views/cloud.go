package views

import (
	"math/rand/v2"

	"presslog/models"
)

type CloudTag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	Size int    `json:"size"`
}

// Weigh sizes every tag that has posts and returns them in random order.
func Weigh(tags []models.TagCount) []CloudTag {
	return WeighWith(tags, rand.Shuffle)
}

// WeighWith is Weigh with the shuffle supplied by the caller.
//
// A size step covers a tenth of the spread between the most and least used tag,
// and never less than 0.1 posts. With a single distinct count the step is 0.1,
// so sizes come out as ten times the count.
func WeighWith(tags []models.TagCount, shuffle func(n int, swap func(i, j int))) []CloudTag {
	var used []models.TagCount
	for _, t := range tags {
		if t.Count > 0 {
			used = append(used, t)
		}
	}
	if len(used) == 0 {
		return []CloudTag{}
	}

	lo, hi := used[0].Count, used[0].Count
	for _, t := range used[1:] {
		lo = min(lo, t.Count)
		hi = max(hi, t.Count)
	}
	width := max(float64(hi-lo)/10.0, 0.1)

	cloud := make([]CloudTag, len(used))
	for i, t := range used {
		cloud[i] = CloudTag{
			Name: t.Name,
			Slug: t.Slug,
			Size: max(int(float64(t.Count)/width), 1),
		}
	}

	if shuffle != nil {
		shuffle(len(cloud), func(i, j int) { cloud[i], cloud[j] = cloud[j], cloud[i] })
	}
	return cloud
}
