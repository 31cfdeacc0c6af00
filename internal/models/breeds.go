package models

import "strings"

// BreedCategories groups the breed tags offered by the breed filter
type BreedCategories struct {
	Sizes        []string `json:"sizes"`
	SmallBreeds  []string `json:"small_breeds"`
	MediumBreeds []string `json:"medium_breeds"`
	LargeBreeds  []string `json:"large_breeds"`
}

// Breeds is the canonical breed catalogue
var Breeds = BreedCategories{
	Sizes: []string{
		"Tiny (under 5 lbs)",
		"Small (5-20 lbs)",
		"Medium (21-50 lbs)",
		"Large (51-90 lbs)",
		"Extra Large (90+ lbs)",
	},
	SmallBreeds: []string{
		"Dachshund",
		"French Bulldog",
		"Pug",
		"Yorkshire Terrier",
		"Chihuahua",
		"Shih Tzu",
	},
	MediumBreeds: []string{
		"Border Collie",
		"Bulldog",
		"Beagle",
		"Cocker Spaniel",
		"Australian Shepherd",
		"Corgi",
	},
	LargeBreeds: []string{
		"German Shepherd",
		"Golden Retriever",
		"Labrador Retriever",
		"Husky",
		"Doberman",
		"Rottweiler",
	},
}

// All returns every breed tag in catalogue order
func (b BreedCategories) All() []string {
	all := make([]string, 0, len(b.Sizes)+len(b.SmallBreeds)+len(b.MediumBreeds)+len(b.LargeBreeds))
	all = append(all, b.Sizes...)
	all = append(all, b.SmallBreeds...)
	all = append(all, b.MediumBreeds...)
	all = append(all, b.LargeBreeds...)
	return all
}

// NormalizeBreeds trims tags, drops empties and removes duplicates while
// keeping first-seen order. Tags are compared exactly, as stored.
func NormalizeBreeds(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// BreedsIntersect reports whether any tag in selected appears in tags
func BreedsIntersect(tags, selected []string) bool {
	for _, s := range selected {
		for _, t := range tags {
			if s == t {
				return true
			}
		}
	}
	return false
}
