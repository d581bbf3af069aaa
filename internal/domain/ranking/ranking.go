// Package ranking computes ordered standings over the profile collection.
//
// Everything here is a pure function: identical input yields identical
// output, independent of sort-algorithm stability guarantees.
package ranking

import (
	"sort"

	"github.com/agonhq/agon/internal/domain/model"
)

// Presentation view sizes.
const (
	PodiumSize              = 3
	DefaultLeaderboardLimit = 50
)

// Rank label thresholds, ascending by total score.
const (
	apprenticeThreshold  = 75
	adeptThreshold       = 150
	expertThreshold      = 300
	grandmasterThreshold = 500
)

// Rank labels.
const (
	LabelNovice      = "Novice"
	LabelApprentice  = "Apprentice"
	LabelAdept       = "Adept"
	LabelExpert      = "Expert"
	LabelGrandmaster = "Grandmaster"
)

// Entry is one row of the computed standings.
type Entry struct {
	Position     int    `json:"position"`
	ProfileID    string `json:"profile_id"`
	Username     string `json:"username"`
	AvatarURL    string `json:"avatar_url"`
	TotalScore   int    `json:"total_score"`
	Wins         int    `json:"wins"`
	TotalDebates int    `json:"total_debates"`
	Rank         string `json:"rank"`
}

// Rank orders profiles by total score descending. Ties are broken by account
// creation time, then id, so the ordering is reproducible for equal scores.
func Rank(profiles []model.Profile) []Entry {
	sorted := make([]model.Profile, len(profiles))
	copy(sorted, profiles)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	entries := make([]Entry, len(sorted))
	for i, p := range sorted {
		entries[i] = Entry{
			Position:     i + 1,
			ProfileID:    p.ID,
			Username:     p.Username,
			AvatarURL:    p.AvatarURL,
			TotalScore:   p.TotalScore,
			Wins:         p.Wins,
			TotalDebates: p.TotalDebates,
			Rank:         LabelFor(p.TotalScore),
		}
	}
	return entries
}

// Podium returns the first PodiumSize entries of the standings.
func Podium(profiles []model.Profile) []Entry {
	return truncate(Rank(profiles), PodiumSize)
}

// Leaderboard returns the first n entries of the standings. Non-positive n
// falls back to DefaultLeaderboardLimit.
func Leaderboard(profiles []model.Profile, n int) []Entry {
	if n <= 0 {
		n = DefaultLeaderboardLimit
	}
	return truncate(Rank(profiles), n)
}

// LabelFor maps a cumulative total score to its tier label.
func LabelFor(totalScore int) string {
	switch {
	case totalScore >= grandmasterThreshold:
		return LabelGrandmaster
	case totalScore >= expertThreshold:
		return LabelExpert
	case totalScore >= adeptThreshold:
		return LabelAdept
	case totalScore >= apprenticeThreshold:
		return LabelApprentice
	default:
		return LabelNovice
	}
}

func truncate(entries []Entry, n int) []Entry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}
