package ranking

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// RankOverall sums entries per community and ranks communities by total.
//
// Ranks follow standard competition ranking: a community's rank is one plus the
// number of communities with a strictly greater total, so totals 17, 17, 10 rank
// 1, 1, 3. Tied communities are ordered by name, then id. Communities without
// entries do not appear.
func RankOverall(entries []model.Entry, names Names) []model.OverallStanding {
	byCommunity := make(map[string]*model.OverallStanding)
	for _, e := range entries {
		row, ok := byCommunity[e.CommunityID]
		if !ok {
			row = &model.OverallStanding{
				CommunityID:   e.CommunityID,
				CommunityName: names.Name(e.CommunityID),
			}
			byCommunity[e.CommunityID] = row
		}
		row.TotalScore += e.Score
		row.EntryCount++
	}

	out := make([]model.OverallStanding, 0, len(byCommunity))
	for _, row := range byCommunity {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.CommunityName != b.CommunityName {
			return a.CommunityName < b.CommunityName
		}
		return a.CommunityID < b.CommunityID
	})
	assignCompetitionRanks(out)
	return out
}

// assignCompetitionRanks expects rows sorted by total descending.
func assignCompetitionRanks(rows []model.OverallStanding) {
	for i := range rows {
		if i > 0 && rows[i].TotalScore == rows[i-1].TotalScore {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
