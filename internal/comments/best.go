package comments

import "votecast/internal/models"

// PromoteBest returns the comment to promote as "best": the entry with the
// highest like count among those at or above BestLikeThreshold. Ties resolve
// to the first maximal element in input order. Returns nil when nothing
// clears the threshold. Applied independently to a poll's root list and to
// each root's reply list.
func PromoteBest(list []*models.Comment) *models.Comment {
	var best *models.Comment
	for _, c := range list {
		if c.LikeCount < BestLikeThreshold {
			continue
		}
		if best == nil || c.LikeCount > best.LikeCount {
			best = c
		}
	}
	return best
}

// DisplayOrder returns the list with the promoted best entry first and every
// other entry in its original relative order. Pure derived view; the stored
// order is never rearranged.
func DisplayOrder(list []*models.Comment) []*models.Comment {
	best := PromoteBest(list)
	if best == nil {
		out := make([]*models.Comment, len(list))
		copy(out, list)
		return out
	}
	out := make([]*models.Comment, 0, len(list))
	out = append(out, best)
	for _, c := range list {
		if c != best {
			out = append(out, c)
		}
	}
	return out
}
