package domain

import "github.com/google/uuid"

// MergeCandidate is a guest line that survived filtering and the item cap.
type MergeCandidate struct {
	SKUID     uuid.UUID
	ListingID uuid.UUID
	// Quantity is the final quantity under the MAX policy.
	Quantity   int
	PriceAtAdd int64
	// Existing is set when the user cart already holds the SKU.
	Existing bool
}

type MergePlan struct {
	Candidates []MergeCandidate
	Dropped    int
	Truncated  int
}

func (p MergePlan) SKUIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		ids = append(ids, c.SKUID)
	}
	return ids
}

type MergeResult struct {
	MergedItems int
	Conflicts   int
}

// PlanMerge combines guest into user under the MAX conflict policy.
// Guest lines whose SKU is inactive or not publicly listed are dropped, and new SKUs
// beyond maxItems are truncated in guest order. Existing user lines are never evicted.
func PlanMerge(guest, user Cart, maxItems int) MergePlan {
	var plan MergePlan

	capacity := max(0, maxItems-len(user.Items))

	for _, item := range guest.Items {
		if !item.SKU.IsPurchasable() {
			plan.Dropped++
			continue
		}

		if existing, ok := user.Item(item.SKUID); ok {
			plan.Candidates = append(plan.Candidates, MergeCandidate{
				SKUID:      item.SKUID,
				ListingID:  item.SKU.ListingID,
				Quantity:   max(existing.Quantity, item.Quantity),
				PriceAtAdd: existing.PriceAtAdd,
				Existing:   true,
			})
			continue
		}

		if capacity == 0 {
			plan.Truncated++
			continue
		}
		capacity--

		plan.Candidates = append(plan.Candidates, MergeCandidate{
			SKUID:      item.SKUID,
			ListingID:  item.SKU.ListingID,
			Quantity:   item.Quantity,
			PriceAtAdd: item.PriceAtAdd,
		})
	}

	return plan
}
