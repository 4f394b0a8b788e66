package avito

import "avito-position-probe/models"

// Resolve returns the 1-based position of the first record whose id equals
// targetID, or NotFound.
func Resolve(records []models.ListingRecord, targetID string) models.RankOutcome {
	for i, record := range records {
		if record.ID == targetID {
			return models.Found(i + 1)
		}
	}
	return models.NotFound()
}
