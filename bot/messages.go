package bot

import (
	"avito-position-probe/models"
	"fmt"
	"strings"
)

const helpText = `Hi! I track where an Avito listing appears in search results.

How to use:
1. Set the listing ID: /set_ad_id
2. Choose the region to track
3. Start a check: /check
4. Send the search phrases, one per line

Change the region at any time with /change_region.
Forget the listing and region with /reset.`

const adIDPrompt = `Send the listing ID.
Send /cancel to stop.

The ID is the number at the end of the listing URL:
https://www.avito.ru/.../2140172843 -> 2140172843`

func regionPrompt() string {
	var b strings.Builder
	b.WriteString("Choose the region to track:\n")
	for i, choice := range models.RegionChoices {
		fmt.Fprintf(&b, "%d. %s\n", i+1, choice.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

func queriesPrompt(maxQueries int) string {
	return fmt.Sprintf(`Send the search phrases, one per line.
At most %d phrases. Send /cancel to stop.

Example:
makeup and hairstyle
makeup artist with visit`, maxQueries)
}

func progressText(job models.SweepJob) string {
	return fmt.Sprintf("Checking %d/%d\n- Query: %s\n- Region: %s",
		job.Index, job.Total, job.Query, models.RegionName(job.Region))
}
