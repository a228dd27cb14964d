// ABOUTME: Past campaigns page: the logged-in user's campaigns
// ABOUTME: The backend lists every campaign; only the user's own are kept
package pages

import (
	"context"

	"github.com/harperreed/zala/api"
	"github.com/harperreed/zala/models"
)

// PastCampaigns lists the logged-in user's campaigns.
func PastCampaigns(ctx context.Context, d Deps) ([]models.Campaign, error) {
	d = d.withDefaults()
	user := d.App.User()
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	all, err := d.API.GetCampaigns(ctx, api.ListParams{})
	if err != nil {
		d.reportError("getting all campaigns", err)
		return nil, err
	}

	mine := make([]models.Campaign, 0, len(all))
	for _, c := range all {
		if c.UserID == user.UserID {
			mine = append(mine, c)
		}
	}
	return mine, nil
}
