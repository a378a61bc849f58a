package backend

import "context"

// DashboardStats returns the admin dashboard aggregates (admin only
// upstream).
func (c *Client) DashboardStats(ctx context.Context, creds Credentials) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.getJSON(ctx, "/admin/dashboard-stats", creds, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
