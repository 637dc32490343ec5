package mcpserver

const (
	defaultPageLimit    = 50
	maxPageLimit        = 500
	maxLeaderboardLimit = 100

	defaultScheduleHours = 24
	maxScheduleHours     = 24 * 7
)

func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func clampScheduleHours(hours int) int {
	if hours <= 0 {
		return defaultScheduleHours
	}
	if hours > maxScheduleHours {
		return maxScheduleHours
	}
	return hours
}
