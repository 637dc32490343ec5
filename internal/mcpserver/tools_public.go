package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_leaderboard",
			mcp.WithDescription("Players ranked by wins, with total games played"),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 100")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleGetLeaderboard,
	)
}

func (s *Server) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultPageLimit)
	offset := request.GetInt("offset", 0)
	limit, offset = clampPagination(limit, offset, maxLeaderboardLimit)

	items, err := s.store.ListLeaderboard(ctx, limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	}), nil
}
