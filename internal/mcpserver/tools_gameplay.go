package mcpserver

import (
	"context"

	appmatch "tictac-arena/internal/app/match"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGameplayTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"start_game",
			mcp.WithDescription("Spend one energy and start a game against the house bot. You play X and move first."),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player api key")),
		),
		s.handleStartGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"play_move",
			mcp.WithDescription("Place your mark on a cell. The bot replies in the same call unless the game ends."),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player api key")),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id from start_game")),
			mcp.WithNumber("position", mcp.Required(), mcp.Description("Cell 0-8, row-major from the top left")),
		),
		s.handlePlayMove,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_game",
			mcp.WithDescription("Fetch one of your games with its move history"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player api key")),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
		),
		s.handleGetGame,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"suggest_move",
			mcp.WithDescription("Ask the house heuristic for a reasonable next move in one of your ongoing games"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player api key")),
			mcp.WithString("game_id", mcp.Required(), mcp.Description("Game id")),
		),
		s.handleSuggestMove,
	)
}

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, authErr := s.authPlayer(ctx, request)
	if authErr != nil {
		return authErr, nil
	}
	resp, err := s.matchSvc.Start(ctx, player)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handlePlayMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, authErr := s.authPlayer(ctx, request)
	if authErr != nil {
		return authErr, nil
	}
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	position, err := request.RequireFloat("position")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.matchSvc.Move(ctx, player, appmatch.MoveInput{
		GameID:   gameID,
		Position: int(position),
	})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, authErr := s.authPlayer(ctx, request)
	if authErr != nil {
		return authErr, nil
	}
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.matchSvc.Get(ctx, player, gameID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleSuggestMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, authErr := s.authPlayer(ctx, request)
	if authErr != nil {
		return authErr, nil
	}
	gameID, err := request.RequireString("game_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.matchSvc.Hint(ctx, player, gameID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}
