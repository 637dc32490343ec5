package mcpserver

import (
	"context"
	"time"

	appplayer "tictac-arena/internal/app/player"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPlayerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"register_player",
			mcp.WithDescription("Register a new player and receive an api key"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Player name")),
		),
		s.handleRegisterPlayer,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_energy",
			mcp.WithDescription("Current energy level, regen countdown, and whether a game can be started"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player api key")),
		),
		s.handleGetEnergy,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_energy_schedule",
			mcp.WithDescription("Projected regen ticks from now until the level caps out"),
			mcp.WithString("player_id", mcp.Required(), mcp.Description("Player id")),
			mcp.WithString("api_key", mcp.Required(), mcp.Description("Player api key")),
			mcp.WithNumber("hours", mcp.Description("Projection horizon in hours, default 24, max 168")),
		),
		s.handleGetEnergySchedule,
	)
}

func (s *Server) handleRegisterPlayer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.playerSvc.Register(ctx, appplayer.RegisterInput{Name: name})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetEnergy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, authErr := s.authPlayer(ctx, request)
	if authErr != nil {
		return authErr, nil
	}
	resp, err := s.playerSvc.EnergyStatus(ctx, player.ID)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetEnergySchedule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, authErr := s.authPlayer(ctx, request)
	if authErr != nil {
		return authErr, nil
	}
	hours := clampScheduleHours(request.GetInt("hours", defaultScheduleHours))
	resp, err := s.playerSvc.EnergySchedule(ctx, player.ID, time.Duration(hours)*time.Hour)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
