package mcpserver

import (
	"errors"
	"fmt"

	appmatch "tictac-arena/internal/app/match"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, appplayer.ErrInvalidRequest), errors.Is(err, appmatch.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, appmatch.ErrInsufficientEnergy):
		return toolError("energy_insufficient", err.Error())
	case errors.Is(err, appmatch.ErrIllegalMove):
		return toolError("illegal_move", err.Error())
	case errors.Is(err, appmatch.ErrGameOver):
		return toolError("game_over", err.Error())
	case errors.Is(err, store.ErrNotFound):
		return toolError("not_found", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
