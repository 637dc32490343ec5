package mcpserver

import (
	"context"
	"net/http"

	appmatch "tictac-arena/internal/app/match"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	store     *store.Store
	playerSvc *appplayer.Service
	matchSvc  *appmatch.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(st *store.Store, players *appplayer.Service, matches *appmatch.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"tictac-arena",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		store:      st,
		playerSvc:  players,
		matchSvc:   matches,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerPlayerTools()
	s.registerGameplayTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

// authPlayer resolves the player_id + api_key argument pair that every
// authenticated tool carries. The key is the credential; the id only has to
// match it.
func (s *Server) authPlayer(ctx context.Context, request mcp.CallToolRequest) (*store.Player, *mcp.CallToolResult) {
	playerID, err := request.RequireString("player_id")
	if err != nil {
		return nil, toolError("invalid_request", err.Error())
	}
	apiKey, err := request.RequireString("api_key")
	if err != nil {
		return nil, toolError("invalid_request", err.Error())
	}
	player, lookupErr := s.store.GetPlayerByAPIKey(ctx, apiKey)
	if lookupErr != nil {
		return nil, toolError("unauthorized", "invalid api_key")
	}
	if player.ID != playerID {
		return nil, toolError("unauthorized", "player_id does not match api_key")
	}
	return player, nil
}
