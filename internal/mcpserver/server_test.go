package mcpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	appintegrity "tictac-arena/internal/app/integrity"
	appmatch "tictac-arena/internal/app/match"
	appplayer "tictac-arena/internal/app/player"
	"tictac-arena/internal/energy"
	"tictac-arena/internal/game"
	"tictac-arena/internal/ledger"
	"tictac-arena/internal/testutil"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

func TestMCPServerToolsAndFlows(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	tools := mustListTools(t, mcpClient)
	assertToolNames(t, tools,
		"register_player",
		"get_energy",
		"get_energy_schedule",
		"start_game",
		"play_move",
		"get_game",
		"suggest_move",
		"get_leaderboard",
	)

	creds := mustRegisterPlayer(t, mcpClient, "mcp-player-a")

	energyRes := mustCallTool(t, mcpClient, "get_energy", authArgs(creds, nil))
	if energyRes.IsError {
		t.Fatalf("get_energy error: %v", energyRes.StructuredContent)
	}
	energyPayload := mapFromStructured(t, energyRes)
	if int(asFloat64(energyPayload["level"])) != 5 {
		t.Fatalf("fresh player level = %v, want 5", energyPayload["level"])
	}
	if got, _ := energyPayload["can_act"].(bool); !got {
		t.Fatalf("fresh player should be able to act: %v", energyPayload)
	}

	startRes := mustCallTool(t, mcpClient, "start_game", authArgs(creds, nil))
	if startRes.IsError {
		t.Fatalf("start_game error: %v", startRes.StructuredContent)
	}
	startPayload := mapFromStructured(t, startRes)
	if int(asFloat64(startPayload["energy"])) != 4 {
		t.Fatalf("energy after start = %v, want 4", startPayload["energy"])
	}
	gameObj, _ := startPayload["game"].(map[string]any)
	gameID := asString(gameObj["game_id"])
	if gameID == "" || asString(gameObj["status"]) != "ongoing" {
		t.Fatalf("unexpected start payload: %v", startPayload)
	}

	status := "ongoing"
	for i := 0; i < 9 && status == "ongoing"; i++ {
		hintRes := mustCallTool(t, mcpClient, "suggest_move", authArgs(creds, map[string]any{"game_id": gameID}))
		if hintRes.IsError {
			t.Fatalf("suggest_move error: %v", hintRes.StructuredContent)
		}
		position := asFloat64(mapFromStructured(t, hintRes)["position"])

		moveRes := mustCallTool(t, mcpClient, "play_move", authArgs(creds, map[string]any{
			"game_id":  gameID,
			"position": position,
		}))
		if moveRes.IsError {
			t.Fatalf("play_move error: %v", moveRes.StructuredContent)
		}
		movePayload := mapFromStructured(t, moveRes)
		moveGame, _ := movePayload["game"].(map[string]any)
		status = asString(moveGame["status"])
	}
	if status == "ongoing" {
		t.Fatalf("game never reached a terminal status")
	}

	getRes := mustCallTool(t, mcpClient, "get_game", authArgs(creds, map[string]any{"game_id": gameID}))
	if getRes.IsError {
		t.Fatalf("get_game error: %v", getRes.StructuredContent)
	}
	getPayload := mapFromStructured(t, getRes)
	finalGame, _ := getPayload["game"].(map[string]any)
	moves, _ := getPayload["moves"].([]any)
	if len(moves) == 0 || len(moves) != int(asFloat64(finalGame["move_count"])) {
		t.Fatalf("move history mismatch: %d moves, move_count=%v", len(moves), finalGame["move_count"])
	}

	deadMove := mustCallTool(t, mcpClient, "play_move", authArgs(creds, map[string]any{
		"game_id":  gameID,
		"position": 0,
	}))
	assertToolErrorCode(t, deadMove, "game_over")

	scheduleRes := mustCallTool(t, mcpClient, "get_energy_schedule", authArgs(creds, map[string]any{"hours": 48}))
	if scheduleRes.IsError {
		t.Fatalf("get_energy_schedule error: %v", scheduleRes.StructuredContent)
	}
	schedulePayload := mapFromStructured(t, scheduleRes)
	if slots, _ := schedulePayload["slots"].([]any); len(slots) == 0 {
		t.Fatalf("player below max should have pending regen slots: %v", schedulePayload)
	}

	lbRes := mustCallTool(t, mcpClient, "get_leaderboard", map[string]any{"limit": 10})
	if lbRes.IsError {
		t.Fatalf("get_leaderboard error: %v", lbRes.StructuredContent)
	}
	lbPayload := mapFromStructured(t, lbRes)
	if _, ok := lbPayload["items"]; !ok {
		t.Fatalf("leaderboard payload missing items: %v", lbPayload)
	}
}

func TestMCPServerToolErrors(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	httpSrv := httptest.NewServer(srv.Handler())
	defer httpSrv.Close()

	mcpClient, closeClient := newMCPClient(t, httpSrv.URL+"/mcp")
	defer closeClient()

	missing := mustCallTool(t, mcpClient, "get_energy", map[string]any{"player_id": "plr_x"})
	assertToolErrorCode(t, missing, "invalid_request")

	badKey := mustCallTool(t, mcpClient, "get_energy", map[string]any{"player_id": "plr_x", "api_key": "ttt_bogus"})
	assertToolErrorCode(t, badKey, "unauthorized")

	creds := mustRegisterPlayer(t, mcpClient, "mcp-player-errors")

	mismatched := mustCallTool(t, mcpClient, "get_energy", map[string]any{"player_id": "plr_other", "api_key": creds.APIKey})
	assertToolErrorCode(t, mismatched, "unauthorized")

	unknownGame := mustCallTool(t, mcpClient, "play_move", authArgs(creds, map[string]any{
		"game_id":  "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"position": 0,
	}))
	assertToolErrorCode(t, unknownGame, "not_found")

	noPosition := mustCallTool(t, mcpClient, "play_move", authArgs(creds, map[string]any{"game_id": "whatever"}))
	assertToolErrorCode(t, noPosition, "invalid_request")

	for i := 0; i < 5; i++ {
		res := mustCallTool(t, mcpClient, "start_game", authArgs(creds, nil))
		if res.IsError {
			t.Fatalf("start_game %d should succeed: %v", i+1, res.StructuredContent)
		}
	}
	exhausted := mustCallTool(t, mcpClient, "start_game", authArgs(creds, nil))
	assertToolErrorCode(t, exhausted, "energy_insufficient")
}

type playerCreds struct {
	PlayerID string
	APIKey   string
}

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	st, cleanup := testutil.OpenTestStore(t)
	mgr, err := energy.NewManager(energy.Config{
		MaxLevel:      5,
		RegenPeriod:   90 * time.Minute,
		CostPerAction: 1,
	}, zerolog.Nop())
	if err != nil {
		cleanup()
		t.Fatalf("new manager: %v", err)
	}
	led := ledger.New(st)
	players := appplayer.NewService(st, mgr, led)
	integ := appintegrity.NewService(st, mgr, led, game.DefaultThresholds())
	matches := appmatch.NewService(st, mgr, integ)
	return New(st, players, matches), cleanup
}

func newMCPClient(t *testing.T, endpoint string) (*client.Client, func()) {
	t.Helper()
	ctx := context.Background()
	trans, err := transport.NewStreamableHTTP(endpoint)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if err := trans.Start(ctx); err != nil {
		t.Fatalf("transport start: %v", err)
	}
	c := client.NewClient(trans)
	_, err = c.Initialize(ctx, mcp.InitializeRequest{Params: mcp.InitializeParams{ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION}})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return c, func() { _ = trans.Close() }
}

func mustListTools(t *testing.T, c *client.Client) []mcp.Tool {
	t.Helper()
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	return res.Tools
}

func assertToolNames(t *testing.T, tools []mcp.Tool, expected ...string) {
	t.Helper()
	got := make([]string, 0, len(tools))
	for _, tool := range tools {
		got = append(got, tool.Name)
	}
	sort.Strings(got)
	sort.Strings(expected)
	if len(got) != len(expected) {
		t.Fatalf("tool count mismatch got=%v expected=%v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("tool list mismatch got=%v expected=%v", got, expected)
		}
	}
}

func mustCallTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := c.CallTool(context.Background(), mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func mustRegisterPlayer(t *testing.T, c *client.Client, name string) playerCreds {
	t.Helper()
	register := mustCallTool(t, c, "register_player", map[string]any{"name": name})
	if register.IsError {
		t.Fatalf("register_player error: %v", register.StructuredContent)
	}
	payload := mapFromStructured(t, register)
	id := asString(payload["player_id"])
	apiKey := asString(payload["api_key"])
	if id == "" || apiKey == "" {
		t.Fatalf("register response missing fields: %v", payload)
	}
	return playerCreds{PlayerID: id, APIKey: apiKey}
}

func authArgs(creds playerCreds, extra map[string]any) map[string]any {
	args := map[string]any{
		"player_id": creds.PlayerID,
		"api_key":   creds.APIKey,
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func assertToolErrorCode(t *testing.T, res *mcp.CallToolResult, want string) {
	t.Helper()
	if !res.IsError {
		t.Fatalf("expected tool error %q, got success: %v", want, res.StructuredContent)
	}
	payload := mapFromStructured(t, res)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("error payload missing 'error': %v", payload)
	}
	got := asString(errObj["code"])
	if got != want {
		t.Fatalf("error code=%q want=%q payload=%v", got, want, payload)
	}
}

func mapFromStructured(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	b, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat64(v any) float64 {
	f, _ := v.(float64)
	return f
}
