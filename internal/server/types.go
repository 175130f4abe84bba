package server

import "slack-mcp/internal/tools"

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse reports liveness and credential presence. Secret values are never
// included.
type HealthResponse struct {
	Status           string  `json:"status"`
	UptimeSeconds    float64 `json:"uptime_s"`
	HasSlackBotToken bool    `json:"hasSlackBotToken"`
	HasSlackTeamID   bool    `json:"hasSlackTeamId"`
	Sessions         int     `json:"sessions"`
}

type ToolsResponse struct {
	Tools []tools.Definition `json:"tools"`
}

type CallRequest struct {
	Name string         `json:"name"`
	Args map[string]any `json:"arguments"`
}
