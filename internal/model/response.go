package model

// AgentResponse is what the pipeline returns for one conversational turn.
type AgentResponse struct {
	Message    string `json:"message"`
	IsComplete bool   `json:"is_complete"`
	Progress   int    `json:"progress"`
}

// SessionStatus is a full snapshot of a session for the status endpoint.
type SessionStatus struct {
	SessionID    string             `json:"session_id"`
	Stage        Stage              `json:"stage"`
	Progress     int                `json:"progress"`
	Profile      UserProfile        `json:"profile"`
	Technical    *TechnicalData     `json:"technical,omitempty"`
	Analysis     *AnalysisResult    `json:"analysis,omitempty"`
	Calculations *CalculationResult `json:"calculations,omitempty"`
}
