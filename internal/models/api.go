package models

type GenerateRequest struct {
	Prompt   string   `json:"prompt" binding:"required"`
	Category string   `json:"category"`
	Models   []string `json:"models" binding:"required"`
}

type GenerateResponse struct {
	RecordID     string            `json:"record_id"`
	Responses    map[string]string `json:"responses"`
	FailedModels []string          `json:"failed_models,omitempty"`
	ResponseTime int               `json:"response_time_ms"`
}

type SaveRequest struct {
	Prompt    string            `json:"prompt" binding:"required"`
	Category  string            `json:"category"`
	Models    []string          `json:"models" binding:"required"`
	Responses map[string]string `json:"responses"`
}

type HistoryPageResponse struct {
	Items      []QueryRecord `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
