package dto

type WhitelistCommandRequest struct {
	ServerID string `json:"serverId"`
	Username string `json:"username" binding:"required"`
}

type WhitelistCommandResponse struct {
	Delivered bool `json:"delivered"`
}
