package dto

import "github.com/whitelisthub/whitelist-hub/internal/requests"

type CreateRequestRequest struct {
	DiscordID         string `json:"discordId" binding:"required"`
	DiscordUsername   string `json:"discordUsername" binding:"required"`
	MinecraftUsername string `json:"minecraftUsername"`
	ServerID          string `json:"serverId"`
}

type ReviewRequestRequest struct {
	Status            string `json:"status" binding:"required"`
	MinecraftUsername string `json:"minecraftUsername"`
	ReviewedBy        string `json:"reviewedBy"`
}

type ReviewRequestResponse struct {
	Request           requests.Request `json:"request"`
	WhitelistNotified bool             `json:"whitelistNotified"`
}
