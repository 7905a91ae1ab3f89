// Package requests implements the whitelist request workflow: Discord users
// submit a request, an admin approves or rejects it, and approval triggers a
// whitelist_add command toward the tenant's server through the hub.
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

const requestsFile = "requests.json"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrPendingExists    = errors.New("a pending request already exists for this user")
	ErrInvalidUsername  = errors.New("invalid minecraft username")
	ErrUsernameRequired = errors.New("minecraft username is required when approving")
	ErrInvalidStatus    = errors.New("invalid request status")

	minecraftUsernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)
)

// Request is one whitelist request submitted by a Discord user.
type Request struct {
	ID                string     `json:"id"`
	DiscordID         string     `json:"discordId"`
	DiscordUsername   string     `json:"discordUsername"`
	MinecraftUsername string     `json:"minecraftUsername"`
	ServerID          string     `json:"serverId"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	ReviewedAt        *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy        string     `json:"reviewedBy,omitempty"`
}

// Notifier delivers whitelist commands to a tenant's live connection.
// Satisfied by *hub.Hub.
type Notifier interface {
	SendWhitelistAdd(serverID, username string) bool
}

// Service stores requests in a JSON file and drives the approval flow.
type Service struct {
	mu       sync.Mutex
	path     string
	notifier Notifier
}

func NewService(dataDir string, notifier Notifier) (*Service, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Service{
		path:     filepath.Join(dataDir, requestsFile),
		notifier: notifier,
	}, nil
}

func (s *Service) load() ([]Request, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Request{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	var reqs []Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return reqs, nil
}

func (s *Service) save(reqs []Request) error {
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// List returns all requests, oldest first.
func (s *Service) List() ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Create submits a new pending request. A Discord user may have at most one
// pending request at a time.
func (s *Service) Create(discordID, discordUsername, minecraftUsername, serverID string) (*Request, error) {
	if minecraftUsername != "" && !minecraftUsernameRe.MatchString(minecraftUsername) {
		return nil, ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, r := range reqs {
		if r.DiscordID == discordID && r.Status == StatusPending {
			return nil, ErrPendingExists
		}
	}

	req := Request{
		ID:                uuid.New().String(),
		DiscordID:         discordID,
		DiscordUsername:   discordUsername,
		MinecraftUsername: minecraftUsername,
		ServerID:          serverID,
		Status:            StatusPending,
		CreatedAt:         time.Now(),
	}
	reqs = append(reqs, req)

	if err := s.save(reqs); err != nil {
		return nil, err
	}

	slog.Info("Whitelist request created", "request_id", req.ID, "discord_id", discordID)
	return &req, nil
}

// Review approves or rejects a request. On approval the whitelist_add
// command is sent to the tenant's live connection; the returned notified
// flag is false when the server could not be reached. That is a degraded
// state, not a failure: the approval itself is recorded either way, and the
// caller is expected to surface the flag to the operator.
func (s *Service) Review(id, status, minecraftUsername, reviewedBy string) (*Request, bool, error) {
	if status != StatusApproved && status != StatusRejected {
		return nil, false, ErrInvalidStatus
	}
	if minecraftUsername != "" && !minecraftUsernameRe.MatchString(minecraftUsername) {
		return nil, false, ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.load()
	if err != nil {
		return nil, false, err
	}

	idx := -1
	for i := range reqs {
		if reqs[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false, ErrRequestNotFound
	}

	req := &reqs[idx]
	if minecraftUsername != "" {
		req.MinecraftUsername = minecraftUsername
	}
	if status == StatusApproved && req.MinecraftUsername == "" {
		return nil, false, ErrUsernameRequired
	}

	now := time.Now()
	req.Status = status
	req.ReviewedAt = &now
	if reviewedBy == "" {
		reviewedBy = "Staff"
	}
	req.ReviewedBy = reviewedBy

	if err := s.save(reqs); err != nil {
		return nil, false, err
	}

	notified := false
	if status == StatusApproved {
		notified = s.notifier.SendWhitelistAdd(req.ServerID, req.MinecraftUsername)
		if !notified {
			slog.Warn("Request approved but server could not be notified",
				"request_id", req.ID, "server_id", req.ServerID)
		}
	}

	out := *req
	return &out, notified, nil
}

// Delete removes a request. Returns false if no request had the given id.
func (s *Service) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqs, err := s.load()
	if err != nil {
		return false, err
	}

	filtered := reqs[:0]
	found := false
	for _, r := range reqs {
		if r.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, r)
	}
	if !found {
		return false, nil
	}
	return true, s.save(filtered)
}
