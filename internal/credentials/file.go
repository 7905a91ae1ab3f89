package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const serversFile = "servers.json"

type serversDocument struct {
	Servers map[string]Server `json:"servers"`
}

// FileStore keeps server records in a JSON file under a data directory. The
// file is re-read on every lookup, so edits made by another process (or an
// operator) take effect on the next agent auth without a restart.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, serversFile)}, nil
}

func (s *FileStore) read() (*serversDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &serversDocument{Servers: map[string]Server{}}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc serversDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if doc.Servers == nil {
		doc.Servers = map[string]Server{}
	}
	return &doc, nil
}

func (s *FileStore) write(doc *serversDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) GetAPIKey(ctx context.Context, serverID string) (string, error) {
	server, err := s.GetServer(ctx, serverID)
	if err != nil {
		return "", err
	}
	if server.APIKey == "" {
		return "", ErrServerNotConfigured
	}
	return server.APIKey, nil
}

func (s *FileStore) GetServer(_ context.Context, serverID string) (*Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	server, ok := doc.Servers[serverID]
	if !ok {
		return nil, ErrServerNotConfigured
	}
	return &server, nil
}

func (s *FileStore) ListServers(_ context.Context) ([]Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	servers := make([]Server, 0, len(doc.Servers))
	for _, server := range doc.Servers {
		servers = append(servers, server)
	}
	return servers, nil
}

func (s *FileStore) UpsertServer(_ context.Context, server *Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Servers[server.ID] = *server
	return s.write(doc)
}

func (s *FileStore) DeleteServer(_ context.Context, serverID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Servers[serverID]; !ok {
		return false, nil
	}
	delete(doc.Servers, serverID)
	return true, s.write(doc)
}
