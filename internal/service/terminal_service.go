package service

import (
	"errors"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"

	"github.com/google/uuid"
)

type TerminalService struct {
	repo repository.TerminalRepository
}

func NewTerminalService(repo repository.TerminalRepository) *TerminalService {
	return &TerminalService{
		repo: repo,
	}
}

func (s *TerminalService) Register(userID string, req *domain.RegisterTerminalRequest) (*domain.TerminalResponse, error) {
	now := time.Now()
	terminal := &domain.Terminal{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       req.Name,
		Location:   req.Location,
		AppVersion: req.AppVersion,
		LastSeen:   now,
		CreatedAt:  now,
	}

	if err := s.repo.Create(terminal); err != nil {
		return nil, err
	}

	return terminalResponse(terminal), nil
}

func (s *TerminalService) List(userID string) ([]*domain.TerminalResponse, error) {
	terminals, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	var responses []*domain.TerminalResponse
	for _, t := range terminals {
		responses = append(responses, terminalResponse(t))
	}
	return responses, nil
}

func (s *TerminalService) Revoke(userID, terminalID string) error {
	terminal, err := s.repo.FindByID(terminalID)
	if err != nil {
		return err
	}

	if terminal.UserID != userID {
		return errors.New("unauthorized: terminal does not belong to user")
	}

	return s.repo.Revoke(terminalID)
}

func (s *TerminalService) UpdateLastSeen(terminalID string) error {
	return s.repo.UpdateLastSeen(terminalID)
}

func terminalResponse(t *domain.Terminal) *domain.TerminalResponse {
	return &domain.TerminalResponse{
		ID:        t.ID,
		Name:      t.Name,
		Location:  t.Location,
		LastSeen:  t.LastSeen,
		IsRevoked: t.IsRevoked,
	}
}
