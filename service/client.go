package service

import (
	"fmt"
	"log/slog"

	"github.com/larryflorio/larrybot/repository"
)

// ClientService manages the clients tasks can be assigned to.
type ClientService struct {
	clients *repository.ClientRepository
}

func NewClientService(clients *repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients}
}

func (s *ClientService) Create(name string) Result {
	if name == "" {
		return fail(ErrValidation, "Client name cannot be empty")
	}
	if len(name) > 100 {
		return fail(ErrValidation, "Client name too long (max 100 characters)")
	}
	if _, err := s.clients.GetByName(name); err == nil {
		return fail(ErrConflict, fmt.Sprintf("Client %q already exists", name))
	} else if err != repository.ErrClientNotFound {
		return s.internal("create client", err)
	}
	client, err := s.clients.Create(name)
	if err != nil {
		return s.internal("create client", err)
	}
	return ok(map[string]any{"id": client.ID, "name": client.Name},
		fmt.Sprintf("Client %q created", name))
}

func (s *ClientService) List() Result {
	clients, err := s.clients.List()
	if err != nil {
		return s.internal("list clients", err)
	}
	dtos := make([]map[string]any, 0, len(clients))
	for _, c := range clients {
		dtos = append(dtos, map[string]any{"id": c.ID, "name": c.Name})
	}
	return ok(dtos, fmt.Sprintf("%d client(s)", len(dtos)))
}

func (s *ClientService) Delete(id uint) Result {
	if err := s.clients.Delete(id); err != nil {
		if err == repository.ErrClientNotFound {
			return fail(ErrNotFound, fmt.Sprintf("Client %d not found", id))
		}
		return s.internal("delete client", err)
	}
	return ok(nil, fmt.Sprintf("Client %d deleted", id))
}

func (s *ClientService) internal(op string, err error) Result {
	slog.Error("client service failure", "op", op, "err", err)
	return fail(ErrInternal, "Something went wrong, please try again")
}
