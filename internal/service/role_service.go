package service

import (
	"context"

	"cajachica/internal/repository"
)

type RoleResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Tier        string `json:"tier"`
	IsSystem    bool   `json:"is_system"`
}

// RoleService exposes the role catalogue. Roles are fixed and only seeded.
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
}

type roleService struct {
	roles repository.RoleRepository
}

func NewRoleService(roles repository.RoleRepository) RoleService {
	return &roleService{roles: roles}
}

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, internalErr("failed to list roles", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, RoleResponse{
			Name:        string(r.Name),
			DisplayName: r.DisplayName,
			Description: r.Description,
			Tier:        r.Name.Tier().String(),
			IsSystem:    r.IsSystem,
		})
	}
	return res, nil
}
