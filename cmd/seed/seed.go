package main

import (
	"context"
	"errors"
	"fmt"

	"cajachica/internal/model"
	"cajachica/internal/repository"
	"cajachica/internal/service"

	"gorm.io/gorm"
)

type roleSeed struct {
	name        model.RoleName
	displayName string
	description string
}

var roleSeeds = []roleSeed{
	{model.RoleSuperAdmin, "Administrador del Sistema", "Acceso completo al sistema y gestión de usuarios/roles."},
	{model.RoleGeneralManager, "Gerente General", "Aprueba fondos de efectivo y variaciones."},
	{model.RoleAdminHead, "Jefe de Administración", "Revisa, evalúa, supervisa y declara gastos en SAP."},
	{model.RoleAreaHead, "Jefe de Área", "Solicita y liquida fondos de efectivo, y valida gastos de colaboradores."},
	{model.RoleCollaborator, "Colaborador", "Declara gastos y realiza acciones básicas."},
}

var areaSeeds = []model.Area{
	{Name: "Administración y Contabilidad", Description: "Área encargada de la gestión administrativa."},
	{Name: "Estrategia y Alianzas", Description: "Área encargada de la gestión de convenios."},
	{Name: "Gestión y Proyección Social", Description: "Área que gestiona los programas de ayuda y distribución."},
	{Name: "Voluntariado", Description: "Área encargada de la gestión de voluntarios."},
	{Name: "Logística", Description: "Área encargada de la cadena de suministro y transporte."},
	{Name: "Tecnología de la Información", Description: "Área encargada de los sistemas y la infraestructura tecnológica."},
	{Name: "Calidad y Procesos", Description: "Área encargada de los procesos de la organización."},
	{Name: "Gerencia General", Description: "Área encargada de tomar decisiones relevantes para la organización."},
}

type userSeed struct {
	name, lastName, email, password, position string
	role                                      model.RoleName
	area                                      string
	leadEmail                                 string // jefe_area this user reports to
}

// Leads are listed before the users that report to them
var userSeeds = []userSeed{
	{"Super", "Admin", "admin@bap.com", "$clave.123", "Administrador de Sistema", model.RoleSuperAdmin, "Tecnología de la Información", ""},
	{"Juan", "Perez", "juan.perez@bap.com", "123456", "Jefe de Área", model.RoleAreaHead, "Gestión y Proyección Social", ""},
	{"Maria", "Gomez", "maria.gomez@bap.com", "123456", "Jefe de Administración", model.RoleAdminHead, "Administración y Contabilidad", ""},
	{"Carlos", "Lopez", "carlos.lopez@bap.com", "123456", "Gerente General", model.RoleGeneralManager, "Gerencia General", ""},
	{"Ana", "Diaz", "ana.diaz@bap.com", "123456", "Colaborador", model.RoleCollaborator, "Gestión y Proyección Social", "juan.perez@bap.com"},
}

type summary struct {
	Roles        int
	AreasCreated int
	UsersCreated int
	Users        []*model.User
}

type seeder struct {
	roles repository.RoleRepository
	areas repository.AreaRepository
	users repository.UserRepository
}

func newSeeder(db *gorm.DB) *seeder {
	return &seeder{
		roles: repository.NewRoleRepository(db),
		areas: repository.NewAreaRepository(db),
		users: repository.NewUserRepository(db),
	}
}

// Run inserts the catalogue and demo accounts. Existing rows are kept, so
// running it twice is harmless.
func (s *seeder) Run(ctx context.Context) (*summary, error) {
	sum := &summary{}

	for _, r := range roleSeeds {
		role := &model.Role{Name: r.name, DisplayName: r.displayName, Description: r.description, IsSystem: true}
		if err := s.roles.Upsert(ctx, role); err != nil {
			return nil, fmt.Errorf("seed role %s: %w", r.name, err)
		}
		sum.Roles++
	}

	areaIDs := make(map[string]*model.Area, len(areaSeeds))
	for i := range areaSeeds {
		seed := areaSeeds[i]
		area, err := s.areas.FindByName(ctx, seed.Name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			area = &seed
			if err = s.areas.Create(ctx, area); err == nil {
				sum.AreasCreated++
			}
		}
		if err != nil {
			return nil, fmt.Errorf("seed area %s: %w", seed.Name, err)
		}
		areaIDs[seed.Name] = area
	}

	byEmail := make(map[string]*model.User, len(userSeeds))
	for _, u := range userSeeds {
		user, err := s.users.GetByEmail(ctx, u.email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user, err = s.createUser(ctx, u, areaIDs, byEmail)
			if err == nil {
				sum.UsersCreated++
			}
		}
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.email, err)
		}
		byEmail[u.email] = user
		sum.Users = append(sum.Users, user)
	}
	return sum, nil
}

func (s *seeder) createUser(ctx context.Context, u userSeed, areas map[string]*model.Area, known map[string]*model.User) (*model.User, error) {
	hashed, err := service.HashPassword(u.password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     u.name,
		LastName: u.lastName,
		Email:    u.email,
		Password: hashed,
		Role:     u.role,
		Position: u.position,
	}
	if area, ok := areas[u.area]; ok {
		user.AreaID = &area.ID
	}
	if u.leadEmail != "" {
		lead, ok := known[u.leadEmail]
		if !ok {
			return nil, fmt.Errorf("area lead %s must be seeded first", u.leadEmail)
		}
		user.AreaLeadID = &lead.ID
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
