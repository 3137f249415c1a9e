package app

import (
	"context"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const technicianEmail = "tecnico@protechlab.com"

// checkSuper makes sure the configured administrator exists and keeps the admin role
func (a *Application) checkSuper() {
	ctx := context.Background()
	cfg := a.appConfig.Web
	users := repository.NewGormUserRepository(a.gormDB)

	user, err := users.GetByEmail(ctx, cfg.AdminEmail)
	switch {
	case domain.IsNotFound(err):
		_, err := users.CreateWithPassword(ctx, &domain.SysUser{
			Name:  "Administrador",
			Email: cfg.AdminEmail,
			Role:  domain.RoleAdmin,
		}, cfg.AdminPassword)
		if err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
			return
		}
		zap.L().Info("initialized default admin account", zap.String("email", cfg.AdminEmail))
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	if user.Role == domain.RoleAdmin {
		return
	}
	if err := users.Update(ctx, user.ID, map[string]interface{}{"role": domain.RoleAdmin}); err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}
	zap.L().Warn("repaired default admin account", zap.String("email", cfg.AdminEmail), zap.String("role", string(user.Role)))
}

// checkTechnician seeds a bench account sharing the admin's initial password
func (a *Application) checkTechnician() {
	ctx := context.Background()
	users := repository.NewGormUserRepository(a.gormDB)
	if _, err := users.GetByEmail(ctx, technicianEmail); !domain.IsNotFound(err) {
		if err != nil {
			zap.L().Error("failed to query technician account", zap.Error(err))
		}
		return
	}
	_, err := users.CreateWithPassword(ctx, &domain.SysUser{
		Name:  "Técnico",
		Email: technicianEmail,
		Role:  domain.RoleTechnician,
	}, a.appConfig.Web.AdminPassword)
	if err != nil {
		zap.L().Error("failed to create default technician", zap.Error(err))
		return
	}
	zap.L().Info("initialized default technician account", zap.String("email", technicianEmail))
}

var defaultServices = []domain.LabService{
	{Name: "Coroa em zircônia", Description: "Coroa unitária monolítica", Price: decimal.RequireFromString("350.00")},
	{Name: "Coroa em dissilicato de lítio", Description: "Coroa estética prensada", Price: decimal.RequireFromString("420.00")},
	{Name: "Faceta", Description: "Faceta em cerâmica", Price: decimal.RequireFromString("380.00")},
	{Name: "Provisório impresso", Description: "Provisório em resina 3D", Price: decimal.RequireFromString("90.00")},
	{Name: "Prótese total", Description: "Prótese total com dentes de estoque", Price: decimal.RequireFromString("650.00")},
}

// checkServices seeds the catalogue, skipping names that already exist
func (a *Application) checkServices() {
	ctx := context.Background()
	services := repository.NewGormServiceRepository(a.gormDB)
	for _, s := range defaultServices {
		_, err := services.ByName(ctx, s.Name)
		if err == nil {
			continue
		}
		if !domain.IsNotFound(err) {
			zap.L().Error("failed to query service", zap.String("name", s.Name), zap.Error(err))
			return
		}
		s.Active = true
		if _, err := services.Create(ctx, &s); err != nil {
			zap.L().Error("failed to create default service", zap.String("name", s.Name), zap.Error(err))
			continue
		}
		zap.L().Info("initialized default service", zap.String("name", s.Name))
	}
}
