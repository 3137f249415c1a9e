package repository

import (
	"context"
	"strings"
	"time"

	"github.com/protechlab/labdesk/internal/domain"
	"github.com/protechlab/labdesk/pkg/common"
	"gorm.io/gorm"
)

type UserFilter struct {
	Name     string
	Role     domain.UserRole
	Page     int
	PageSize int
}

// GormUserRepository staff accounts
type GormUserRepository struct {
	*Base[domain.SysUser]
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{Base: NewBase[domain.SysUser](db, "user")}
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.SysUser, error) {
	var user domain.SysUser
	err := r.DB(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).Take(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateWithPassword stores the user with a bcrypt hash of password
func (r *GormUserRepository) CreateWithPassword(ctx context.Context, user *domain.SysUser, password string) (int64, error) {
	if !user.Role.Valid() {
		return 0, domain.ValidationError("invalid role %q", user.Role)
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.checkEmailFree(ctx, user.Email, 0); err != nil {
		return 0, err
	}
	hash, err := common.HashPassword(password)
	if err != nil {
		return 0, domain.ValidationError("password is required")
	}
	user.PasswordHash = hash
	if err := r.Insert(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Update hashes a "password" entry and checks email uniqueness.
func (r *GormUserRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if password, ok := fields["password"].(string); ok {
		delete(fields, "password")
		hash, err := common.HashPassword(password)
		if err != nil {
			return domain.ValidationError("password is required")
		}
		fields["password_hash"] = hash
	}
	if email, ok := fields["email"].(string); ok {
		email = strings.ToLower(strings.TrimSpace(email))
		if err := r.checkEmailFree(ctx, email, id); err != nil {
			return err
		}
		fields["email"] = email
	}
	return r.Base.Update(ctx, id, fields)
}

// VerifyCredentials returns the user when email and password match
func (r *GormUserRepository) VerifyCredentials(ctx context.Context, email, password string) (*domain.SysUser, error) {
	user, err := r.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.UnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if !common.CheckPassword(user.PasswordHash, password) {
		return nil, domain.UnauthorizedError("invalid email or password")
	}
	return user, nil
}

func (r *GormUserRepository) TouchLastAccess(ctx context.Context, id int64, at time.Time) error {
	return translate(r.DB(ctx).Model(&domain.SysUser{}).Where("id = ?", id).Update("last_access", at).Error)
}

func (r *GormUserRepository) Search(ctx context.Context, f UserFilter) ([]domain.SysUser, int64, error) {
	c := Criteria{
		Contains: map[string]string{"name": f.Name},
		Order:    "name, id",
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if f.Role != "" {
		c.Eq = map[string]interface{}{"role": f.Role}
	}
	return r.ListFiltered(ctx, c)
}

func (r *GormUserRepository) checkEmailFree(ctx context.Context, email string, exceptID int64) error {
	if email == "" {
		return domain.ValidationError("email is required")
	}
	var count int64
	if err := r.DB(ctx).Model(&domain.SysUser{}).Where("email = ? AND id <> ?", email, exceptID).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count > 0 {
		return domain.ValidationError("email %s is already registered", email)
	}
	return nil
}
