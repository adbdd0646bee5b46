package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/metrics"
	"github.com/comunavision/backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrUserRole     = errors.New("rol no soportado")
)

// UserInput carries a new account.
type UserInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Name     string      `json:"nombre" binding:"required"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"rol"`
}

// UserPatch is an explicit whitelisted partial update; nil leaves the field
// unchanged.
type UserPatch struct {
	Name     *string      `json:"nombre"`
	Role     *models.Role `json:"rol"`
	Password *string      `json:"password"`
	Active   *bool        `json:"activo"`
}

// UserService manages accounts. Every mutation goes through the audit
// coordinator; accounts are deactivated, never removed, and deactivating one
// never touches the comuneros it created.
type UserService struct {
	db    *gorm.DB
	coord *audit.Coordinator
}

// NewUserService returns a UserService writing through db.
func NewUserService(db *gorm.DB, coord *audit.Coordinator) *UserService {
	return &UserService{db: db, coord: coord}
}

// List returns accounts with pagination.
func (s *UserService) List(skip, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = 20
	}
	var users []models.User
	err := s.db.Order("id asc").Offset(skip).Limit(limit).Find(&users).Error
	return users, err
}

// Get fetches one account by id.
func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create adds an account. Email uniqueness is the storage engine's call and
// surfaces as a ConflictError.
func (s *UserService) Create(actor *models.User, input UserInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleOperator
	}
	if role != models.RoleAdmin && role != models.RoleOperator {
		return nil, ErrUserRole
	}

	var created models.User
	_, err := s.coord.Apply(actor.ID, models.AuditCreate, models.EntityUsers, nil, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		created = models.User{
			Email:  strings.ToLower(strings.TrimSpace(input.Email)),
			Name:   strings.TrimSpace(input.Name),
			Role:   role,
			Active: true,
		}
		if err := created.SetPassword(input.Password); err != nil {
			return 0, nil, err
		}
		if err := tx.Create(&created).Error; err != nil {
			return 0, nil, err
		}
		return created.ID, snapshotUser(&created), nil
	})
	if err != nil {
		return nil, countConflict(err)
	}

	metrics.IncGovernedWrite(models.EntityUsers, string(models.AuditCreate))
	return &created, nil
}

// Update applies a partial patch and audits before/after.
func (s *UserService) Update(actor *models.User, id uint, patch UserPatch) (*models.User, error) {
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.Role != nil && *patch.Role != models.RoleAdmin && *patch.Role != models.RoleOperator {
		return nil, ErrUserRole
	}

	before := snapshotUser(user)

	_, err = s.coord.Apply(actor.ID, models.AuditEdit, models.EntityUsers, before, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		if patch.Name != nil {
			user.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}
		if patch.Active != nil {
			user.Active = *patch.Active
		}
		if patch.Password != nil && *patch.Password != "" {
			if err := user.SetPassword(*patch.Password); err != nil {
				return 0, nil, err
			}
		}
		if err := tx.Save(user).Error; err != nil {
			return 0, nil, err
		}
		return user.ID, snapshotUser(user), nil
	})
	if err != nil {
		return nil, countConflict(err)
	}

	metrics.IncGovernedWrite(models.EntityUsers, string(models.AuditEdit))
	return user, nil
}

// Deactivate soft-deletes an account.
func (s *UserService) Deactivate(actor *models.User, id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	before := snapshotUser(user)

	_, err = s.coord.Apply(actor.ID, models.AuditDelete, models.EntityUsers, before, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		user.Active = false
		if err := tx.Save(user).Error; err != nil {
			return 0, nil, err
		}
		return user.ID, snapshotUser(user), nil
	})
	if err != nil {
		return countConflict(err)
	}

	metrics.IncGovernedWrite(models.EntityUsers, string(models.AuditDelete))
	return nil
}

func snapshotUser(u *models.User) audit.Snapshot {
	// Never snapshot the password hash into the audit log.
	return audit.Snapshot{
		"id":         u.ID,
		"email":      u.Email,
		"nombre":     u.Name,
		"rol":        string(u.Role),
		"activo":     u.Active,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
