package service

import (
	"fmt"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"
	"pos-sync-server/pkg/password"

	"github.com/google/uuid"
)

// minAdminRole is the minimum role able to perform any user-administration
// operation at all.
const minAdminRole = domain.RoleManager

// AdminService gates every sensitive user mutation on the acting user's
// role. Each call is a stateless single-shot decision: resolve the acting
// role, compare ranks, then apply the mutation through the user store.
// Expected denials come back as *PolicyError values, never panics.
type AdminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) *AdminService {
	return &AdminService{
		userRepo: userRepo,
	}
}

// AssignRole changes a target user's role. An actor can only grant roles
// strictly beneath their own rank, and can only touch targets strictly
// beneath their own rank; this blocks both privilege escalation and
// peers/superiors being managed by an equal- or lower-ranked actor.
func (s *AdminService) AssignRole(targetUserID string, newRole domain.Role, actingUserID string) (*domain.User, error) {
	acting, err := s.actingUser(actingUserID)
	if err != nil {
		return nil, err
	}

	if acting.Role.Below(minAdminRole) {
		return nil, denial(DenialInsufficientPermissions, "Insufficient permissions")
	}

	if newRole.Rank() >= acting.Role.Rank() {
		return nil, denial(DenialPrivilegeEscalation, "Cannot assign roles equal to or higher than your own")
	}

	target, err := s.userRepo.FindByID(targetUserID)
	if err != nil {
		return nil, denial(DenialLookupFailed, fmt.Sprintf("failed to resolve target user: %v", err))
	}

	if target.Role.Rank() >= acting.Role.Rank() {
		return nil, denial(DenialPeerProtection, "Cannot manage users of equal or higher role level")
	}

	if err := s.userRepo.UpdateRole(targetUserID, newRole); err != nil {
		return nil, denial(DenialStoreFailed, err.Error())
	}

	target.Role = newRole
	target.UpdatedAt = time.Now()
	target.Password = ""
	return target, nil
}

// GetUsers lists all users. Manager rank or above required.
func (s *AdminService) GetUsers(actingUserID string) ([]*domain.User, error) {
	acting, err := s.actingUser(actingUserID)
	if err != nil {
		return nil, err
	}

	if acting.Role.Below(minAdminRole) {
		return nil, denial(DenialInsufficientPermissions, "Insufficient permissions")
	}

	users, err := s.userRepo.List()
	if err != nil {
		return nil, denial(DenialStoreFailed, err.Error())
	}

	for _, user := range users {
		user.Password = ""
	}
	return users, nil
}

// CreateUser creates a staff account with the requested role. The desired
// role must rank strictly below the acting user's.
func (s *AdminService) CreateUser(req *domain.CreateUserRequest, actingUserID string) (*domain.User, error) {
	acting, err := s.actingUser(actingUserID)
	if err != nil {
		return nil, err
	}

	if acting.Role.Below(minAdminRole) {
		return nil, denial(DenialInsufficientPermissions, "Insufficient permissions")
	}

	if req.Role.Rank() >= acting.Role.Rank() {
		return nil, denial(DenialPrivilegeEscalation, "Cannot create users with equal or higher role level")
	}

	emailExists, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return nil, denial(DenialStoreFailed, err.Error())
	}
	if emailExists {
		return nil, denial(DenialStoreFailed, "email already registered")
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, denial(DenialStoreFailed, err.Error())
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, denial(DenialStoreFailed, err.Error())
	}

	user.Password = ""
	return user, nil
}

// ToggleUserStatus activates or deactivates a target user. Targets of equal
// or higher rank are protected.
func (s *AdminService) ToggleUserStatus(targetUserID string, active bool, actingUserID string) (*domain.User, error) {
	acting, err := s.actingUser(actingUserID)
	if err != nil {
		return nil, err
	}

	if acting.Role.Below(minAdminRole) {
		return nil, denial(DenialInsufficientPermissions, "Insufficient permissions")
	}

	target, err := s.userRepo.FindByID(targetUserID)
	if err != nil {
		return nil, denial(DenialLookupFailed, fmt.Sprintf("failed to resolve target user: %v", err))
	}

	if target.Role.Rank() >= acting.Role.Rank() {
		return nil, denial(DenialPeerProtection, "Insufficient permissions")
	}

	if err := s.userRepo.SetActive(targetUserID, active); err != nil {
		return nil, denial(DenialStoreFailed, err.Error())
	}

	target.IsActive = active
	target.UpdatedAt = time.Now()
	target.Password = ""
	return target, nil
}

func (s *AdminService) actingUser(actingUserID string) (*domain.User, error) {
	acting, err := s.userRepo.FindByID(actingUserID)
	if err != nil {
		return nil, denial(DenialLookupFailed, fmt.Sprintf("failed to resolve acting user: %v", err))
	}
	return acting, nil
}
