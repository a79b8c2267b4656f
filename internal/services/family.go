package services

import (
	"context"
	"strings"
	"time"

	"github.com/giftnest-dev/giftnest/internal/apperr"
	"github.com/giftnest-dev/giftnest/internal/models"
	"github.com/giftnest-dev/giftnest/internal/tokens"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxFamilyNameLen = 120

// FamilyService creates families, admits members by invite code, and rotates
// codes. Membership is unique per user: creating or joining a family moves
// the caller out of any prior one.
type FamilyService struct {
	db  *gorm.DB
	log *logrus.Logger
}

// Member is one row of a family roster.
type Member struct {
	UserID   uint      `json:"user_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateFamily inserts a new family with a fresh invite code and makes the
// caller its admin. Suffix generation retries against the invite_code
// uniqueness constraint.
func (s *FamilyService) CreateFamily(ctx context.Context, callerID uint, name string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("family name is required")
	}
	if len(name) > maxFamilyNameLen {
		return nil, apperr.Validation("family name is too long")
	}

	// Each attempt is its own transaction: a duplicate invite code aborts
	// the whole transaction, so the retry has to restart it with a fresh
	// suffix rather than reuse the aborted one.
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		family := models.Family{Name: name, InviteCode: tokens.InviteCode(name)}

		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&family).Error; err != nil {
				return err
			}
			return s.upsertMembership(tx, callerID, family.ID, models.RoleAdmin)
		})
		if lastErr == nil {
			s.log.WithFields(logrus.Fields{
				"family_id": family.ID,
				"user_id":   callerID,
			}).Info("family created")
			return &family, nil
		}
		if !isDuplicate(lastErr) {
			if apperr.KindOf(lastErr) != apperr.KindUnexpected {
				return nil, lastErr
			}
			return nil, apperr.Unexpected("failed to create family", lastErr)
		}
	}

	return nil, apperr.Unexpected("could not generate a unique invite code", lastErr)
}

// JoinFamily admits the caller to the family matching code. The code is
// normalized before lookup; re-joining the same family is a no-op.
func (s *FamilyService) JoinFamily(ctx context.Context, callerID uint, code string) (*models.Family, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperr.Validation("invite code is required")
	}

	var family models.Family

	err := s.db.WithContext(ctx).
		Where("upper(trim(invite_code)) = ?", code).
		First(&family).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("invalid invite code")
		}
		return nil, apperr.Unexpected("failed to look up invite code", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.upsertMembership(tx, callerID, family.ID, models.RoleMember)
	})
	if err != nil {
		return nil, err
	}

	return &family, nil
}

// upsertMembership points the caller's single membership row at familyID,
// creating it when absent. A pre-read makes the family switch observable in
// the logs; the unique index on user_id makes it safe.
func (s *FamilyService) upsertMembership(tx *gorm.DB, userID, familyID uint, role string) error {
	var prior models.FamilyMembership
	priorErr := tx.Where("user_id = ?", userID).First(&prior).Error
	if priorErr != nil && !isNotFound(priorErr) {
		return apperr.Unexpected("failed to read membership", priorErr)
	}

	if priorErr == nil && prior.FamilyID == familyID {
		return nil
	}

	membership := models.FamilyMembership{UserID: userID, FamilyID: familyID, Role: role}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"family_id", "role"}),
	}).Create(&membership).Error
	if err != nil {
		return apperr.Unexpected("failed to upsert membership", err)
	}

	if priorErr == nil {
		s.log.WithFields(logrus.Fields{
			"user_id":     userID,
			"from_family": prior.FamilyID,
			"to_family":   familyID,
		}).Warn("membership moved to another family")
	}

	return nil
}

// RotateInviteCode replaces the family's invite code with a fresh one,
// retrying a bounded number of times against the uniqueness constraint.
func (s *FamilyService) RotateInviteCode(ctx context.Context, familyID uint) (*models.Family, error) {
	var family models.Family

	if err := s.db.WithContext(ctx).First(&family, familyID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("family not found")
		}
		return nil, apperr.Unexpected("failed to load family", err)
	}

	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := tokens.InviteCode(family.Name)
		lastErr = s.db.WithContext(ctx).
			Model(&family).
			Update("invite_code", code).Error
		if lastErr == nil {
			family.InviteCode = code
			s.log.WithField("family_id", family.ID).Info("invite code rotated")
			return &family, nil
		}
		if !isDuplicate(lastErr) {
			return nil, apperr.Unexpected("failed to rotate invite code", lastErr)
		}
	}

	return nil, apperr.Unexpected("could not generate a unique invite code", lastErr)
}

// ListMembers returns the family roster ordered by join time. Older schemas
// did not track the membership timestamp, so ordering falls back to the
// user's creation time.
func (s *FamilyService) ListMembers(ctx context.Context, familyID uint) ([]Member, error) {
	var members []Member

	err := s.db.WithContext(ctx).
		Table("family_memberships").
		Joins("JOIN users ON users.id = family_memberships.user_id").
		Where("family_memberships.family_id = ?", familyID).
		Order("COALESCE(family_memberships.created_at, users.created_at) ASC").
		Select("users.id AS user_id",
			"users.name AS name",
			"family_memberships.role AS role",
			"COALESCE(family_memberships.created_at, users.created_at) AS joined_at").
		Scan(&members).Error
	if err != nil {
		return nil, apperr.Unexpected("failed to list members", err)
	}

	return members, nil
}

// CallerFamily returns the caller's family, or nil when they have none.
func (s *FamilyService) CallerFamily(ctx context.Context, callerID uint) (*models.Family, error) {
	var membership models.FamilyMembership

	err := s.db.WithContext(ctx).Where("user_id = ?", callerID).First(&membership).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, apperr.Unexpected("failed to read membership", err)
	}

	var family models.Family
	if err := s.db.WithContext(ctx).First(&family, membership.FamilyID).Error; err != nil {
		return nil, apperr.Unexpected("failed to load family", err)
	}

	return &family, nil
}
