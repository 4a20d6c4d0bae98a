package services

import (
	"context"
	"errors"
	"fmt"
	"parklopediaAPI/internal/family"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FamilyService struct {
	db *pgxpool.Pool
}

func NewFamilyService(db *pgxpool.Pool) *FamilyService {
	return &FamilyService{db: db}
}

func (s *FamilyService) CreateGroup(ctx context.Context, ownerID uuid.UUID, req *family.CreateGroupRequest) (*family.Group, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	g := &family.Group{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	INSERT INTO family_groups (id, owner_id, name, created_at)
	VALUES ($1, $2, $3, $4)
	`, g.ID, g.OwnerID, g.Name, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	// The owner is always a member of their own group.
	_, err = tx.Exec(ctx, `
	INSERT INTO family_members (id, group_id, user_id, role, joined_at)
	VALUES ($1, $2, $3, 'owner', $4)
	`, uuid.New(), g.ID, ownerID, g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	return g, nil
}

func (s *FamilyService) GetGroups(ctx context.Context, userID uuid.UUID) ([]*family.Group, error) {
	rows, err := s.db.Query(ctx, `
	SELECT g.id, g.owner_id, g.name, g.created_at
	FROM family_groups g
	JOIN family_members m ON m.group_id = g.id
	WHERE m.user_id = $1
	ORDER BY g.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	defer rows.Close()

	groups := []*family.Group{}
	for rows.Next() {
		g := &family.Group{}
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}

	return groups, nil
}

func (s *FamilyService) AddMember(ctx context.Context, ownerID, groupID uuid.UUID, req *family.AddMemberRequest) (*family.Member, error) {
	var actualOwner uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT owner_id FROM family_groups WHERE id = $1`, groupID).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("group not found")
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if actualOwner != ownerID {
		return nil, fmt.Errorf("only the group owner can add members")
	}

	var memberID uuid.UUID
	var fullName string
	err = s.db.QueryRow(ctx, `SELECT id, full_name FROM users WHERE clerk_id = $1`, req.MemberClerkID).Scan(&memberID, &fullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	role := req.Role
	if role == "" {
		role = "member"
	}

	m := &family.Member{
		ID:       uuid.New(),
		GroupID:  groupID,
		UserID:   memberID,
		FullName: fullName,
		Role:     role,
		JoinedAt: time.Now(),
	}

	tag, err := s.db.Exec(ctx, `
	INSERT INTO family_members (id, group_id, user_id, role, joined_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (group_id, user_id) DO NOTHING
	`, m.ID, m.GroupID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user is already a member")
	}

	return m, nil
}

func (s *FamilyService) GetMembers(ctx context.Context, userID, groupID uuid.UUID) ([]*family.Member, error) {
	var isMember bool
	err := s.db.QueryRow(ctx, `
	SELECT EXISTS(SELECT 1 FROM family_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, userID).Scan(&isMember)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !isMember {
		return nil, fmt.Errorf("group not found")
	}

	rows, err := s.db.Query(ctx, `
	SELECT m.id, m.group_id, m.user_id, u.full_name, m.role, m.joined_at
	FROM family_members m
	JOIN users u ON u.id = m.user_id
	WHERE m.group_id = $1
	ORDER BY m.joined_at ASC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := []*family.Member{}
	for rows.Next() {
		m := &family.Member{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.FullName, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, nil
}

func (s *FamilyService) RemoveMember(ctx context.Context, ownerID, groupID, memberUserID uuid.UUID) error {
	var actualOwner uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT owner_id FROM family_groups WHERE id = $1`, groupID).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("group not found")
		}
		return fmt.Errorf("failed to get group: %w", err)
	}
	if actualOwner != ownerID {
		return fmt.Errorf("only the group owner can remove members")
	}
	if memberUserID == ownerID {
		return fmt.Errorf("cannot remove the group owner")
	}

	tag, err := s.db.Exec(ctx, `
	DELETE FROM family_members WHERE group_id = $1 AND user_id = $2
	`, groupID, memberUserID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member not found")
	}
	return nil
}

// MemberUserIDs returns the user ids of everyone sharing a group with userID,
// excluding userID. Used for emergency fan-out.
func (s *FamilyService) MemberUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
	SELECT DISTINCT m2.user_id
	FROM family_members m1
	JOIN family_members m2 ON m1.group_id = m2.group_id
	WHERE m1.user_id = $1 AND m2.user_id != $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family members: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
