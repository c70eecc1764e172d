package services

import (
	"context"
	"fmt"
	"time"

	"habitlink-backend/internal/models"

	"github.com/google/uuid"
)

// CommunityService manages community membership. Joining a community
// auto-provisions the community's habit for the new member through the
// habit service.
type CommunityService struct {
	communityRepo CommunityStore
	userRepo      UserStore
	habitService  *HabitService
}

// NewCommunityService creates a new community service
func NewCommunityService(communityRepo CommunityStore, userRepo UserStore, habitService *HabitService) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
		userRepo:      userRepo,
		habitService:  habitService,
	}
}

// Create creates a community with the creator as its first member.
// Community names are not unique; duplicates are found via List.
func (s *CommunityService) Create(ctx context.Context, name, description, habitName, creatorID string) (*models.Community, error) {
	if name == "" {
		return nil, fmt.Errorf("community name is required")
	}
	if habitName == "" {
		return nil, fmt.Errorf("habit name is required")
	}

	if _, err := s.userRepo.GetByID(ctx, creatorID); err != nil {
		return nil, err
	}

	community := &models.Community{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		HabitName:   habitName,
		CreatorID:   creatorID,
		MemberIDs:   []string{creatorID},
		CreatedAt:   time.Now(),
	}

	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, fmt.Errorf("failed to create community: %w", err)
	}
	return community, nil
}

// Join adds a user to a community's member set and then provisions the
// community's habit for them. The membership write commits first; a
// provisioning failure surfaces to the caller but the membership is not
// rolled back.
func (s *CommunityService) Join(ctx context.Context, communityID, userID string) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	// Older rows carry blank member entries; drop them before the
	// membership check so a stale blank slot never shadows a real one.
	community.MemberIDs = normalizeMembers(community.MemberIDs)
	if contains(community.MemberIDs, userID) {
		return nil, models.ErrAlreadyMember
	}

	community.MemberIDs = append(community.MemberIDs, userID)
	if err := s.communityRepo.Save(ctx, community); err != nil {
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	if _, _, err := s.habitService.EnsureOwned(ctx, userID, community.HabitName); err != nil {
		return nil, fmt.Errorf("joined community but failed to provision habit: %w", err)
	}

	return community, nil
}

// Leave removes a user from a community's member set. Removing a
// non-member is a no-op; the auto-provisioned habit stays with the user.
// The creator can leave the member set like anyone else; the community
// itself only goes away through Delete.
func (s *CommunityService) Leave(ctx context.Context, communityID, userID string) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	community.MemberIDs = removeID(normalizeMembers(community.MemberIDs), userID)
	if err := s.communityRepo.Save(ctx, community); err != nil {
		return nil, fmt.Errorf("failed to save community: %w", err)
	}
	return community, nil
}

// Delete permanently removes a community. Only the creator may delete;
// member habits and posts are not touched.
func (s *CommunityService) Delete(ctx context.Context, communityID, requesterID string) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID != requesterID {
		return fmt.Errorf("only the creator can delete the community: %w", models.ErrForbidden)
	}

	if err := s.communityRepo.Delete(ctx, communityID); err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	return nil
}

// List retrieves communities filtered by a case-insensitive name
// substring; an empty filter returns all.
func (s *CommunityService) List(ctx context.Context, nameFilter string) ([]*models.Community, error) {
	return s.communityRepo.List(ctx, nameFilter)
}

// normalizeMembers discards blank member entries left behind by older data.
func normalizeMembers(memberIDs []string) []string {
	out := memberIDs[:0]
	for _, id := range memberIDs {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
