package service

import (
	"context"
	"time"

	"packtrail/internal/models"
	"packtrail/internal/repository"
	"packtrail/internal/validation"
)

// TripService handles trip CRUD with ownership enforcement.
type TripService struct {
	tripRepo repository.TripRepository
}

// TripInput carries the writable trip fields.
type TripInput struct {
	Name      string
	About     string
	Distance  float64
	StartDate *time.Time
	EndDate   *time.Time
	ImageURL  string
}

// NewTripService returns a new TripService.
func NewTripService(tripRepo repository.TripRepository) *TripService {
	return &TripService{tripRepo: tripRepo}
}

// ownedTrip loads a trip and verifies the viewer owns it.
func (s *TripService) ownedTrip(ctx context.Context, viewerID, tripID uint) (*models.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return trip, nil
}

// GetTrip returns a trip the viewer owns, with its bags loaded.
func (s *TripService) GetTrip(ctx context.Context, viewerID, tripID uint) (*models.Trip, error) {
	trip, err := s.tripRepo.GetTree(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return trip, nil
}

// ListTrips returns the viewer's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, viewerID uint) ([]models.Trip, error) {
	return s.tripRepo.ListByUser(ctx, viewerID)
}

// AddTrip creates a trip for the viewer.
func (s *TripService) AddTrip(ctx context.Context, viewerID uint, in TripInput) (*models.Trip, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Distance < 0 {
		return nil, models.NewValidationError("Distance cannot be negative")
	}

	trip := &models.Trip{
		UserID:    viewerID,
		Name:      in.Name,
		About:     in.About,
		Distance:  in.Distance,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		ImageURL:  in.ImageURL,
	}
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// UpdateTrip applies a full update to a trip the viewer owns.
func (s *TripService) UpdateTrip(ctx context.Context, viewerID, tripID uint, in TripInput) (*models.Trip, error) {
	trip, err := s.ownedTrip(ctx, viewerID, tripID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Distance < 0 {
		return nil, models.NewValidationError("Distance cannot be negative")
	}

	trip.Name = in.Name
	trip.About = in.About
	trip.Distance = in.Distance
	trip.StartDate = in.StartDate
	trip.EndDate = in.EndDate
	trip.ImageURL = in.ImageURL

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}
