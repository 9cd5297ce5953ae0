package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/images"
	"github.com/tripdiary/tripadmin/internal/markdown"
	"github.com/tripdiary/tripadmin/internal/model"
	"github.com/tripdiary/tripadmin/internal/repository"
)

var (
	ErrDestinationNameRequired = apperror.InvalidInput("English and Korean names are required")
	ErrImageRequired           = apperror.InvalidInput("at least one image is required")
	ErrInvalidCoordinates      = apperror.InvalidInput("latitude or longitude out of range")
)

// DestinationInput holds the editable fields of a tourist destination
type DestinationInput struct {
	NameEn       string
	NameKo       string
	Introduction string
	Latitude     float64
	Longitude    float64
}

// DestinationService keeps destination rows and their image files in step.
// New files are always written before the row that references them; old files
// are removed around the row write, and a left-over orphan file is tolerated.
type DestinationService struct {
	destinationRepository repository.DestinationRepository
	images                *images.Manager
	markdown              *markdown.Parser
}

func NewDestinationService(
	destinationRepository repository.DestinationRepository,
	images *images.Manager,
	markdown *markdown.Parser,
) *DestinationService {
	return &DestinationService{
		destinationRepository: destinationRepository,
		images:                images,
		markdown:              markdown,
	}
}

func (s *DestinationService) Add(input DestinationInput, uploads []images.Upload) (*model.Destination, error) {
	input = input.normalize()
	err := input.validate()
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, ErrImageRequired
	}

	batch, err := s.images.Stage(uploads)
	if err != nil {
		return nil, apperror.Unexpected("failed to process images", err)
	}

	destination := &model.Destination{
		NameEn:       input.NameEn,
		NameKo:       input.NameKo,
		Introduction: input.Introduction,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Images:       batch.URLs,
		CreatedAt:    time.Now(),
	}

	err = s.destinationRepository.Create(destination)
	if err != nil {
		s.images.Discard(batch)
		return nil, err
	}

	slog.Info("tourist destination added", "destination_id", destination.ID, "images", len(batch.URLs))
	return destination, nil
}

// Update replaces the fields and the whole image set of a destination.
// Old files are removed first; failing to delete one aborts the update.
func (s *DestinationService) Update(id int64, input DestinationInput, uploads []images.Upload) (*model.Destination, error) {
	input = input.normalize()
	err := input.validate()
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, ErrImageRequired
	}

	old, err := s.destinationRepository.Images(id)
	if err != nil {
		return nil, err
	}

	err = s.images.RemoveURLs(old)
	if err != nil {
		slog.Error("failed to remove old destination images", "destination_id", id, "error", err)
		return nil, apperror.Unexpected("failed to remove old images", err)
	}

	batch, err := s.images.Stage(uploads)
	if err != nil {
		return nil, apperror.Unexpected("failed to process images", err)
	}

	destination := &model.Destination{
		ID:           id,
		NameEn:       input.NameEn,
		NameKo:       input.NameKo,
		Introduction: input.Introduction,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Images:       batch.URLs,
	}

	err = s.destinationRepository.Update(destination)
	if err != nil {
		s.images.Discard(batch)
		return nil, err
	}

	slog.Info("tourist destination updated", "destination_id", id, "images", len(batch.URLs))
	return s.destinationRepository.ByID(id)
}

// Delete removes the row and returns it as it was. Image files are removed
// afterwards on a best-effort basis.
func (s *DestinationService) Delete(id int64) (map[string]any, error) {
	if id <= 0 {
		return nil, repository.ErrDestinationNotFound
	}

	deleted, err := s.destinationRepository.Delete(id)
	if err != nil {
		return nil, err
	}

	raw, _ := deleted["image"].(string)
	urls := model.DecodeImages(raw)
	deleted["image"] = urls

	err = s.images.RemoveURLs(urls)
	if err != nil {
		slog.Warn("failed to remove destination images", "destination_id", id, "error", err)
	}

	slog.Info("tourist destination deleted", "destination_id", id)
	return deleted, nil
}

func (s *DestinationService) Destinations() ([]*model.Destination, error) {
	return s.destinationRepository.Destinations()
}

// Destination loads one destination with its introduction rendered to HTML
func (s *DestinationService) Destination(id int64) (*model.Destination, error) {
	destination, err := s.destinationRepository.ByID(id)
	if err != nil {
		return nil, err
	}

	html, err := s.markdown.Render(destination.Introduction)
	if err != nil {
		slog.Warn("failed to render introduction", "destination_id", id, "error", err)
	} else {
		destination.IntroductionHTML = html
	}

	return destination, nil
}

func (in DestinationInput) normalize() DestinationInput {
	in.NameEn = strings.TrimSpace(in.NameEn)
	in.NameKo = strings.TrimSpace(in.NameKo)
	in.Introduction = strings.TrimSpace(in.Introduction)
	return in
}

func (in DestinationInput) validate() error {
	if in.NameEn == "" || in.NameKo == "" {
		return ErrDestinationNameRequired
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
