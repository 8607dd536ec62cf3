package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"localfeed/internal/domain/entity"
	"localfeed/internal/repository"
)

// RegisterInput represents the input parameters for registering a new source.
type RegisterInput struct {
	Name            string
	Kind            entity.SourceKind
	Endpoint        string
	APIKey          string
	Categories      []string
	LocationBias    string
	RequestsPerHour int
	Active          bool
}

// UpdateInput represents the input parameters for updating an existing source.
// Empty string fields, a nil Categories slice, a zero RequestsPerHour and a
// nil Active are left unchanged.
type UpdateInput struct {
	ID              int64
	Name            string
	Kind            entity.SourceKind
	Endpoint        string
	APIKey          string
	Categories      []string
	LocationBias    string
	RequestsPerHour int
	Active          *bool
}

// Report pairs a source with the result of validating it.
type Report struct {
	Source *entity.Source
	Report entity.ConfigReport
}

// Service provides source management use cases.
// Hosts is used to resolve the provider of external endpoints.
type Service struct {
	Repo  repository.SourceRepository
	Hosts entity.ProviderHosts
}

// List retrieves all sources from the repository.
func (s *Service) List(ctx context.Context) ([]*entity.Source, error) {
	sources, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Register validates and stores a new source. The provider is resolved
// from the kind and endpoint once, here, and stored with the source.
// Sources whose configuration report has errors are refused; warnings
// are returned to the caller alongside the stored source.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Source, entity.ConfigReport, error) {
	src := &entity.Source{
		Name:            strings.TrimSpace(in.Name),
		Kind:            in.Kind,
		Endpoint:        strings.TrimSpace(in.Endpoint),
		APIKey:          in.APIKey,
		Categories:      in.Categories,
		LocationBias:    in.LocationBias,
		RequestsPerHour: in.RequestsPerHour,
		Active:          in.Active,
	}
	src.Provider = entity.ResolveProvider(src.Kind, src.Endpoint, s.Hosts)

	report := src.ValidateConfig()
	if !report.Valid() {
		return nil, report, fmt.Errorf("%w: %w", ErrInvalidSourceConfig, report.Err())
	}

	existing, err := s.Repo.List(ctx)
	if err != nil {
		return nil, report, fmt.Errorf("list sources: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, src.Name) {
			return nil, report, ErrDuplicateSource
		}
	}

	if err := s.Repo.Create(ctx, src); err != nil {
		return nil, report, fmt.Errorf("create source: %w", err)
	}
	return src, report, nil
}

// Update modifies an existing source with the provided input and
// re-resolves its provider. The merged source must validate cleanly.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Source, entity.ConfigReport, error) {
	if in.ID <= 0 {
		return nil, entity.ConfigReport{}, &entity.ValidationError{Field: "id", Message: "must be positive"}
	}

	current, err := s.get(ctx, in.ID)
	if err != nil {
		return nil, entity.ConfigReport{}, err
	}
	src := *current

	if in.Name != "" {
		src.Name = strings.TrimSpace(in.Name)
	}
	if in.Kind != "" {
		src.Kind = in.Kind
	}
	if in.Endpoint != "" {
		src.Endpoint = strings.TrimSpace(in.Endpoint)
	}
	if in.APIKey != "" {
		src.APIKey = in.APIKey
	}
	if in.Categories != nil {
		src.Categories = in.Categories
	}
	if in.LocationBias != "" {
		src.LocationBias = in.LocationBias
	}
	if in.RequestsPerHour != 0 {
		src.RequestsPerHour = in.RequestsPerHour
	}
	if in.Active != nil {
		src.Active = *in.Active
	}
	src.Provider = entity.ResolveProvider(src.Kind, src.Endpoint, s.Hosts)

	report := src.ValidateConfig()
	if !report.Valid() {
		return nil, report, fmt.Errorf("%w: %w", ErrInvalidSourceConfig, report.Err())
	}

	if err := s.Repo.Update(ctx, &src); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, report, ErrSourceNotFound
		}
		return nil, report, fmt.Errorf("update source: %w", err)
	}
	return &src, report, nil
}

// Delete removes a source by its ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return &entity.ValidationError{Field: "id", Message: "must be positive"}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrSourceNotFound
		}
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// Validate returns the configuration report of a stored source.
func (s *Service) Validate(ctx context.Context, id int64) (entity.ConfigReport, error) {
	src, err := s.get(ctx, id)
	if err != nil {
		return entity.ConfigReport{}, err
	}
	return src.ValidateConfig(), nil
}

// ValidateAll returns a report for every registered source, active or not.
func (s *Service) ValidateAll(ctx context.Context) ([]Report, error) {
	sources, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]Report, 0, len(sources))
	for _, src := range sources {
		reports = append(reports, Report{Source: src, Report: src.ValidateConfig()})
	}
	return reports, nil
}

func (s *Service) get(ctx context.Context, id int64) (*entity.Source, error) {
	src, err := s.Repo.Get(ctx, id)
	if errors.Is(err, entity.ErrNotFound) || (err == nil && src == nil) {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}
