package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type locationRepository struct {
	db *database.DB
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepository{db: db}
}

func scanLocation(row pgx.Row, loc *location.AssignedLocation) error {
	return row.Scan(&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.AllowedRadiusMeters)
}

// GetAssignedByEmployeeID implements location.LocationRepository.
func (r *locationRepository) GetAssignedByEmployeeID(ctx context.Context, employeeID string, companyID string) (location.AssignedLocation, error) {
	if !isUUID(employeeID) {
		return location.AssignedLocation{}, location.ErrNoLocationAssigned
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT wl.id, wl.name, wl.latitude, wl.longitude, wl.allowed_radius_meters
		FROM employees e
		JOIN work_locations wl ON wl.id = e.location_id AND wl.company_id = e.company_id
		WHERE e.id = $1 AND e.company_id = $2 AND e.deleted_at IS NULL
	`

	var loc location.AssignedLocation
	if err := scanLocation(q.QueryRow(ctx, query, employeeID, companyID), &loc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.AssignedLocation{}, location.ErrNoLocationAssigned
		}
		return location.AssignedLocation{}, fmt.Errorf("failed to get assigned location: %w", err)
	}
	return loc, nil
}

// GetByID implements location.LocationRepository.
func (r *locationRepository) GetByID(ctx context.Context, id string, companyID string) (location.AssignedLocation, error) {
	if !isUUID(id) {
		return location.AssignedLocation{}, location.ErrLocationNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, allowed_radius_meters
		FROM work_locations
		WHERE id = $1 AND company_id = $2
	`

	var loc location.AssignedLocation
	if err := scanLocation(q.QueryRow(ctx, query, id, companyID), &loc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.AssignedLocation{}, location.ErrLocationNotFound
		}
		return location.AssignedLocation{}, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}
