package db

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"floodaura/internal/types"
)

// FloodEventRepository provides data access for the flood_events table.
type FloodEventRepository struct {
	db DBTX
}

// NewFloodEventRepository creates a new FloodEventRepository backed by the
// given database connection (pool or transaction).
func NewFloodEventRepository(db DBTX) *FloodEventRepository {
	return &FloodEventRepository{db: db}
}

// eventColumns defines the standard set of columns selected for flood event
// queries. Used consistently across all query methods to avoid column drift.
const eventColumns = `e.id, e.location_name, e.latitude, e.longitude,
	e.risk_score, e.severity, e.rainfall_mm, e.elevation_m,
	e.description, e.timestamp`

// scanEvent scans a single flood event row. The columns must match the order
// defined in eventColumns.
func scanEvent(row pgx.Row) (*types.FloodEvent, error) {
	var ev types.FloodEvent
	var description *string

	err := row.Scan(
		&ev.ID,
		&ev.LocationName,
		&ev.Latitude,
		&ev.Longitude,
		&ev.RiskScore,
		&ev.Severity,
		&ev.RainfallMM,
		&ev.ElevationM,
		&description,
		&ev.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		ev.Description = *description
	}
	return &ev, nil
}

func collectEvents(rows pgx.Rows) ([]types.FloodEvent, error) {
	defer rows.Close()

	var events []types.FloodEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Insert stores a new flood event. The caller must set the ID (prefixed UUID,
// e.g. "evt_...") and a non-zero timestamp before calling.
func (r *FloodEventRepository) Insert(ctx context.Context, ev *types.FloodEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO flood_events (id, location_name, latitude, longitude,
		 risk_score, severity, rainfall_mm, elevation_m, description, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ev.ID,
		ev.LocationName,
		ev.Latitude,
		ev.Longitude,
		ev.RiskScore,
		ev.Severity,
		ev.RainfallMM,
		ev.ElevationM,
		nilIfEmpty(ev.Description),
		ev.Timestamp,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert flood event", err)
	}
	return nil
}

// ListRecent returns events recorded after cutoff, most severe first. An
// empty severity matches all grades; limit caps the result size.
func (r *FloodEventRepository) ListRecent(ctx context.Context, cutoff time.Time, severity types.Severity, limit int) ([]types.FloodEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM flood_events e
		 WHERE e.timestamp >= $1
		   AND ($2 = '' OR e.severity = $2)
		 ORDER BY e.risk_score DESC, e.timestamp DESC
		 LIMIT $3`,
		cutoff, string(severity), limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list recent flood events", err)
	}

	events, err := collectEvents(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan flood events", err)
	}
	return events, nil
}

// ListNearby returns events after cutoff within radiusKm of loc. A bounding
// box on the indexed lat/lon columns does the coarse cut in SQL; the exact
// great-circle distance is checked in Go because the table has no PostGIS
// geometry column.
func (r *FloodEventRepository) ListNearby(ctx context.Context, loc types.Location, radiusKm float64, cutoff time.Time) ([]types.FloodEvent, error) {
	latDelta := radiusKm / kmPerDegreeLat
	lonDelta := radiusKm / (kmPerDegreeLat * math.Cos(loc.Lat*math.Pi/180))
	if math.IsInf(lonDelta, 0) || math.IsNaN(lonDelta) {
		lonDelta = 180
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM flood_events e
		 WHERE e.timestamp >= $1
		   AND e.latitude BETWEEN $2 AND $3
		   AND e.longitude BETWEEN $4 AND $5
		 ORDER BY e.timestamp DESC`,
		cutoff,
		loc.Lat-latDelta, loc.Lat+latDelta,
		loc.Lon-lonDelta, loc.Lon+lonDelta,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list nearby flood events", err)
	}

	candidates, err := collectEvents(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan flood events", err)
	}

	events := candidates[:0]
	for _, ev := range candidates {
		at := types.Location{Lat: ev.Latitude, Lon: ev.Longitude}
		if types.DistanceKm(loc, at) <= radiusKm {
			events = append(events, ev)
		}
	}
	return events, nil
}

// SearchByName returns events whose location name contains the given text,
// case-insensitively, newest first.
func (r *FloodEventRepository) SearchByName(ctx context.Context, name string, limit int) ([]types.FloodEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM flood_events e
		 WHERE e.location_name ILIKE '%' || $1 || '%'
		 ORDER BY e.timestamp DESC
		 LIMIT $2`,
		name, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to search flood events", err)
	}

	events, err := collectEvents(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan flood events", err)
	}
	return events, nil
}

// Stats aggregates the stored events for dashboard display. The 24-hour
// window is measured from the caller-supplied now, so callers with an
// injected clock get reproducible figures.
func (r *FloodEventRepository) Stats(ctx context.Context, now time.Time) (*types.EventStats, error) {
	stats := &types.EventStats{
		SeverityCounts: make(map[types.Severity]int),
	}

	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE timestamp >= $1),
		        COALESCE(AVG(risk_score), 0)
		 FROM flood_events`,
		now.Add(-24*time.Hour),
	)
	if err := row.Scan(&stats.TotalEvents, &stats.EventsLast24h, &stats.AverageRiskScore); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to aggregate flood event stats", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT severity, COUNT(*)
		 FROM flood_events
		 GROUP BY severity`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to count severities", err)
	}
	if err := scanCounts(rows, func(key string, count int) {
		stats.SeverityCounts[types.Severity(key)] = count
	}); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan severity counts", err)
	}

	rows, err = r.db.Query(ctx,
		`SELECT location_name, COUNT(*) AS events
		 FROM flood_events
		 GROUP BY location_name
		 ORDER BY events DESC, location_name
		 LIMIT $1`,
		topLocationsLimit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to rank locations", err)
	}
	if err := scanCounts(rows, func(key string, count int) {
		stats.TopLocations = append(stats.TopLocations, types.LocationCount{Location: key, Count: count})
	}); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan location counts", err)
	}

	return stats, nil
}

// ListOlderThan returns up to limit events recorded before cutoff, oldest
// first, skipping the first offset rows. The archiver pages through aged
// events with it before pruning them.
func (r *FloodEventRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit, offset int) ([]types.FloodEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM flood_events e
		 WHERE e.timestamp < $1
		 ORDER BY e.timestamp ASC
		 LIMIT $2 OFFSET $3`,
		cutoff, limit, offset,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list aged flood events", err)
	}

	events, err := collectEvents(rows)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan flood events", err)
	}
	return events, nil
}

// DeleteOlderThan removes events recorded before cutoff and reports how many
// rows were pruned. Used by the archiver after a successful export.
func (r *FloodEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM flood_events WHERE timestamp < $1`,
		cutoff,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to prune flood events", err)
	}
	return tag.RowsAffected(), nil
}

const (
	// kmPerDegreeLat is the surface distance of one degree of latitude.
	kmPerDegreeLat = 111.32

	topLocationsLimit = 5
)

// scanCounts drains a (key, count) result set into the supplied callback.
func scanCounts(rows pgx.Rows, add func(key string, count int)) error {
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		add(key, count)
	}
	return rows.Err()
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
