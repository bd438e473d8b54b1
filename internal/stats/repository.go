package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/driplog/backend/internal/contracts"
)

// scopeBestLimit is how many scope-best devices are returned
const scopeBestLimit = 3

// metricColumns whitelists the drips columns a metric may read.
// 컬럼명은 SQL에 직접 삽입되므로 반드시 이 맵을 거칠 것
var metricColumns = map[contracts.Metric]string{
	contracts.MetricOverall:    "overall",
	contracts.MetricClean:      "clean",
	contracts.MetricFlavor:     "flavor",
	contracts.MetricAcidity:    "acidity",
	contracts.MetricBitterness: "bitterness",
	contracts.MetricSweetness:  "sweetness",
	contracts.MetricBody:       "body",
	contracts.MetricAftertaste: "aftertaste",
}

// MetricColumn returns the whitelisted column for a metric
func MetricColumn(m contracts.Metric) (string, error) {
	col, ok := metricColumns[m]
	if !ok {
		return "", fmt.Errorf("unknown metric %q", m)
	}
	return col, nil
}

// Repository reads aggregate statistics from the brew log store (read-only)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new stats repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func averagesQuery(column string) string {
	return fmt.Sprintf(`
		SELECT method, AVG(%s)::float8 AS avg
		FROM drips
		WHERE %s IS NOT NULL AND method <> ''
		GROUP BY method
		ORDER BY avg DESC, method
	`, column, column)
}

// DeviceAverages returns the per-device average of the metric, best first
func (r *Repository) DeviceAverages(ctx context.Context, metric contracts.Metric) ([]contracts.DeviceAverage, error) {
	column, err := MetricColumn(metric)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, averagesQuery(column))
	if err != nil {
		return nil, fmt.Errorf("query device averages: %w", err)
	}
	defer rows.Close()

	averages := make([]contracts.DeviceAverage, 0)
	for rows.Next() {
		var row contracts.DeviceAverage
		if err := rows.Scan(&row.Device, &row.Avg); err != nil {
			return nil, fmt.Errorf("scan device average: %w", err)
		}
		averages = append(averages, row)
	}

	return averages, rows.Err()
}

const scopeBestQuery = `
	WITH best AS (
		SELECT DISTINCT ON (d.bean_id) d.bean_id, d.method
		FROM drips d
		JOIN beans b ON b.id = d.bean_id
		WHERE d.overall IS NOT NULL
		  AND d.method <> ''
		  AND b.id::text <> $4
		  AND b.roast = $1
		  AND (b.process = $2 OR b.origin = $3)
		ORDER BY d.bean_id, d.overall DESC, d.brewed_at DESC
	)
	SELECT method
	FROM best
	GROUP BY method
	ORDER BY COUNT(*) DESC, method
	LIMIT $5
`

// ScopeBest returns the devices that most often produced the best cup
// for beans sharing the roast and the process or origin
func (r *Repository) ScopeBest(ctx context.Context, bean contracts.BeanRecord) ([]string, error) {
	rows, err := r.pool.Query(ctx, scopeBestQuery, bean.Roast, bean.Process, bean.Origin, bean.ID, scopeBestLimit)
	if err != nil {
		return nil, fmt.Errorf("query scope best: %w", err)
	}
	defer rows.Close()

	devices := make([]string, 0, scopeBestLimit)
	for rows.Next() {
		var method string
		if err := rows.Scan(&method); err != nil {
			return nil, fmt.Errorf("scan scope best: %w", err)
		}
		devices = append(devices, method)
	}

	return devices, rows.Err()
}

// Bean looks up a bean by id; aging is derived from the roast date
func (r *Repository) Bean(ctx context.Context, id string) (*contracts.BeanRecord, error) {
	query := `
		SELECT id::text, name, COALESCE(roast, ''), COALESCE(process, ''), COALESCE(origin, ''),
		       roast_date, COALESCE(storage, '')
		FROM beans
		WHERE id::text = $1
	`

	var b contracts.BeanRecord
	var roastDate *time.Time
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Roast, &b.Process, &b.Origin, &roastDate, &b.Storage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("bean %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query bean %s: %w", id, err)
	}

	b.RoastedAt = roastDate
	b.AgingDays = b.AgingAt(time.Now())
	return &b, nil
}
