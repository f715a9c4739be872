package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jgoulah/campusenergy/pkg/models"
)

// ErrNoDataset is returned when nothing has been imported yet
var ErrNoDataset = errors.New("no dataset imported (run 'campusenergy import' first)")

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Import describes one stored import run
type Import struct {
	ID          string
	Source      string
	GeneratedAt time.Time
	ImportedAt  time.Time
	Buildings   int
	Rejected    int
	Malformed   int
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		generated_at TEXT,
		imported_at TEXT NOT NULL,
		buildings INTEGER NOT NULL,
		rejected INTEGER NOT NULL,
		malformed INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS summary (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		total_electricity_mwh REAL NOT NULL,
		total_buildings INTEGER NOT NULL,
		date_range TEXT,
		avg_eui REAL,
		potential_annual_savings_mwh REAL,
		potential_cost_savings REAL
	);
	CREATE TABLE IF NOT EXISTS buildings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		simscode TEXT,
		name TEXT NOT NULL,
		site_name TEXT,
		category TEXT NOT NULL,
		ranking INTEGER NOT NULL,
		total_energy REAL NOT NULL,
		mean_eui REAL,
		gross_area REAL,
		building_age REAL,
		latitude REAL,
		longitude REAL,
		retrofit_priority REAL,
		rejected INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS monthly_trends (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		month TEXT NOT NULL,
		utility TEXT NOT NULL,
		energy_mwh REAL NOT NULL,
		malformed INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS heatmap (
		day_of_week INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		energy_kwh REAL NOT NULL,
		PRIMARY KEY (day_of_week, hour)
	);
	CREATE TABLE IF NOT EXISTS profiles (
		kind TEXT NOT NULL,
		bucket INTEGER NOT NULL,
		label TEXT,
		energy_kwh REAL NOT NULL,
		PRIMARY KEY (kind, bucket)
	);
	CREATE TABLE IF NOT EXISTS feature_importance (
		position INTEGER PRIMARY KEY,
		feature TEXT NOT NULL,
		importance REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS utility_totals (
		utility TEXT PRIMARY KEY,
		total_kwh REAL NOT NULL,
		total_mwh REAL NOT NULL,
		days INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS temp_energy (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		avg_temp REAL NOT NULL,
		avg_energy REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS degree_days (
		date TEXT PRIMARY KEY,
		hdd REAL NOT NULL,
		cdd REAL NOT NULL,
		energy_kwh REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS model_metrics (
		position INTEGER PRIMARY KEY,
		model TEXT NOT NULL,
		mae REAL NOT NULL,
		mape REAL NOT NULL,
		rmse REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		utility TEXT NOT NULL,
		model TEXT NOT NULL,
		actual REAL,
		predicted REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_buildings_category ON buildings(category, ranking);
	CREATE INDEX IF NOT EXISTS idx_monthly_month ON monthly_trends(month);
	CREATE INDEX IF NOT EXISTS idx_monthly_utility ON monthly_trends(utility);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// ReplaceDataset stores ds in place of any previous import and returns the import ID
func (db *DB) ReplaceDataset(ds *models.Dataset) (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"summary", "buildings", "monthly_trends", "utility_totals", "heatmap", "profiles",
		"temp_energy", "degree_days", "feature_importance", "model_metrics", "predictions"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return "", fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	s := ds.Summary
	if _, err := tx.Exec(`
	INSERT INTO summary (id, total_electricity_mwh, total_buildings, date_range, avg_eui, potential_annual_savings_mwh, potential_cost_savings)
	VALUES (1, ?, ?, ?, ?, ?, ?)
	`, s.TotalElectricityMWh, s.TotalBuildings, s.DateRange, s.AvgEUI, s.PotentialAnnualSavingsMWh, s.PotentialCostSavings); err != nil {
		return "", fmt.Errorf("inserting summary: %w", err)
	}

	insertBuilding, err := tx.Prepare(`
	INSERT INTO buildings (simscode, name, site_name, category, ranking, total_energy, mean_eui, gross_area, building_age, latitude, longitude, retrofit_priority, rejected)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("preparing building insert: %w", err)
	}
	defer insertBuilding.Close()

	insert := func(b models.Building, rejected bool) error {
		_, err := insertBuilding.Exec(b.SimsCode, b.Name, b.SiteName, b.Category, b.Rank, b.TotalEnergyKWh, b.MeanEUI,
			b.GrossArea, b.BuildingAge, b.Latitude, b.Longitude, b.RetrofitPriority, rejected)
		if err != nil {
			return fmt.Errorf("inserting building %s: %w", b.Name, err)
		}
		return nil
	}
	for _, b := range ds.Buildings {
		if err := insert(b, false); err != nil {
			return "", err
		}
	}
	for _, b := range ds.Rejected {
		if err := insert(b, true); err != nil {
			return "", err
		}
	}

	for _, m := range ds.Monthly {
		if _, err := tx.Exec(`INSERT INTO monthly_trends (month, utility, energy_mwh, malformed) VALUES (?, ?, ?, ?)`,
			m.Month, m.Utility, m.EnergyMWh, m.Malformed); err != nil {
			return "", fmt.Errorf("inserting monthly trend: %w", err)
		}
	}

	for _, c := range ds.Heatmap {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO heatmap (day_of_week, hour, energy_kwh) VALUES (?, ?, ?)`,
			c.DayOfWeek, c.Hour, c.EnergyKWh); err != nil {
			return "", fmt.Errorf("inserting heatmap cell: %w", err)
		}
	}

	for _, p := range ds.Profiles {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO profiles (kind, bucket, label, energy_kwh) VALUES (?, ?, ?, ?)`,
			p.Kind, p.Key, p.Label, p.EnergyKWh); err != nil {
			return "", fmt.Errorf("inserting profile: %w", err)
		}
	}

	for i, f := range ds.Features {
		if _, err := tx.Exec(`INSERT INTO feature_importance (position, feature, importance) VALUES (?, ?, ?)`,
			i, f.Feature, f.Importance); err != nil {
			return "", fmt.Errorf("inserting feature importance: %w", err)
		}
	}

	for _, u := range ds.UtilityTotals {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO utility_totals (utility, total_kwh, total_mwh, days) VALUES (?, ?, ?, ?)`,
			u.Utility, u.TotalKWh, u.TotalMWh, u.Days); err != nil {
			return "", fmt.Errorf("inserting utility total: %w", err)
		}
	}

	for _, p := range ds.TempVsEnergy {
		if _, err := tx.Exec(`INSERT INTO temp_energy (avg_temp, avg_energy) VALUES (?, ?)`,
			p.AvgTemp, p.AvgEnergy); err != nil {
			return "", fmt.Errorf("inserting temperature bin: %w", err)
		}
	}

	for _, d := range ds.DegreeDays {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO degree_days (date, hdd, cdd, energy_kwh) VALUES (?, ?, ?, ?)`,
			d.Date, d.HDD, d.CDD, d.EnergyKWh); err != nil {
			return "", fmt.Errorf("inserting degree day: %w", err)
		}
	}

	for i, m := range ds.ModelComparison {
		if _, err := tx.Exec(`INSERT INTO model_metrics (position, model, mae, mape, rmse) VALUES (?, ?, ?, ?, ?)`,
			i, m.Model, m.MAE, m.MAPE, m.RMSE); err != nil {
			return "", fmt.Errorf("inserting model metrics: %w", err)
		}
	}

	for _, p := range ds.Predictions {
		var actual sql.NullFloat64
		if p.Actual != nil {
			actual = sql.NullFloat64{Float64: *p.Actual, Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO predictions (ts, utility, model, actual, predicted) VALUES (?, ?, ?, ?, ?)`,
			p.Time.UTC().Format(time.RFC3339), p.Utility, p.Model, actual, p.Predicted); err != nil {
			return "", fmt.Errorf("inserting prediction: %w", err)
		}
	}

	id := uuid.NewString()
	var generatedAt string
	if !ds.GeneratedAt.IsZero() {
		generatedAt = ds.GeneratedAt.UTC().Format(time.RFC3339)
	}
	if _, err := tx.Exec(`
	INSERT INTO imports (id, source, generated_at, imported_at, buildings, rejected, malformed)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, ds.Source, generatedAt, time.Now().UTC().Format(time.RFC3339), len(ds.Buildings), len(ds.Rejected), ds.MalformedRecords); err != nil {
		return "", fmt.Errorf("recording import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing import: %w", err)
	}
	return id, nil
}

// LastImport returns the most recent import, or ErrNoDataset
func (db *DB) LastImport() (*Import, error) {
	row := db.conn.QueryRow(`
	SELECT id, source, generated_at, imported_at, buildings, rejected, malformed
	FROM imports
	ORDER BY imported_at DESC, rowid DESC
	LIMIT 1
	`)

	var imp Import
	var generatedAt sql.NullString
	var importedAt string
	err := row.Scan(&imp.ID, &imp.Source, &generatedAt, &importedAt, &imp.Buildings, &imp.Rejected, &imp.Malformed)
	if err == sql.ErrNoRows {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("querying imports: %w", err)
	}

	imp.ImportedAt, err = time.Parse(time.RFC3339, importedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing imported_at: %w", err)
	}
	if generatedAt.Valid && generatedAt.String != "" {
		imp.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing generated_at: %w", err)
		}
	}

	return &imp, nil
}

// GetSummary returns the stored summary, or ErrNoDataset
func (db *DB) GetSummary() (*models.Summary, error) {
	row := db.conn.QueryRow(`
	SELECT total_electricity_mwh, total_buildings, date_range, avg_eui, potential_annual_savings_mwh, potential_cost_savings
	FROM summary WHERE id = 1
	`)

	var s models.Summary
	var dateRange sql.NullString
	var avgEUI, savingsMWh, costSavings sql.NullFloat64
	err := row.Scan(&s.TotalElectricityMWh, &s.TotalBuildings, &dateRange, &avgEUI, &savingsMWh, &costSavings)
	if err == sql.ErrNoRows {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}

	s.DateRange = dateRange.String
	s.AvgEUI = avgEUI.Float64
	s.PotentialAnnualSavingsMWh = savingsMWh.Float64
	s.PotentialCostSavings = costSavings.Float64
	return &s, nil
}

// ListBuildings retrieves accepted buildings of a category ordered by rank.
// An empty category lists all categories; limit <= 0 means no limit.
func (db *DB) ListBuildings(category string, limit int) ([]models.Building, error) {
	return db.queryBuildings(false, category, limit)
}

// ListRejected retrieves the buildings dropped at import
func (db *DB) ListRejected() ([]models.Building, error) {
	return db.queryBuildings(true, "", 0)
}

func (db *DB) queryBuildings(rejected bool, category string, limit int) ([]models.Building, error) {
	query := `
	SELECT simscode, name, site_name, category, ranking, total_energy, mean_eui, gross_area, building_age, latitude, longitude, retrofit_priority
	FROM buildings
	WHERE rejected = ? AND (? = '' OR category = ?)
	ORDER BY category, ranking
	`
	args := []any{rejected, category, category}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying buildings: %w", err)
	}
	defer rows.Close()

	var results []models.Building
	for rows.Next() {
		var b models.Building
		var simscode, siteName sql.NullString
		var eui, area, age, lat, lon, priority sql.NullFloat64

		if err := rows.Scan(&simscode, &b.Name, &siteName, &b.Category, &b.Rank, &b.TotalEnergyKWh,
			&eui, &area, &age, &lat, &lon, &priority); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		b.SimsCode = simscode.String
		b.SiteName = siteName.String
		b.MeanEUI = eui.Float64
		b.GrossArea = area.Float64
		b.BuildingAge = age.Float64
		b.Latitude = lat.Float64
		b.Longitude = lon.Float64
		b.RetrofitPriority = priority.Float64
		results = append(results, b)
	}

	return results, rows.Err()
}

// MonthlyTrends retrieves monthly records ordered by month. An empty utility
// returns all utilities.
func (db *DB) MonthlyTrends(utility string) ([]models.MonthlyTrend, error) {
	rows, err := db.conn.Query(`
	SELECT month, utility, energy_mwh, malformed
	FROM monthly_trends
	WHERE ? = '' OR utility = ? COLLATE NOCASE
	ORDER BY month, id
	`, utility, utility)
	if err != nil {
		return nil, fmt.Errorf("querying monthly trends: %w", err)
	}
	defer rows.Close()

	var results []models.MonthlyTrend
	for rows.Next() {
		var m models.MonthlyTrend
		if err := rows.Scan(&m.Month, &m.Utility, &m.EnergyMWh, &m.Malformed); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, m)
	}

	return results, rows.Err()
}

// Heatmap retrieves the hour by weekday grid
func (db *DB) Heatmap() ([]models.HeatmapCell, error) {
	rows, err := db.conn.Query(`SELECT day_of_week, hour, energy_kwh FROM heatmap ORDER BY day_of_week, hour`)
	if err != nil {
		return nil, fmt.Errorf("querying heatmap: %w", err)
	}
	defer rows.Close()

	var results []models.HeatmapCell
	for rows.Next() {
		var c models.HeatmapCell
		if err := rows.Scan(&c.DayOfWeek, &c.Hour, &c.EnergyKWh); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, c)
	}

	return results, rows.Err()
}

// Profiles retrieves hourly, weekday and monthly profile points
func (db *DB) Profiles() ([]models.ProfilePoint, error) {
	rows, err := db.conn.Query(`SELECT kind, bucket, label, energy_kwh FROM profiles ORDER BY kind, bucket`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	var results []models.ProfilePoint
	for rows.Next() {
		var p models.ProfilePoint
		var label sql.NullString
		if err := rows.Scan(&p.Kind, &p.Key, &label, &p.EnergyKWh); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		p.Label = label.String
		results = append(results, p)
	}

	return results, rows.Err()
}

// Features retrieves the feature importance table in export order
func (db *DB) Features() ([]models.FeatureImportance, error) {
	rows, err := db.conn.Query(`SELECT feature, importance FROM feature_importance ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying feature importance: %w", err)
	}
	defer rows.Close()

	var results []models.FeatureImportance
	for rows.Next() {
		var f models.FeatureImportance
		if err := rows.Scan(&f.Feature, &f.Importance); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, f)
	}

	return results, rows.Err()
}

// LoadDataset rebuilds the last imported dataset
func (db *DB) LoadDataset() (*models.Dataset, error) {
	imp, err := db.LastImport()
	if err != nil {
		return nil, err
	}
	summary, err := db.GetSummary()
	if err != nil {
		return nil, err
	}

	ds := &models.Dataset{
		GeneratedAt:      imp.GeneratedAt,
		Source:           imp.Source,
		Summary:          *summary,
		MalformedRecords: imp.Malformed,
	}
	if ds.Monthly, err = db.MonthlyTrends(""); err != nil {
		return nil, err
	}
	if ds.Buildings, err = db.ListBuildings("", 0); err != nil {
		return nil, err
	}
	if ds.Rejected, err = db.ListRejected(); err != nil {
		return nil, err
	}
	if ds.Heatmap, err = db.Heatmap(); err != nil {
		return nil, err
	}
	if ds.Profiles, err = db.Profiles(); err != nil {
		return nil, err
	}
	if ds.Features, err = db.Features(); err != nil {
		return nil, err
	}
	if ds.UtilityTotals, err = db.UtilityTotals(); err != nil {
		return nil, err
	}
	if ds.TempVsEnergy, ds.DegreeDays, err = db.Weather(); err != nil {
		return nil, err
	}
	if ds.ModelComparison, err = db.ModelComparison(); err != nil {
		return nil, err
	}
	if ds.Predictions, err = db.Predictions(0); err != nil {
		return nil, err
	}
	return ds, nil
}

// UtilityTotals retrieves the per-utility campus totals, largest first
func (db *DB) UtilityTotals() ([]models.UtilityTotal, error) {
	rows, err := db.conn.Query(`SELECT utility, total_kwh, total_mwh, days FROM utility_totals ORDER BY total_kwh DESC, utility`)
	if err != nil {
		return nil, fmt.Errorf("querying utility totals: %w", err)
	}
	defer rows.Close()

	var results []models.UtilityTotal
	for rows.Next() {
		var u models.UtilityTotal
		if err := rows.Scan(&u.Utility, &u.TotalKWh, &u.TotalMWh, &u.Days); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, u)
	}

	return results, rows.Err()
}

// Weather retrieves the temperature bins ordered by temperature and the
// degree days ordered by date
func (db *DB) Weather() ([]models.TempEnergyPoint, []models.DegreeDay, error) {
	rows, err := db.conn.Query(`SELECT avg_temp, avg_energy FROM temp_energy ORDER BY avg_temp, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying temperature bins: %w", err)
	}
	defer rows.Close()

	var bins []models.TempEnergyPoint
	for rows.Next() {
		var p models.TempEnergyPoint
		if err := rows.Scan(&p.AvgTemp, &p.AvgEnergy); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		bins = append(bins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	dayRows, err := db.conn.Query(`SELECT date, hdd, cdd, energy_kwh FROM degree_days ORDER BY date`)
	if err != nil {
		return nil, nil, fmt.Errorf("querying degree days: %w", err)
	}
	defer dayRows.Close()

	var days []models.DegreeDay
	for dayRows.Next() {
		var d models.DegreeDay
		if err := dayRows.Scan(&d.Date, &d.HDD, &d.CDD, &d.EnergyKWh); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		days = append(days, d)
	}

	return bins, days, dayRows.Err()
}

// ModelComparison retrieves the forecasting model metrics in export order
func (db *DB) ModelComparison() ([]models.ModelMetrics, error) {
	rows, err := db.conn.Query(`SELECT model, mae, mape, rmse FROM model_metrics ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying model metrics: %w", err)
	}
	defer rows.Close()

	var results []models.ModelMetrics
	for rows.Next() {
		var m models.ModelMetrics
		if err := rows.Scan(&m.Model, &m.MAE, &m.MAPE, &m.RMSE); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, m)
	}

	return results, rows.Err()
}

// Predictions retrieves forecast points ordered by time. With limit > 0 only
// the latest limit points are returned, still in time order.
func (db *DB) Predictions(limit int) ([]models.Prediction, error) {
	query := `SELECT ts, utility, model, actual, predicted FROM predictions ORDER BY ts, id`
	args := []any{}
	if limit > 0 {
		query = `SELECT * FROM (
			SELECT ts, utility, model, actual, predicted, id FROM predictions ORDER BY ts DESC, id DESC LIMIT ?
		) ORDER BY ts, id`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	var results []models.Prediction
	for rows.Next() {
		var (
			p      models.Prediction
			ts     string
			actual sql.NullFloat64
			id     int64
		)
		dest := []any{&ts, &p.Utility, &p.Model, &actual, &p.Predicted}
		if limit > 0 {
			dest = append(dest, &id)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if p.Time, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parsing prediction time %q: %w", ts, err)
		}
		if actual.Valid {
			v := actual.Float64
			p.Actual = &v
		}
		results = append(results, p)
	}

	return results, rows.Err()
}
