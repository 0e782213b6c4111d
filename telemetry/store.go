package telemetry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewRunID returns a fresh identifier for a simulation run.
func NewRunID() string {
	return uuid.NewString()
}

// Run is one simulation run recorded in the store.
type Run struct {
	ID         string  `db:"id"`
	Seed       int64   `db:"seed"`
	StartedAt  string  `db:"started_at"`
	FinishedAt *string `db:"finished_at"`
	Ticks      int64   `db:"ticks"`
	Survivors  int     `db:"survivors"`
	ConfigYAML string  `db:"config_yaml"`
}

// Store persists runs and their window stats in SQLite.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates a SQLite run store at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		ticks INTEGER NOT NULL DEFAULT 0,
		survivors INTEGER NOT NULL DEFAULT 0,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		window_start INTEGER NOT NULL,
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		ants INTEGER NOT NULL,
		queens INTEGER NOT NULL,
		seeking INTEGER NOT NULL,
		eating INTEGER NOT NULL,
		food INTEGER NOT NULL,
		food_quantity REAL NOT NULL,
		known_food INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		food_discovered INTEGER NOT NULL,
		food_depleted INTEGER NOT NULL,
		food_created INTEGER NOT NULL,
		seeks_started INTEGER NOT NULL,
		meals_started INTEGER NOT NULL,
		eaten REAL NOT NULL,
		stuck_steps INTEGER NOT NULL,
		goal_rolls INTEGER NOT NULL,
		hunger_mean REAL NOT NULL,
		hunger_p10 REAL NOT NULL,
		hunger_p50 REAL NOT NULL,
		hunger_p90 REAL NOT NULL,
		health_mean REAL NOT NULL,
		health_p10 REAL NOT NULL,
		health_p50 REAL NOT NULL,
		fog_revealed REAL NOT NULL,
		PRIMARY KEY (run_id, window_end)
	);

	CREATE INDEX IF NOT EXISTS idx_windows_run ON windows(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(id string, seed int64, configYAML string) error {
	if s == nil {
		return nil
	}
	_, err := s.conn.Exec(
		"INSERT INTO runs (id, seed, started_at, config_yaml) VALUES (?, ?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339), configYAML,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps a run with its final tick count and surviving population.
func (s *Store) FinishRun(id string, ticks int64, survivors int) error {
	if s == nil {
		return nil
	}
	_, err := s.conn.Exec(
		"UPDATE runs SET finished_at = ?, ticks = ?, survivors = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), ticks, survivors, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SaveWindows appends window stats in a single transaction.
func (s *Store) SaveWindows(windows []WindowStats) error {
	if s == nil || len(windows) == 0 {
		return nil
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`INSERT INTO windows
		(run_id, window_start, window_end, sim_time, ants, queens, seeking, eating,
		 food, food_quantity, known_food, deaths, food_discovered, food_depleted,
		 food_created, seeks_started, meals_started, eaten, stuck_steps, goal_rolls,
		 hunger_mean, hunger_p10, hunger_p50, hunger_p90,
		 health_mean, health_p10, health_p50, fog_revealed)
		VALUES
		(:run_id, :window_start, :window_end, :sim_time, :ants, :queens, :seeking, :eating,
		 :food, :food_quantity, :known_food, :deaths, :food_discovered, :food_depleted,
		 :food_created, :seeks_started, :meals_started, :eaten, :stuck_steps, :goal_rolls,
		 :hunger_mean, :hunger_p10, :hunger_p50, :hunger_p90,
		 :health_mean, :health_p10, :health_p50, :fog_revealed)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, w := range windows {
		if _, err := stmt.Exec(w); err != nil {
			return fmt.Errorf("insert window %d: %w", w.WindowEndTick, err)
		}
	}
	return tx.Commit()
}

// GetRun loads a single run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	var r Run
	err := s.conn.Get(&r, "SELECT id, seed, started_at, finished_at, ticks, survivors, config_yaml FROM runs WHERE id = ?", id)
	return r, err
}

// Windows returns every recorded window of a run in tick order.
func (s *Store) Windows(runID string) ([]WindowStats, error) {
	var out []WindowStats
	err := s.conn.Select(&out, "SELECT * FROM windows WHERE run_id = ? ORDER BY window_end", runID)
	return out, err
}
