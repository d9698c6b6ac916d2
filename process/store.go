// Package process implements the process database collaborator on
// SQLite: the cutchart table keyed by tool id and the hidef hole
// override rows keyed by machine, material, and thickness.
package process

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mikemacwillie/plasmafilter"
)

// Store is a plasmafilter.ProcessSource backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ plasmafilter.ProcessSource = (*Store)(nil)

// Open opens (creating if needed) the process database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening process db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cutchart (
		id INTEGER PRIMARY KEY,
		cut_speed REAL NOT NULL,
		thickness REAL NOT NULL,
		thickness_id INTEGER NOT NULL,
		material_id INTEGER NOT NULL,
		machine_id INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS hidef_holes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		machine_id INTEGER NOT NULL,
		material_id INTEGER NOT NULL,
		thickness_id INTEGER NOT NULL,
		hole_size REAL NOT NULL,
		leadin_radius REAL NOT NULL,
		kerf REAL NOT NULL,
		cut_height REAL NOT NULL,
		speed1 REAL NOT NULL,
		speed2 REAL NOT NULL,
		speed2_distance REAL NOT NULL,
		plasma_off_distance REAL NOT NULL,
		over_cut REAL NOT NULL,
		amps REAL NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_hidef_combo
		ON hidef_holes(machine_id, material_id, thickness_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initializing process db: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CutByID looks up the cut process for a tool id.
func (s *Store) CutByID(id int) (plasmafilter.CutProcess, bool, error) {
	var proc plasmafilter.CutProcess
	row := s.db.QueryRow(`
		SELECT id, cut_speed, thickness, thickness_id, material_id, machine_id
		FROM cutchart WHERE id = ?`, id)
	err := row.Scan(&proc.ID, &proc.CutSpeed, &proc.Thickness,
		&proc.ThicknessID, &proc.MaterialID, &proc.MachineID)
	if err == sql.ErrNoRows {
		return plasmafilter.CutProcess{}, false, nil
	} else if err != nil {
		return plasmafilter.CutProcess{}, false, fmt.Errorf("cutchart lookup: %w", err)
	}
	return proc, true, nil
}

// HiDefRows returns the hidef breakpoint rows for the combination,
// ordered by ascending hole size.
func (s *Store) HiDefRows(machineID, materialID, thicknessID int) ([]plasmafilter.HiDefRow, error) {
	rows, err := s.db.Query(`
		SELECT hole_size, leadin_radius, kerf, cut_height, speed1, speed2,
			speed2_distance, plasma_off_distance, over_cut, amps
		FROM hidef_holes
		WHERE machine_id = ? AND material_id = ? AND thickness_id = ?
		ORDER BY hole_size ASC`, machineID, materialID, thicknessID)
	if err != nil {
		return nil, fmt.Errorf("hidef lookup: %w", err)
	}
	defer rows.Close()

	var out []plasmafilter.HiDefRow
	for rows.Next() {
		var r plasmafilter.HiDefRow
		err := rows.Scan(&r.HoleSize, &r.LeadinRadius, &r.Kerf, &r.CutHeight,
			&r.Speed1, &r.Speed2, &r.Speed2Distance, &r.PlasmaOffDistance,
			&r.OverCut, &r.Amps)
		if err != nil {
			return nil, fmt.Errorf("hidef scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("hidef rows: %w", err)
	}
	return out, nil
}

// AddCutProcess inserts or replaces a cutchart record.
func (s *Store) AddCutProcess(proc plasmafilter.CutProcess) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO cutchart
			(id, cut_speed, thickness, thickness_id, material_id, machine_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		proc.ID, proc.CutSpeed, proc.Thickness,
		proc.ThicknessID, proc.MaterialID, proc.MachineID)
	if err != nil {
		return fmt.Errorf("inserting cutchart row: %w", err)
	}
	return nil
}

// AddHiDefRow inserts one hidef breakpoint row for the combination.
func (s *Store) AddHiDefRow(machineID, materialID, thicknessID int, r plasmafilter.HiDefRow) error {
	_, err := s.db.Exec(`
		INSERT INTO hidef_holes
			(machine_id, material_id, thickness_id, hole_size, leadin_radius,
			kerf, cut_height, speed1, speed2, speed2_distance,
			plasma_off_distance, over_cut, amps)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		machineID, materialID, thicknessID, r.HoleSize, r.LeadinRadius,
		r.Kerf, r.CutHeight, r.Speed1, r.Speed2, r.Speed2Distance,
		r.PlasmaOffDistance, r.OverCut, r.Amps)
	if err != nil {
		return fmt.Errorf("inserting hidef row: %w", err)
	}
	return nil
}
