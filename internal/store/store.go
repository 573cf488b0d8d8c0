// Package store persists leads and loads in sqlite. Each record is
// stored as a JSON document plus a few indexed scalar columns for
// filtering, so the schema stays stable as the models grow.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/faridlogistics/freightcrm/internal/freight"
)

type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the sqlite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS leads (
		id            TEXT PRIMARY KEY,
		company_name  TEXT NOT NULL,
		mc_number     TEXT DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'new',
		source        TEXT NOT NULL DEFAULT '',
		score         REAL DEFAULT 0,
		is_qualified  INTEGER DEFAULT 0,
		full_data     TEXT NOT NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leads_mc_number ON leads(mc_number);
	CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
	CREATE INDEX IF NOT EXISTS idx_leads_qualified ON leads(is_qualified, score);

	CREATE TABLE IF NOT EXISTS loads (
		id                 TEXT PRIMARY KEY,
		external_id        TEXT DEFAULT '',
		origin_state       TEXT NOT NULL,
		destination_state  TEXT NOT NULL,
		commodity          TEXT NOT NULL,
		equipment_type     TEXT NOT NULL,
		status             TEXT NOT NULL DEFAULT 'available',
		compliance_verdict TEXT NOT NULL DEFAULT 'needs_review',
		rate               REAL NOT NULL,
		full_data          TEXT NOT NULL,
		created_at         DATETIME NOT NULL,
		updated_at         DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_loads_status ON loads(status);
	CREATE INDEX IF NOT EXISTS idx_loads_verdict ON loads(compliance_verdict);
	CREATE INDEX IF NOT EXISTS idx_loads_lane ON loads(origin_state, destination_state);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLead inserts or replaces a lead.
func (s *Store) SaveLead(lead *freight.Lead) error {
	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("encoding lead %s: %w", lead.ID, err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO leads (id, company_name, mc_number, status, source, score, is_qualified, full_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.CompanyName, lead.Authority.MCNumber, string(lead.Status), string(lead.Source),
		lead.Score, boolToInt(lead.IsQualified), string(data), lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

// SaveLeads inserts or replaces leads in a single transaction and
// returns how many were written.
func (s *Store) SaveLeads(leads []*freight.Lead) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO leads (id, company_name, mc_number, status, source, score, is_qualified, full_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	saved := 0
	for _, lead := range leads {
		data, err := json.Marshal(lead)
		if err != nil {
			return saved, fmt.Errorf("encoding lead %s: %w", lead.ID, err)
		}
		if _, err := stmt.Exec(
			lead.ID, lead.CompanyName, lead.Authority.MCNumber, string(lead.Status), string(lead.Source),
			lead.Score, boolToInt(lead.IsQualified), string(data), lead.CreatedAt, lead.UpdatedAt,
		); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, tx.Commit()
}

// GetLead fetches one lead by ID. Returns sql.ErrNoRows when absent.
func (s *Store) GetLead(id string) (*freight.Lead, error) {
	var data string
	err := s.db.QueryRow(`SELECT full_data FROM leads WHERE id = ?`, id).Scan(&data)
	if err != nil {
		return nil, err
	}
	return decodeLead(data)
}

// LeadExistsByMC reports whether a lead with the given MC number is
// already stored. Used for dedupe during imports.
func (s *Store) LeadExistsByMC(mcNumber string) (bool, error) {
	if mcNumber == "" {
		return false, nil
	}
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM leads WHERE mc_number = ?`, mcNumber).Scan(&count)
	return count > 0, err
}

// LeadFilter narrows ListLeads. Zero values mean no constraint.
type LeadFilter struct {
	Status        freight.LeadStatus
	QualifiedOnly bool
	MinScore      float64
	Limit         int
}

// ListLeads returns stored leads matching the filter, best score
// first.
func (s *Store) ListLeads(filter LeadFilter) ([]*freight.Lead, error) {
	query := `SELECT full_data FROM leads WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.QualifiedOnly {
		query += ` AND is_qualified = 1`
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY score DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*freight.Lead
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		lead, err := decodeLead(data)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// CountLeads returns counts per lead status.
func (s *Store) CountLeads() (map[freight.LeadStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[freight.LeadStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[freight.LeadStatus(status)] = count
	}
	return counts, rows.Err()
}

// SaveLoad inserts or replaces a load.
func (s *Store) SaveLoad(load *freight.Load) error {
	data, err := json.Marshal(load)
	if err != nil {
		return fmt.Errorf("encoding load %s: %w", load.ID, err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO loads (id, external_id, origin_state, destination_state, commodity, equipment_type, status, compliance_verdict, rate, full_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		load.ID, load.ExternalID, load.Origin.State, load.Destination.State, load.Commodity,
		string(load.EquipmentType), string(load.Status), string(load.ComplianceVerdict),
		load.Rate, string(data), load.CreatedAt, load.UpdatedAt,
	)
	return err
}

// SaveLoads inserts or replaces loads in one transaction.
func (s *Store) SaveLoads(loads []*freight.Load) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO loads (id, external_id, origin_state, destination_state, commodity, equipment_type, status, compliance_verdict, rate, full_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	saved := 0
	for _, load := range loads {
		data, err := json.Marshal(load)
		if err != nil {
			return saved, fmt.Errorf("encoding load %s: %w", load.ID, err)
		}
		if _, err := stmt.Exec(
			load.ID, load.ExternalID, load.Origin.State, load.Destination.State, load.Commodity,
			string(load.EquipmentType), string(load.Status), string(load.ComplianceVerdict),
			load.Rate, string(data), load.CreatedAt, load.UpdatedAt,
		); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, tx.Commit()
}

// GetLoad fetches one load by ID. Returns sql.ErrNoRows when absent.
func (s *Store) GetLoad(id string) (*freight.Load, error) {
	var data string
	err := s.db.QueryRow(`SELECT full_data FROM loads WHERE id = ?`, id).Scan(&data)
	if err != nil {
		return nil, err
	}
	return decodeLoad(data)
}

// ListAvailableLoads returns loads still open for dispatch, newest
// first.
func (s *Store) ListAvailableLoads(limit int) ([]*freight.Load, error) {
	query := `SELECT full_data FROM loads WHERE status = ? ORDER BY created_at DESC`
	args := []any{string(freight.LoadStatusAvailable)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []*freight.Load
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		load, err := decodeLoad(data)
		if err != nil {
			return nil, err
		}
		loads = append(loads, load)
	}
	return loads, rows.Err()
}

// CountLoads returns counts per load status.
func (s *Store) CountLoads() (map[freight.LoadStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM loads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[freight.LoadStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[freight.LoadStatus(status)] = count
	}
	return counts, rows.Err()
}

// RecordedSince counts leads created after the given time. Used for
// session reporting.
func (s *Store) RecordedSince(since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM leads WHERE created_at >= ?`, since).Scan(&count)
	return count, err
}

func decodeLead(data string) (*freight.Lead, error) {
	var lead freight.Lead
	if err := json.Unmarshal([]byte(data), &lead); err != nil {
		return nil, fmt.Errorf("decoding lead: %w", err)
	}
	return &lead, nil
}

func decodeLoad(data string) (*freight.Load, error) {
	var load freight.Load
	if err := json.Unmarshal([]byte(data), &load); err != nil {
		return nil, fmt.Errorf("decoding load: %w", err)
	}
	return &load, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
