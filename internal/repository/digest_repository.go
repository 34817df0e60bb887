package repository

import (
	"database/sql"
	"pulsedigest/internal/model"

	"github.com/lib/pq"
)

const digestColumns = `id, run_id, digest_date, body, model_used, segment_count, segment_bytes, sent_count, failed_count, created_at`

type DigestRepository struct {
	db *sql.DB
}

func NewDigestRepository(db *sql.DB) *DigestRepository {
	return &DigestRepository{db: db}
}

func (r *DigestRepository) SaveDigest(d *model.Digest) error {
	return r.db.QueryRow(`
		INSERT INTO digest(run_id, digest_date, body, model_used, segment_count, segment_bytes, sent_count, failed_count)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, d.RunID, d.DigestDate, d.Body, d.ModelUsed, d.SegmentCount, pq.Array(d.SegmentBytes), d.SentCount, d.FailedCount).Scan(&d.ID, &d.CreatedAt)
}

func (r *DigestRepository) GetLatestDigest() (*model.Digest, error) {
	d, err := scanDigest(r.db.QueryRow(`
		SELECT ` + digestColumns + `
		FROM digest
		ORDER BY created_at DESC
		LIMIT 1
	`))

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return d, nil
}

func (r *DigestRepository) GetDigestByID(id int64) (*model.Digest, error) {
	d, err := scanDigest(r.db.QueryRow(`
		SELECT `+digestColumns+`
		FROM digest
		WHERE id = $1
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return d, nil
}

func (r *DigestRepository) GetDigests(limit, offset int) ([]model.Digest, error) {
	rows, err := r.db.Query(`
		SELECT `+digestColumns+`
		FROM digest
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []model.Digest
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, err
		}
		digests = append(digests, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return digests, nil
}

func (r *DigestRepository) GetDigestTotal() (int, error) {
	var total int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM digest`).Scan(&total)
	return total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDigest(row rowScanner) (*model.Digest, error) {
	var d model.Digest
	err := row.Scan(&d.ID, &d.RunID, &d.DigestDate, &d.Body, &d.ModelUsed, &d.SegmentCount, pq.Array(&d.SegmentBytes), &d.SentCount, &d.FailedCount, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
