package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx,
		`SELECT id, username, password_hash FROM "user" WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("store: get user: %w", err)
	}
	return u, nil
}

func (p *Postgres) ListDevices(ctx context.Context, userID int64) ([]Device, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, name, mac_address FROM device WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.MAC); err != nil {
			return nil, fmt.Errorf("store: scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list devices: %w", err)
	}
	return devices, nil
}

func (p *Postgres) AddDevice(ctx context.Context, userID int64, d NewDevice) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO device (user_id, name, mac_address) VALUES ($1, $2, $3)`,
		userID, d.Name, d.MAC,
	)
	if err != nil {
		return fmt.Errorf("store: add device: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateDevice(ctx context.Context, deviceID int64, d NewDevice) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE device SET name = $1, mac_address = $2 WHERE id = $3`,
		d.Name, d.MAC, deviceID,
	)
	if err != nil {
		return fmt.Errorf("store: update device: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteDevice(ctx context.Context, deviceID int64) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM device WHERE id = $1`, deviceID)
	if err != nil {
		return fmt.Errorf("store: delete device: %w", err)
	}
	return nil
}

func (p *Postgres) GetDevice(ctx context.Context, deviceID int64) (Device, error) {
	var d Device
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, name, mac_address FROM device WHERE id = $1`,
		deviceID,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.MAC)
	if errors.Is(err, pgx.ErrNoRows) {
		return Device{}, ErrNotFound
	}
	if err != nil {
		return Device{}, fmt.Errorf("store: get device: %w", err)
	}
	return d, nil
}

func (p *Postgres) UserOwnsDevice(ctx context.Context, userID, deviceID int64) (bool, error) {
	var count int64
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM device WHERE user_id = $1 AND id = $2`,
		userID, deviceID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("store: ownership check: %w", err)
	}
	return count > 0, nil
}
