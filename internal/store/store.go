// Package store is the relational storage collaborator: user lookup for
// login and CRUD on device records, keyed by owning user. The relay
// core consumes it through the Store interface and only ever sees
// ErrNotFound or a generic storage failure.
package store

import (
	"context"
	"errors"
)

// ErrNotFound maps to the "invalid parameters" client category; every
// other storage failure is a service error.
var ErrNotFound = errors.New("store: not found")

type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

type Device struct {
	ID     int64
	UserID int64
	Name   string
	MAC    string
}

// NewDevice carries the caller-supplied fields of a device row.
type NewDevice struct {
	Name string
	MAC  string
}

type Store interface {
	GetUserByUsername(ctx context.Context, username string) (User, error)

	ListDevices(ctx context.Context, userID int64) ([]Device, error)
	AddDevice(ctx context.Context, userID int64, d NewDevice) error
	UpdateDevice(ctx context.Context, deviceID int64, d NewDevice) error
	DeleteDevice(ctx context.Context, deviceID int64) error
	GetDevice(ctx context.Context, deviceID int64) (Device, error)
	UserOwnsDevice(ctx context.Context, userID, deviceID int64) (bool, error)
}
