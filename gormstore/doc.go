// Package gormstore persists accounts and their role grants in Postgres
// through gorm, implementing the engine's AccountStore interface.
package gormstore
