// Package store defines the persistence interfaces for the application's
// entities along with the shared transaction helper and sentinel errors.
// Every lookup and mutation on generations and flashcards takes an explicit
// owner ID; a record that exists but belongs to someone else is reported as
// not found, never as forbidden.
package store
