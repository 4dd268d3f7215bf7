// Package service provides application-level services for flashcard
// generation, flashcard management, and user accounts. Services own the
// transaction boundaries; stores only execute statements on whatever
// connection or transaction they are handed.
package service
