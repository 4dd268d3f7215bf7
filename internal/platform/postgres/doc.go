// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they can run against either
// a *sql.DB or an open *sql.Tx; WithTx binds a store to a transaction without
// copying any other state.
package postgres
