package db

import (
	"database/sql"
)

// MakeTx is a function that creates a db transaction
type MakeTx = func() (tx *Queries, discard, commit func() error, err error)

// NewMakeTx returns a MakeTx bound to the given handle. Reads made through
// the returned queries see the transaction's own writes, callers must not use
// other queries on the same handle while a transaction is open since the
// sqlite handle only has one connection.
func NewMakeTx(dbtx *sql.DB) MakeTx {
	qry := New(dbtx)
	return func() (tx *Queries, discard, commit func() error, err error) {
		sqltx, err := dbtx.Begin()
		if err != nil {
			return nil, nil, nil, err
		}
		txqry := qry.WithTx(sqltx)
		return txqry,
			func() error {
				err := sqltx.Rollback()
				if err == sql.ErrTxDone {
					return nil
				}
				return err
			},
			func() error {
				return sqltx.Commit()
			},
			nil
	}
}
