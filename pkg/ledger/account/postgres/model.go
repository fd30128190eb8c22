package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/counter-program/pkg/ledger/account"

	pgutil "github.com/code-payments/counter-program/pkg/database/postgres"
)

const (
	accountTableName = "counter__ledger_account"

	allAccountFields = `id, address, owner, lamports, data, executable, slot, updated_at`
)

type accountModel struct {
	Id         sql.NullInt64 `db:"id"`
	Address    string        `db:"address"`
	Owner      string        `db:"owner"`
	Lamports   int64         `db:"lamports"`
	Data       []byte        `db:"data"`
	Executable bool          `db:"executable"`
	Slot       int64         `db:"slot"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

func toAccountModel(obj *account.Record) (*accountModel, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &accountModel{
		Address:    obj.Address,
		Owner:      obj.Owner,
		Lamports:   int64(obj.Lamports),
		Data:       data,
		Executable: obj.Executable,
		Slot:       int64(obj.Slot),
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

func fromAccountModel(obj *accountModel) *account.Record {
	return &account.Record{
		Id:         uint64(obj.Id.Int64),
		Address:    obj.Address,
		Owner:      obj.Owner,
		Lamports:   uint64(obj.Lamports),
		Data:       obj.Data,
		Executable: obj.Executable,
		Slot:       uint64(obj.Slot),
		UpdatedAt:  obj.UpdatedAt.UTC(),
	}
}

func (m *accountModel) txSave(ctx context.Context, tx *sqlx.Tx) error {
	query := `INSERT INTO ` + accountTableName + `
		(address, owner, lamports, data, executable, slot, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (address)
		DO UPDATE
			SET owner = $2, lamports = $3, data = $4, executable = $5, slot = $6, updated_at = $7
			WHERE ` + accountTableName + `.address = $1
		RETURNING
			` + allAccountFields

	return tx.QueryRowxContext(
		ctx,
		query,
		m.Address,
		m.Owner,
		m.Lamports,
		m.Data,
		m.Executable,
		m.Slot,
		m.UpdatedAt,
	).StructScan(m)
}

func dbGetCount(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res uint64

	query := `SELECT COUNT(*) FROM ` + accountTableName
	err := db.GetContext(ctx, &res, query)
	if err != nil {
		return 0, err
	}

	return res, nil
}

func dbGetAccount(ctx context.Context, db *sqlx.DB, address string) (*accountModel, error) {
	res := &accountModel{}

	query := `SELECT ` + allAccountFields + `
		FROM ` + accountTableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAccounts(ctx context.Context, db *sqlx.DB, addresses []string) ([]*accountModel, error) {
	res := []*accountModel{}
	if len(addresses) == 0 {
		return res, nil
	}

	query, args, err := sqlx.In(`SELECT `+allAccountFields+`
		FROM `+accountTableName+`
		WHERE address IN (?)`, addresses)
	if err != nil {
		return nil, err
	}

	err = db.SelectContext(ctx, &res, db.Rebind(query), args...)
	if err != nil && !pgutil.IsNoRows(err) {
		return nil, err
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*accountModel, error) {
	res := []*accountModel{}

	query := `SELECT ` + allAccountFields + `
		FROM ` + accountTableName + `
		WHERE owner = $1
		ORDER BY address ASC`

	err := db.SelectContext(ctx, &res, query, owner)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}

	return res, nil
}
