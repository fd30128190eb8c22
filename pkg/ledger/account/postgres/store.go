package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/counter-program/pkg/ledger/account"

	pgutil "github.com/code-payments/counter-program/pkg/database/postgres"
)

type store struct {
	db *sqlx.DB
}

func New(db *sql.DB) account.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Count returns the total count of accounts.
func (s *store) Count(ctx context.Context) (uint64, error) {
	return dbGetCount(ctx, s.db)
}

// Get finds the account record for a given address.
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	obj, err := dbGetAccount(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromAccountModel(obj), nil
}

// GetMultiple finds the account records for a set of addresses.
func (s *store) GetMultiple(ctx context.Context, addresses ...string) ([]*account.Record, error) {
	models, err := dbGetAccounts(ctx, s.db, addresses)
	if err != nil {
		return nil, err
	}

	byAddress := make(map[string]*accountModel, len(models))
	for _, model := range models {
		byAddress[model.Address] = model
	}

	res := make([]*account.Record, len(addresses))
	for i, address := range addresses {
		if model, ok := byAddress[address]; ok {
			res[i] = fromAccountModel(model)
		}
	}
	return res, nil
}

// GetAllByOwner returns all accounts owned by a program.
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*account.Record, len(models))
	for i, model := range models {
		res[i] = fromAccountModel(model)
	}
	return res, nil
}

// SaveAll creates or updates every record within a single DB transaction.
func (s *store) SaveAll(ctx context.Context, records ...*account.Record) error {
	models := make([]*accountModel, len(records))
	for i, record := range records {
		model, err := toAccountModel(record)
		if err != nil {
			return err
		}
		models[i] = model
	}

	err := pgutil.ExecuteRetryable(ctx, func() error {
		return pgutil.ExecuteInTx(ctx, s.db, sql.LevelSerializable, func(tx *sqlx.Tx) error {
			for _, model := range models {
				if err := model.txSave(ctx, tx); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	for i, model := range models {
		fromAccountModel(model).CopyTo(records[i])
	}
	return nil
}
