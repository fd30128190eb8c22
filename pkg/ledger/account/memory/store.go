package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/counter-program/pkg/ledger/account"
)

type store struct {
	mu      sync.Mutex
	records map[string]*account.Record
	last    uint64
}

type ByAddress []*account.Record

func (a ByAddress) Len() int           { return len(a) }
func (a ByAddress) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ByAddress) Less(i, j int) bool { return a[i].Address < a[j].Address }

func New() account.Store {
	return &store{
		records: make(map[string]*account.Record),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.records = make(map[string]*account.Record)
	s.last = 0
	s.mu.Unlock()
}

func (s *store) Count(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uint64(len(s.records)), nil
}

func (s *store) Get(_ context.Context, address string) (*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[address]
	if !ok {
		return nil, account.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

func (s *store) GetMultiple(_ context.Context, addresses ...string) ([]*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*account.Record, len(addresses))
	for i, address := range addresses {
		if item, ok := s.records[address]; ok {
			cloned := item.Clone()
			res[i] = &cloned
		}
	}
	return res, nil
}

func (s *store) GetAllByOwner(_ context.Context, owner string) ([]*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*account.Record
	for _, item := range s.records {
		if item.Owner == owner {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}

	sort.Sort(ByAddress(res))
	return res, nil
}

func (s *store) SaveAll(_ context.Context, records ...*account.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, record := range records {
		if existing, ok := s.records[record.Address]; ok {
			record.Id = existing.Id
		} else {
			s.last++
			record.Id = s.last
		}
		record.UpdatedAt = now

		cloned := record.Clone()
		s.records[record.Address] = &cloned
	}

	return nil
}
