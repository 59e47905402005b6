package memory

import (
	"context"
	"net/http"
	"sync"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

type Memory struct {
	logger   ulogger.Logger
	versions map[chainhash.Hash][]*bounty.Entry
	boxes    map[chainhash.Hash]*bounty.Entry
	mu       sync.RWMutex
}

func New(logger ulogger.Logger) *Memory {
	return &Memory{
		logger:   logger,
		versions: make(map[chainhash.Hash][]*bounty.Entry),
		boxes:    make(map[chainhash.Hash]*bounty.Entry),
	}
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "Memory Store available", nil
}

func (m *Memory) Put(_ context.Context, box *model.Box, status model.Status) error {
	tokenID, err := bounty.TokenID(box)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.boxes[box.BoxID]; ok {
		return nil
	}

	entry := &bounty.Entry{Box: box, Status: status}
	m.boxes[box.BoxID] = entry
	m.versions[tokenID] = append(m.versions[tokenID], entry)

	return nil
}

func (m *Memory) Latest(_ context.Context, tokenID chainhash.Hash) (*bounty.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.versions[tokenID]
	if len(versions) == 0 {
		return nil, errors.NewRecordNotFoundError("bounty %s not found", tokenID)
	}

	return copyEntry(versions[len(versions)-1]), nil
}

func (m *Memory) History(_ context.Context, tokenID chainhash.Hash) ([]*bounty.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := m.versions[tokenID]
	if len(versions) == 0 {
		return nil, errors.NewRecordNotFoundError("bounty %s not found", tokenID)
	}

	history := make([]*bounty.Entry, 0, len(versions))
	for _, e := range versions {
		history = append(history, copyEntry(e))
	}

	return history, nil
}

func (m *Memory) MarkSpent(_ context.Context, boxID, spentBy chainhash.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.boxes[boxID]
	if !ok {
		return errors.NewRecordNotFoundError("box %s not found", boxID)
	}

	if entry.SpentBy != nil {
		return errors.NewStaleRecordError("box %s already spent by %s", boxID, entry.SpentBy)
	}

	entry.SpentBy = &spentBy

	return nil
}

func (m *Memory) SetStatus(_ context.Context, tokenID chainhash.Hash, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	versions := m.versions[tokenID]
	if len(versions) == 0 {
		return errors.NewRecordNotFoundError("bounty %s not found", tokenID)
	}

	versions[len(versions)-1].Status = status

	return nil
}

func (m *Memory) Close() error {
	return nil
}

func copyEntry(e *bounty.Entry) *bounty.Entry {
	c := *e
	if e.SpentBy != nil {
		spentBy := *e.SpentBy
		c.SpentBy = &spentBy
	}

	return &c
}
