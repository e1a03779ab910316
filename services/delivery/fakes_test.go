package delivery

import (
	"context"
	"sync"

	shipmentRepo "droply/database/repository/shipment"
	"droply/models"
	walletSvc "droply/services/wallet"
)

// memShipmentRepo is an in-memory ShipmentRepository with the same version
// semantics as the Mongo implementation: ReplaceCAS only lands when the
// stored version matches the version the caller read.
type memShipmentRepo struct {
	mu    sync.Mutex
	store map[string]models.Shipment

	// failNextCAS makes the next N ReplaceCAS calls lose their version
	// race, simulating concurrent writers.
	failNextCAS int
}

func newMemShipmentRepo() *memShipmentRepo {
	return &memShipmentRepo{store: make(map[string]models.Shipment)}
}

func (r *memShipmentRepo) Create(_ context.Context, s *models.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Version = 1
	r.store[s.ID] = cloneShipment(*s)
	return nil
}

func (r *memShipmentRepo) GetByID(_ context.Context, id string) (*models.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.store[id]
	if !ok {
		return nil, shipmentRepo.ErrNotFound
	}
	out := cloneShipment(s)
	return &out, nil
}

func (r *memShipmentRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Shipment
	for _, s := range r.store {
		if s.OwnerID == ownerID {
			out = append(out, cloneShipment(s))
		}
	}
	return out, nil
}

func (r *memShipmentRepo) ListOpen(_ context.Context) ([]models.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Shipment
	for _, s := range r.store {
		if s.Status == models.ShipmentStatusOpen || s.Status == models.ShipmentStatusBidAccepted {
			out = append(out, cloneShipment(s))
		}
	}
	return out, nil
}

func (r *memShipmentRepo) ReplaceCAS(_ context.Context, s *models.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.store[s.ID]
	if !ok {
		return shipmentRepo.ErrNotFound
	}
	if r.failNextCAS > 0 {
		r.failNextCAS--
		return shipmentRepo.ErrVersionConflict
	}
	if current.Version != s.Version {
		return shipmentRepo.ErrVersionConflict
	}
	s.Version++
	r.store[s.ID] = cloneShipment(*s)
	return nil
}

func (r *memShipmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return shipmentRepo.ErrNotFound
	}
	delete(r.store, id)
	return nil
}

func cloneShipment(s models.Shipment) models.Shipment {
	bids := make([]models.Bid, len(s.Bids))
	copy(bids, s.Bids)
	s.Bids = bids
	if s.Payment != nil {
		p := *s.Payment
		s.Payment = &p
	}
	return s
}

// fakeWallet records credits and debits without a backing store. Debits fail
// with ErrInsufficientFunds once the configured balance is exhausted.
type fakeWallet struct {
	mu      sync.Mutex
	balance float64
	credits []walletCall
	debits  []walletCall
}

type walletCall struct {
	userID string
	amount float64
	ref    string
}

func newFakeWallet(balance float64) *fakeWallet {
	return &fakeWallet{balance: balance}
}

func (w *fakeWallet) EnsureWallet(_ context.Context, userID string) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID}, nil
}

func (w *fakeWallet) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &models.Wallet{UserID: userID, Balance: w.balance, AvailableBalance: w.balance}, nil
}

func (w *fakeWallet) Credit(_ context.Context, userID string, amount float64, meta walletSvc.TxnMeta) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
	w.credits = append(w.credits, walletCall{userID: userID, amount: amount, ref: meta.ReferenceID})
	return nil
}

func (w *fakeWallet) Debit(_ context.Context, userID string, amount float64, meta walletSvc.TxnMeta) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if amount > w.balance {
		return walletSvc.ErrInsufficientFunds
	}
	w.balance -= amount
	w.debits = append(w.debits, walletCall{userID: userID, amount: amount, ref: meta.ReferenceID})
	return nil
}

func (w *fakeWallet) Withdraw(context.Context, string, float64, string) error { return nil }

func (w *fakeWallet) SetBankAccount(context.Context, string, models.BankAccount) error { return nil }

func (w *fakeWallet) SetUPIHandle(context.Context, string, string) error { return nil }

// captureNotifier collects published events for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	events []models.Event
}

func (n *captureNotifier) Publish(_ context.Context, event models.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) byType(eventType string) []models.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.Event
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
