package reconcile

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type call struct {
	Op     string
	Domain string
	IP     string
}

type mockWriter struct {
	mu    sync.Mutex
	calls []call

	addFunc    func(ctx context.Context, fqdn, ip string) (int, error)
	deleteFunc func(ctx context.Context, fqdn, ip string) (int, error)
}

func (m *mockWriter) record(op, fqdn, ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{Op: op, Domain: fqdn, IP: ip})
}

func (m *mockWriter) AddRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error) {
	m.record("add", fqdn, ip)
	if m.addFunc != nil {
		return m.addFunc(ctx, fqdn, ip)
	}
	return 200, nil
}

func (m *mockWriter) DeleteRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error) {
	m.record("delete", fqdn, ip)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, fqdn, ip)
	}
	return 200, nil
}

func (m *mockWriter) Calls() []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]call(nil), m.calls...)
}

// memStore is an in-memory record store with Pi-hole delete semantics:
// a delete only succeeds for an exact domain and ip pair.
type memStore struct {
	mu      sync.Mutex
	session domain.Session
	records domain.Mapping

	authErr  error
	fetchErr error
}

func newMemStore(records domain.Mapping) *memStore {
	copied := domain.Mapping{}
	for k, v := range records {
		copied[k] = v
	}
	return &memStore{
		session: domain.Session{Token: "tok", Cookie: "PHPSESSID=abc"},
		records: copied,
	}
}

func (s *memStore) Authenticate(ctx context.Context) (domain.Session, error) {
	if s.authErr != nil {
		return domain.Session{}, s.authErr
	}
	return s.session, nil
}

func (s *memStore) FetchRecords(ctx context.Context, sess domain.Session) (domain.Mapping, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := domain.Mapping{}
	for k, v := range s.records {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) AddRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[fqdn]; exists {
		return 200, nil
	}
	s.records[fqdn] = ip
	return 200, nil
}

func (s *memStore) DeleteRecord(ctx context.Context, sess domain.Session, fqdn, ip string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[fqdn] == ip {
		delete(s.records, fqdn)
	}
	return 200, nil
}

type staticSource struct {
	mapping domain.Mapping
	err     error
}

func (s staticSource) FetchReservations(ctx context.Context) (domain.Mapping, error) {
	return s.mapping, s.err
}
