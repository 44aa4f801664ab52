package verify

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
	"gotest.tools/assert"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// startServer runs an in-process DNS server answering A queries from records.
func startServer(t *testing.T, records map[string]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NilError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		q := req.Question[0]
		if ip, ok := records[q.Name]; ok && q.Qtype == dns.TypeA {
			m.Answer = append(m.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 2},
				A:   net.ParseIP(ip),
			})
		} else {
			m.Rcode = dns.RcodeNameError
		}
		w.WriteMsg(m)
	})

	started := make(chan struct{})
	server := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go server.ActivateAndServe()
	<-started
	t.Cleanup(func() { server.Shutdown() })

	return pc.LocalAddr().String()
}

func TestVerify_AgainstServer(t *testing.T) {
	addr := startServer(t, map[string]string{
		"host1.example.com.": "10.0.0.5",
		"host2.example.com.": "10.0.0.66",
	})
	r := New(addr, time.Second, newTestLogger())

	mismatches, err := r.Verify(context.Background(), domain.Mapping{
		"host1.example.com": "10.0.0.5",
		"host2.example.com": "10.0.0.6",
		"host3.example.com": "10.0.0.7",
	})

	assert.NilError(t, err)
	assert.DeepEqual(t, []domain.Mismatch{
		{Domain: "host2.example.com", Expected: "10.0.0.6", Got: []string{"10.0.0.66"}},
		{Domain: "host3.example.com", Expected: "10.0.0.7"},
	}, mismatches)
}

type mockExchanger struct {
	exchangeFunc func(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

func (m *mockExchanger) ExchangeContext(ctx context.Context, msg *dns.Msg, address string) (*dns.Msg, time.Duration, error) {
	return m.exchangeFunc(ctx, msg, address)
}

func TestVerify_ExchangeErrorIsMismatch(t *testing.T) {
	r := New("10.0.0.2", 0, newTestLogger())
	r.client = &mockExchanger{
		exchangeFunc: func(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error) {
			assert.Equal(t, "10.0.0.2:53", address)
			assert.Equal(t, "a.example.com.", m.Question[0].Name)
			return nil, 0, errors.New("i/o timeout")
		},
	}

	mismatches, err := r.Verify(context.Background(), domain.Mapping{"a.example.com": "10.0.0.1"})

	assert.NilError(t, err)
	assert.Equal(t, 1, len(mismatches))
	assert.Equal(t, "a.example.com", mismatches[0].Domain)
}

func TestVerify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New("10.0.0.2:5353", 0, newTestLogger())
	_, err := r.Verify(ctx, domain.Mapping{"a.example.com": "10.0.0.1"})

	assert.Assert(t, errors.Is(err, context.Canceled))
}

func TestWithDefaultPort(t *testing.T) {
	assert.Equal(t, "10.0.0.2:53", withDefaultPort("10.0.0.2"))
	assert.Equal(t, "10.0.0.2:5353", withDefaultPort("10.0.0.2:5353"))
	assert.Equal(t, "pi.hole:53", withDefaultPort("pi.hole"))
	assert.Equal(t, "[fd00::2]:53", withDefaultPort("fd00::2"))
}
