package domain

import (
	"testing"

	"gotest.tools/assert"
)

func TestReservation_FQDN(t *testing.T) {
	testCases := []struct {
		name     string
		hostname string
		domain   string
		expected string
	}{
		{
			name:     "plain domain",
			hostname: "host1",
			domain:   "example.com",
			expected: "host1.example.com",
		},
		{
			name:     "leading dot stripped",
			hostname: "host1",
			domain:   ".example.com",
			expected: "host1.example.com",
		},
		{
			name:     "surrounding whitespace trimmed",
			hostname: " host1 ",
			domain:   "example.com",
			expected: "host1.example.com",
		},
		{
			name:     "nested suffix",
			hostname: "nas",
			domain:   "home.lan",
			expected: "nas.home.lan",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := Reservation{Hostname: tc.hostname, IPAddr: "10.0.0.5"}
			assert.Equal(t, tc.expected, r.FQDN(tc.domain))
		})
	}
}

func TestReservation_Valid(t *testing.T) {
	testCases := []struct {
		name     string
		r        Reservation
		expected bool
	}{
		{"both present", Reservation{Hostname: "a", IPAddr: "10.0.0.1"}, true},
		{"missing hostname", Reservation{IPAddr: "10.0.0.1"}, false},
		{"missing ip", Reservation{Hostname: "a"}, false},
		{"whitespace hostname", Reservation{Hostname: "  ", IPAddr: "10.0.0.1"}, false},
		{"empty", Reservation{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.r.Valid())
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeDomain(".example.com"))
	assert.Equal(t, "example.com", NormalizeDomain("example.com"))
	assert.Equal(t, "", NormalizeDomain(""))
}

func TestMapping_Domains_Sorted(t *testing.T) {
	m := Mapping{
		"c.example.com": "10.0.0.3",
		"a.example.com": "10.0.0.1",
		"b.example.com": "10.0.0.2",
	}

	assert.DeepEqual(t, []string{"a.example.com", "b.example.com", "c.example.com"}, m.Domains())
}

func TestMapping_Domains_Empty(t *testing.T) {
	assert.Equal(t, 0, len(Mapping{}.Domains()))
}

func TestSession_Valid(t *testing.T) {
	assert.Assert(t, Session{Token: "t", Cookie: "PHPSESSID=abc"}.Valid())
	assert.Assert(t, !Session{Token: "t"}.Valid())
	assert.Assert(t, !Session{Cookie: "PHPSESSID=abc"}.Valid())
}

func TestAction_String(t *testing.T) {
	add := Action{Kind: ActionAdd, Domain: "host1.example.com", IP: "10.0.0.5"}
	assert.Equal(t, "add host1.example.com 10.0.0.5", add.String())

	update := Action{Kind: ActionUpdate, Domain: "host1.example.com", IP: "10.0.0.5", PreviousIP: "10.0.0.9"}
	assert.Equal(t, "update host1.example.com 10.0.0.9 -> 10.0.0.5", update.String())
}

func TestReport_Failed(t *testing.T) {
	r := Report{Results: []Result{
		{AddStatus: 200},
		{Err: ErrNoActions},
		{AddStatus: 500},
	}}
	assert.Equal(t, 1, r.Failed())
}
