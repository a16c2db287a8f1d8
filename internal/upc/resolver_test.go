package upc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mrosen/ebay-pricer/internal/model"
)

type fakeProvider struct {
	name  string
	info  *model.ProductInfo
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Lookup(ctx context.Context, code string) (*model.ProductInfo, error) {
	f.calls++
	return f.info, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"194252056561", "194252056561"},
		{"1-94252-05656-1", "194252056561"},
		{" 194252 056561 ", "194252056561"},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLookupEmptyCode(t *testing.T) {
	p := &fakeProvider{name: "a"}
	r := NewResolver([]Provider{p}, WithLogger(quietLogger()))

	for _, code := range []string{"", "  ", "no-digits"} {
		if _, ok := r.Lookup(context.Background(), code); ok {
			t.Errorf("Lookup(%q) ok = true, want false", code)
		}
	}
	// No provider may be consulted for an empty code.
	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
}

func TestLookupChainOrder(t *testing.T) {
	first := &fakeProvider{name: "first"}
	second := &fakeProvider{name: "second", info: &model.ProductInfo{Title: "MacBook Air", Source: "second"}}
	third := &fakeProvider{name: "third", info: &model.ProductInfo{Title: "wrong", Source: "third"}}

	r := NewResolver([]Provider{first, second, third}, WithLogger(quietLogger()))

	info, ok := r.Lookup(context.Background(), "194252056561")
	if !ok {
		t.Fatal("Lookup ok = false, want true")
	}
	if info.Source != "second" {
		t.Errorf("Source = %q, want second", info.Source)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.calls, second.calls)
	}
	// The chain stops at the first hit.
	if third.calls != 0 {
		t.Errorf("third provider called %d times, want 0", third.calls)
	}
}

func TestLookupProviderErrorContinues(t *testing.T) {
	failing := &fakeProvider{name: "failing", err: errors.New("quota exceeded")}
	working := &fakeProvider{name: "working", info: &model.ProductInfo{Title: "iPad Air", Source: "working"}}

	r := NewResolver([]Provider{failing, working}, WithLogger(quietLogger()))

	info, ok := r.Lookup(context.Background(), "194252056561")
	if !ok {
		t.Fatal("Lookup ok = false, want true")
	}
	if info.Source != "working" {
		t.Errorf("Source = %q, want working", info.Source)
	}
}

func TestLookupAllMiss(t *testing.T) {
	r := NewResolver([]Provider{
		&fakeProvider{name: "a"},
		&fakeProvider{name: "b", err: errors.New("down")},
	}, WithLogger(quietLogger()))

	if info, ok := r.Lookup(context.Background(), "194252056561"); ok || info != nil {
		t.Errorf("Lookup = (%v, %v), want (nil, false)", info, ok)
	}
}

func TestLookupSessionCache(t *testing.T) {
	p := &fakeProvider{name: "a", info: &model.ProductInfo{Title: "MacBook Air"}}
	r := NewResolver([]Provider{p}, WithLogger(quietLogger()))

	for range 3 {
		if _, ok := r.Lookup(context.Background(), "194252056561"); !ok {
			t.Fatal("Lookup ok = false, want true")
		}
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (session cache)", p.calls)
	}

	// Formatting variants normalize to the same key.
	if _, ok := r.Lookup(context.Background(), "1-94252-05656-1"); !ok {
		t.Fatal("Lookup of formatted code ok = false, want true")
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times after formatted lookup, want 1", p.calls)
	}
}

func TestLookupMissesNotCached(t *testing.T) {
	p := &fakeProvider{name: "a"}
	r := NewResolver([]Provider{p}, WithLogger(quietLogger()))

	r.Lookup(context.Background(), "194252056561")
	r.Lookup(context.Background(), "194252056561")

	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2 (misses are retried)", p.calls)
	}
}
