package oauth

import (
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenSlotEmpty(t *testing.T) {
	slot := NewTokenSlot()
	if slot.Get() != nil {
		t.Error("Get() on empty slot returned a token")
	}
}

func TestTokenSlotFreshToken(t *testing.T) {
	slot := NewTokenSlot()
	token := &oauth2.Token{
		AccessToken: "fresh-token",
		Expiry:      time.Now().Add(time.Hour),
	}
	slot.Set(token)

	got := slot.Get()
	if got == nil {
		t.Fatal("Get() returned nil for a fresh token")
	}
	if got.AccessToken != "fresh-token" {
		t.Errorf("AccessToken = %q, want %q", got.AccessToken, "fresh-token")
	}
}

func TestTokenSlotStaleWithinMargin(t *testing.T) {
	tests := []struct {
		name   string
		expiry time.Time
	}{
		{"already expired", time.Now().Add(-time.Minute)},
		{"expires inside margin", time.Now().Add(FreshnessMargin - time.Second)},
		{"expires exactly soon", time.Now().Add(time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewTokenSlot()
			slot.Set(&oauth2.Token{AccessToken: "t", Expiry: tt.expiry})
			if slot.Get() != nil {
				t.Error("Get() returned a token that expires within the freshness margin")
			}
		})
	}
}

func TestTokenSlotUnknownExpiry(t *testing.T) {
	slot := NewTokenSlot()
	slot.Set(&oauth2.Token{AccessToken: "no-expiry"})
	if slot.Get() != nil {
		t.Error("Get() returned a token with unknown expiry")
	}
}

func TestTokenSlotEmptyAccessToken(t *testing.T) {
	slot := NewTokenSlot()
	slot.Set(&oauth2.Token{Expiry: time.Now().Add(time.Hour)})
	if slot.Get() != nil {
		t.Error("Get() returned a token with empty access token")
	}
}

func TestTokenSlotClear(t *testing.T) {
	slot := NewTokenSlot()
	slot.Set(&oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(time.Hour)})
	slot.Clear()
	if slot.Get() != nil {
		t.Error("Get() returned a token after Clear()")
	}
}

func TestTokenSlotConcurrentAccess(t *testing.T) {
	slot := NewTokenSlot()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			slot.Set(&oauth2.Token{AccessToken: "t", Expiry: time.Now().Add(time.Hour)})
		}()
		go func() {
			defer wg.Done()
			slot.Get()
		}()
	}
	wg.Wait()
}
