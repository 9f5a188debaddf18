package language

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestToExternal(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"lowercase", "en", "EN", false},
		{"uppercase input", "DE", "DE", false},
		{"whitespace", "  fr ", "FR", false},
		{"unsupported", "xx", "", true},
		{"empty", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToExternal(tc.in)
			if tc.wantErr {
				var invalid *InvalidLocaleError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidLocaleError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFromExternal(t *testing.T) {
	got, err := FromExternal("NL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "nl" {
		t.Fatalf("got %q, want nl", got)
	}

	if _, err := FromExternal("zz"); err == nil {
		t.Fatal("expected error for unsupported code")
	}
}

func TestFallbackVariants(t *testing.T) {
	if got := ToExternalOrFallback("xx", "en"); got != "EN" {
		t.Fatalf("ToExternalOrFallback = %q, want EN", got)
	}
	if got := FromExternalOrFallback("XX", "de"); got != "de" {
		t.Fatalf("FromExternalOrFallback = %q, want de", got)
	}
	if got := ToExternalOrFallback("pl", "en"); got != "PL" {
		t.Fatalf("valid input must not fall back, got %q", got)
	}
}

func TestSetterMostRecentRequestWins(t *testing.T) {
	setter := NewSetter("en")

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		applied, err := setter.Set(context.Background(), "de", func(ctx context.Context, code string) (string, error) {
			close(firstStarted)
			<-releaseFirst
			return code, nil
		})
		if err != nil {
			t.Errorf("first set: %v", err)
		}
		if applied {
			t.Error("superseded request must not be applied")
		}
	}()

	<-firstStarted
	applied, err := setter.Set(context.Background(), "fr", func(ctx context.Context, code string) (string, error) {
		return code, nil
	})
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if !applied {
		t.Fatal("latest request must be applied")
	}

	// First request resolves after the second; its result is discarded.
	close(releaseFirst)
	wg.Wait()

	if got := setter.Value(); got != "fr" {
		t.Fatalf("expected fr to win, got %q", got)
	}
}

func TestSetterFailedLatestKeepsOldValue(t *testing.T) {
	setter := NewSetter("en")

	applied, err := setter.Set(context.Background(), "xx", func(ctx context.Context, code string) (string, error) {
		return "", &InvalidLocaleError{Code: code}
	})
	if applied {
		t.Fatal("failed apply must not report applied")
	}
	if err == nil {
		t.Fatal("expected error from failed apply")
	}
	if got := setter.Value(); got != "en" {
		t.Fatalf("value must be unchanged, got %q", got)
	}
}
