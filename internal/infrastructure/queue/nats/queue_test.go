package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

func TestClassifyNATSError(t *testing.T) {
	if v := classifyNATSError(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed)); !v.Retryable || !v.RecordFailure {
		t.Fatalf("closed connection must be retryable, got %+v", v)
	}
	if v := classifyNATSError(context.Canceled); v.Retryable || v.RecordFailure {
		t.Fatalf("cancellation must be neither retried nor recorded, got %+v", v)
	}
	if v := classifyNATSError(nats.ErrBadSubject); v.Retryable || !v.RecordFailure {
		t.Fatalf("bad subject must be permanent, got %+v", v)
	}
}

func TestWrapTemporaryIfNeeded(t *testing.T) {
	err := wrapTemporaryIfNeeded(fmt.Errorf("nats publish: %w", nats.ErrNoServers))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}

	permanent := errors.New("payload rejected")
	if err := wrapTemporaryIfNeeded(permanent); domain.IsKind(err, domain.ErrTemporary) || !errors.Is(err, permanent) {
		t.Fatalf("permanent error must pass through, got %v", err)
	}
}

func TestEncodeSessionUsesWireNames(t *testing.T) {
	payload, err := EncodeSession(domain.Session{
		ID:        "s-1",
		CreatedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Text:      "договор",
		Category:  "civil",
	})
	if err != nil {
		t.Fatalf("EncodeSession() error = %v", err)
	}
	body := string(payload)
	for _, want := range []string{`"id":"s-1"`, `"createdAt":"2026-10-15T09:30:00Z"`, `"tags":[]`, `"matchedTemplateIds":[]`, `"file":null`, `"extracted":null`} {
		if !strings.Contains(body, want) {
			t.Fatalf("payload %s does not contain %s", body, want)
		}
	}
}

func TestDecodeSessionRejectsInvalidPayloads(t *testing.T) {
	for _, payload := range []string{`not json`, `{"text":"no id"}`} {
		if _, err := DecodeSession([]byte(payload)); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("DecodeSession(%s) expected ErrInvalidInput, got %v", payload, err)
		}
	}

	session, err := DecodeSession([]byte(`{"id":"s-2","category":"admin","tags":["жалоба"]}`))
	if err != nil {
		t.Fatalf("DecodeSession() error = %v", err)
	}
	if session.ID != "s-2" || session.Category != "admin" || len(session.Tags) != 1 {
		t.Fatalf("unexpected session: %+v", session)
	}
}
