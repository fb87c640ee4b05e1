package taskauth

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func auditTestConfig() Config {
	cfg := testConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 64
	return cfg
}

func collectEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sink.Events():
			if ev.EventType == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}

func TestAuditLoginEventsReachSink(t *testing.T) {
	sink := NewChannelSink(64)
	store := newMockStore()
	engine, err := New().
		WithConfig(auditTestConfig()).
		WithUserStore(store).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	pub := registerTestUser(t, engine, "alice@example.com", "Sup3r-secret")

	ctx := WithClientIP(context.Background(), "203.0.113.7")
	if _, _, err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	ev := collectEvent(t, sink, "login_success")
	if !ev.Success {
		t.Fatal("expected success event")
	}
	if ev.UserID != pub.ID {
		t.Fatalf("expected user id %s, got %s", pub.ID, ev.UserID)
	}
	if ev.IP != "203.0.113.7" {
		t.Fatalf("expected caller address on event, got %q", ev.IP)
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("expected timestamp set")
	}
}

func TestAuditFailureEventCarriesCoarseCodeOnly(t *testing.T) {
	sink := NewChannelSink(64)
	store := newMockStore()
	engine, err := New().
		WithConfig(auditTestConfig()).
		WithUserStore(store).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	registerTestUser(t, engine, "alice@example.com", "Sup3r-secret")

	engine.Login(context.Background(), "alice@example.com", "Wrong-pass1")

	ev := collectEvent(t, sink, "login_failure")
	if ev.Success {
		t.Fatal("expected failure event")
	}
	if ev.Error == "" {
		t.Fatal("expected an error code")
	}
	if strings.Contains(ev.Error, "Wrong-pass1") {
		t.Fatal("audit events must never carry credentials")
	}
}

func TestAuditResetRequestIndistinguishableForGhostEmail(t *testing.T) {
	sink := NewChannelSink(64)
	store := newMockStore()
	engine, err := New().
		WithConfig(auditTestConfig()).
		WithUserStore(store).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if err := engine.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	ev := collectEvent(t, sink, "password_reset_request")
	if !ev.Success {
		t.Fatal("ghost email must audit as success to match the visible outcome")
	}
	if ev.Metadata["enumeration_safe"] != "true" {
		t.Fatalf("expected enumeration_safe marker, got %v", ev.Metadata)
	}
}

func TestAuditDeliveryFailureCode(t *testing.T) {
	sink := NewChannelSink(64)
	store := newMockStore()
	engine, err := New().
		WithConfig(auditTestConfig()).
		WithUserStore(store).
		WithMailer(&mockMailer{err: errors.New("smtp down")}).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	registerTestUser(t, engine, "alice@example.com", "Sup3r-secret")

	if err := engine.RequestPasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	ev := collectEvent(t, sink, "password_reset_delivery")
	if ev.Success {
		t.Fatal("expected failure event")
	}
	// The mailer failed, not the store; the code says so.
	if ev.Error != "delivery_failed" {
		t.Fatalf("expected delivery_failed code, got %q", ev.Error)
	}
	if ev.Metadata["reason"] != "delivery_failed" {
		t.Fatalf("expected reason metadata, got %v", ev.Metadata)
	}
}

func TestJSONWriterSinkWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{EventType: "login_success", Success: true})
	sink.Emit(context.Background(), AuditEvent{EventType: "login_failure", Success: false, Error: "invalid_credentials"})

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
		var ev AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := blockingSink{release: block}

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer, the rest drop.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "login_failure"})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}

	close(block)
	d.Close()
}

type blockingSink struct {
	release chan struct{}
}

func (s blockingSink) Emit(_ context.Context, _ AuditEvent) {
	<-s.release
}
