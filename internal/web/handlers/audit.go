package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// auditLogLimit caps retained entries; older ones are dropped.
const auditLogLimit = 1000

// AuditEntry records one admin action.
type AuditEntry struct {
	ID     string    `json:"id"`
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
	Detail string    `json:"detail"`
}

// AuditLog is an in-memory record of admin actions, newest first.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends an entry and returns its ID.
func (l *AuditLog) Record(action, detail string) string {
	entry := AuditEntry{
		ID:     uuid.NewString(),
		Time:   time.Now(),
		Action: action,
		Detail: detail,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if len(l.entries) > auditLogLimit {
		l.entries = l.entries[len(l.entries)-auditLogLimit:]
	}
	return entry.ID
}

// Entries returns all retained entries, newest first.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AuditEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
