package domain

import (
	"encoding/json"
	"strings"
	"time"

	"oticas/internal/errors"
)

// HistoryDateLayout matches the pt-BR locale string the store front has always written.
const HistoryDateLayout = "02/01/2006, 15:04:05"

type HistoryEntry struct {
	Status Stage  `json:"status"`
	Date   string `json:"date"`
}

// ParseHistory decodes the History column. Blank, null and non-array values
// yield an empty history; undecodable text also returns a MalformedDataError
// so callers can log it. Elements are read one at a time: non-object elements
// are skipped and a field of the wrong type never drops its neighbours.
// Every entry status is normalized.
func ParseHistory(text string) ([]HistoryEntry, error) {
	if strings.TrimSpace(text) == "" {
		return []HistoryEntry{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return []HistoryEntry{}, errors.NewMalformedDataError("history", err)
	}

	entries := make([]HistoryEntry, 0, len(raw))
	for _, element := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(element, &fields); err != nil || fields == nil {
			continue
		}
		entries = append(entries, HistoryEntry{
			Status: NormalizeStatus(stringField(fields["status"])),
			Date:   historyDate(fields["date"]),
		})
	}
	return entries, nil
}

func stringField(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return ""
	}
	return s
}

// historyDate keeps non-string dates as their JSON text.
func historyDate(value json.RawMessage) string {
	if len(value) == 0 || string(value) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}

// EncodeHistory serializes entries for the History column.
func EncodeHistory(entries []HistoryEntry) (string, error) {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatHistoryDate renders t in loc using HistoryDateLayout. A nil loc means UTC.
func FormatHistoryDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(HistoryDateLayout)
}

// AppendHistory returns a new slice with {status, date} appended; entries is left untouched.
func AppendHistory(entries []HistoryEntry, status Stage, date string) []HistoryEntry {
	out := make([]HistoryEntry, len(entries), len(entries)+1)
	copy(out, entries)
	return append(out, HistoryEntry{Status: status, Date: date})
}
