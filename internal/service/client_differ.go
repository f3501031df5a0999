// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/models"
	"golang.org/x/text/unicode/norm"
)

// DefaultVolatileKeys are content keys written by either side on every
// mutation. They are stripped at any depth before fingerprinting.
var DefaultVolatileKeys = []string{"lastUpdated", "updated_at", "updatedAt"}

type snapshotDiffer struct {
	volatile map[string]struct{}
}

// NewSnapshotDiffer creates a differ ignoring volatileKeys in content.
// With no keys given, [DefaultVolatileKeys] are used.
func NewSnapshotDiffer(volatileKeys ...string) SnapshotDiffer {
	if len(volatileKeys) == 0 {
		volatileKeys = DefaultVolatileKeys
	}

	volatile := make(map[string]struct{}, len(volatileKeys))
	for _, k := range volatileKeys {
		volatile[k] = struct{}{}
	}
	return &snapshotDiffer{volatile: volatile}
}

func (d *snapshotDiffer) ShouldPersist(current, baseline models.Record) bool {
	if baseline.IsEmpty() {
		return !current.IsEmpty()
	}

	cur, err := d.Fingerprint(current)
	if err != nil {
		return true
	}
	base, err := d.Fingerprint(baseline)
	if err != nil {
		return true
	}

	return cur != base
}

// Fingerprint hashes id, owner, client side id and content. LastUpdated
// and volatile content keys are left out. Keys are sorted, strings are NFC
// normalised and HTML is not escaped, so equal records always produce equal
// bytes.
func (d *snapshotDiffer) Fingerprint(record models.Record) (string, error) {
	content, err := d.canonicalContent(record.Content)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"id":             norm.NFC.String(record.ID),
		"client_side_id": norm.NFC.String(record.ClientSideID),
		"owner_id":       record.OwnerID,
		"content":        content,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("encode fingerprint payload: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// canonicalContent round-trips content through JSON so that typed values
// (structs, typed slices) and their generic form compare equal, then strips
// volatile keys.
func (d *snapshotDiffer) canonicalContent(content models.Content) (any, error) {
	if len(content) == 0 {
		return map[string]any{}, nil
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	return d.strip(generic), nil
}

func (d *snapshotDiffer) strip(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if _, skip := d.volatile[k]; skip {
				continue
			}
			out[norm.NFC.String(k)] = d.strip(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = d.strip(item)
		}
		return out
	case string:
		return norm.NFC.String(val)
	default:
		return val
	}
}
