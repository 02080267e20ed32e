package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChangePayload holds a JSON snapshot of an entity before or after a change.
// The zero value is "not set" (creates have no Before, deletes no After).
type ChangePayload struct {
	raw json.RawMessage
}

// PayloadOf marshals an entity into a ChangePayload.
func PayloadOf[T any](value T) (ChangePayload, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return ChangePayload{}, fmt.Errorf("encode change payload: %w", err)
	}
	return ChangePayload{raw: raw}, nil
}

// Defined reports whether the payload carries an entity.
func (p ChangePayload) Defined() bool {
	return len(p.raw) > 0 && !bytes.Equal(p.raw, []byte("null"))
}

// Raw returns a copy of the encoded entity, or nil when undefined.
func (p ChangePayload) Raw() json.RawMessage {
	if !p.Defined() {
		return nil
	}
	return append(json.RawMessage(nil), p.raw...)
}

// Decode unmarshals the payload into dst.
func (p ChangePayload) Decode(dst any) error {
	if !p.Defined() {
		return fmt.Errorf("decode change payload: payload not set")
	}
	return json.Unmarshal(p.raw, dst)
}

// MarshalJSON implements json.Marshaler.
func (p ChangePayload) MarshalJSON() ([]byte, error) {
	if !p.Defined() {
		return []byte("null"), nil
	}
	return p.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ChangePayload) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.raw = nil
		return nil
	}
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// DecodePayload is a typed convenience over ChangePayload.Decode.
func DecodePayload[T any](p ChangePayload) (T, error) {
	var out T
	err := p.Decode(&out)
	return out, err
}
