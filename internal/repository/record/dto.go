package record

import (
	"encoding/json"
	"fmt"
	"time"

	domrec "github.com/kailas-cloud/complydex/internal/domain/record"
)

// recordDoc is the JSON document stored per record. The *Ms fields mirror
// the ISO timestamps as epoch millis so the index can range-filter and sort.
type recordDoc struct {
	ID                 string   `json:"id"`
	Kind               string   `json:"kind"`
	Name               string   `json:"name,omitempty"`
	ContractName       string   `json:"contractName,omitempty"`
	DisplayName        string   `json:"displayName,omitempty"`
	ContractNumber     string   `json:"contractNumber,omitempty"`
	Description        string   `json:"description,omitempty"`
	Vendor             string   `json:"vendor,omitempty"`
	Department         string   `json:"department,omitempty"`
	Status             string   `json:"status,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	ContractType       string   `json:"contractType,omitempty"`
	Amount             *float64 `json:"amount,omitempty"`
	ContractExpiryDate string   `json:"contractExpiryDate,omitempty"`
	ExpiryMs           *int64   `json:"expiryMs,omitempty"`
	AssignedManagers   []string `json:"assignedManagers,omitempty"`
	Compliance         []string `json:"compliance,omitempty"`
	CreatedAt          string   `json:"createdAt"`
	CreatedAtMs        int64    `json:"createdAtMs"`
	UpdatedAt          string   `json:"updatedAt"`
	UpdatedAtMs        int64    `json:"updatedAtMs"`
}

func toDoc(r *domrec.Record) recordDoc {
	d := recordDoc{
		ID:                 r.ID,
		Kind:               string(r.Kind),
		Name:               r.Name,
		ContractName:       r.ContractName,
		DisplayName:        r.DisplayName(),
		ContractNumber:     r.ContractNumber,
		Description:        r.Description,
		Vendor:             r.Vendor,
		Department:         r.Department,
		Status:             r.Status,
		Priority:           r.Priority,
		ContractType:       r.ContractType,
		Amount:             r.Amount,
		ContractExpiryDate: r.ContractExpiryDate,
		AssignedManagers:   r.AssignedManagers,
		Compliance:         r.Compliance,
		CreatedAt:          r.CreatedAt.UTC().Format(time.RFC3339Nano),
		CreatedAtMs:        r.CreatedAt.UnixMilli(),
		UpdatedAt:          r.UpdatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAtMs:        r.UpdatedAt.UnixMilli(),
	}
	if t, ok := r.ExpiryTime(); ok {
		ms := t.UnixMilli()
		d.ExpiryMs = &ms
	}
	return d
}

func (d *recordDoc) toDomain() (domrec.Record, error) {
	kind, err := domrec.ParseKind(d.Kind)
	if err != nil {
		return domrec.Record{}, err
	}
	rec := domrec.Record{
		ID:                 d.ID,
		Kind:               kind,
		Name:               d.Name,
		ContractName:       d.ContractName,
		ContractNumber:     d.ContractNumber,
		Description:        d.Description,
		Vendor:             d.Vendor,
		Department:         d.Department,
		Status:             d.Status,
		Priority:           d.Priority,
		ContractType:       d.ContractType,
		Amount:             d.Amount,
		ContractExpiryDate: d.ContractExpiryDate,
		AssignedManagers:   d.AssignedManagers,
		Compliance:         d.Compliance,
		CreatedAt:          parseStamp(d.CreatedAt, d.CreatedAtMs),
		UpdatedAt:          parseStamp(d.UpdatedAt, d.UpdatedAtMs),
	}
	return rec, nil
}

// parseStamp prefers the ISO string and falls back to the millis mirror.
func parseStamp(iso string, ms int64) time.Time {
	if iso != "" {
		if t, err := time.Parse(time.RFC3339Nano, iso); err == nil {
			return t
		}
	}
	return time.UnixMilli(ms).UTC()
}

func marshalRecord(r *domrec.Record) ([]byte, error) {
	data, err := json.Marshal(toDoc(r))
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", r.ID, err)
	}
	return data, nil
}

func unmarshalRecord(raw []byte) (domrec.Record, error) {
	var d recordDoc
	if err := json.Unmarshal(raw, &d); err != nil {
		return domrec.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return d.toDomain()
}
