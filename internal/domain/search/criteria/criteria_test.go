package criteria

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/complydex/internal/domain"
	"github.com/kailas-cloud/complydex/internal/domain/record"
)

func num(v float64) *float64 { return &v }

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		filters   Filters
		wantParam string
	}{
		{"unknown type", Filters{Types: []record.Kind{"invoice"}}, "type"},
		{"negative min", Filters{AmountMin: num(-1)}, "amountMin"},
		{"negative max", Filters{AmountMax: num(-5)}, "amountMax"},
		{"min above max", Filters{AmountMin: num(10), AmountMax: num(5)}, "amountMin"},
		{"bad start", Filters{StartDate: "yesterday"}, "startDate"},
		{"bad end", Filters{EndDate: "2024-13-40"}, "endDate"},
		{"start after end", Filters{StartDate: "2024-06-02", EndDate: "2024-06-01"}, "startDate"},
		{"expiry inverted", Filters{ExpiryDateStart: "2025-01-01", ExpiryDateEnd: "2024-01-01"}, "expiryDateStart"},
		{"empty manager", Filters{AssignedManagers: []string{""}}, "assignedManagers"},
		{"empty compliance", Filters{Compliance: []string{"GDPR", ""}}, "compliance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", ve.Param, tt.wantParam)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Error("should unwrap to ErrValidation")
			}
		})
	}
}

func TestValidate_SameDayWindow(t *testing.T) {
	f := Filters{StartDate: "2024-06-01", EndDate: "2024-06-01"}
	if err := f.Validate(); err != nil {
		t.Fatalf("single-day window should be valid: %v", err)
	}
}

func TestIncludes(t *testing.T) {
	all := Filters{}
	if !all.Includes(record.KindContract) || !all.Includes(record.KindFile) {
		t.Error("empty type filter should admit every kind")
	}
	contracts := Filters{Types: []record.Kind{record.KindContract}}
	if !contracts.Includes(record.KindContract) {
		t.Error("contract should be included")
	}
	if contracts.Includes(record.KindFile) {
		t.Error("file should be excluded")
	}
}

func TestExpression_Empty(t *testing.T) {
	f := Filters{Types: []record.Kind{record.KindFile}}
	expr, err := f.Expression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsEmpty() {
		t.Errorf("type-only filter should not produce predicates, got %d", len(expr.Must()))
	}
}

func TestExpression_AllPredicates(t *testing.T) {
	f := Filters{
		Department:       "IT",
		Status:           "active",
		Priority:         "high",
		Vendor:           "Acme Corp",
		ContractType:     "MSA",
		AmountMin:        num(100),
		AmountMax:        num(500),
		StartDate:        "2024-01-01",
		EndDate:          "2024-01-31",
		ExpiryDateStart:  "2025-01-01T00:00:00Z",
		AssignedManagers: []string{"alice", "bob"},
		Compliance:       []string{"GDPR"},
	}
	expr, err := f.Expression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byKey := map[string]int{}
	for i, c := range expr.Must() {
		byKey[c.Key()] = i
	}
	for _, key := range []string{
		FieldDepartment, FieldStatus, FieldPriority, FieldVendor, FieldContractType,
		FieldAmount, FieldCreatedAt, FieldExpiry, FieldAssignedManagers, FieldCompliance,
	} {
		if _, ok := byKey[key]; !ok {
			t.Errorf("missing predicate for %s", key)
		}
	}
	if len(expr.Must()) != 10 {
		t.Errorf("Must() len = %d, want 10", len(expr.Must()))
	}

	created := expr.Must()[byKey[FieldCreatedAt]].Range()
	wantLo := float64(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	wantHi := float64(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli() - 1)
	if created.GTE() == nil || *created.GTE() != wantLo {
		t.Errorf("created lower bound = %v, want %v", created.GTE(), wantLo)
	}
	if created.LTE() == nil || *created.LTE() != wantHi {
		t.Errorf("created upper bound = %v, want %v (end of day)", created.LTE(), wantHi)
	}

	expiry := expr.Must()[byKey[FieldExpiry]].Range()
	if expiry.LTE() != nil {
		t.Error("expiry window should be open-ended above")
	}

	managers := expr.Must()[byKey[FieldAssignedManagers]]
	if len(managers.Values()) != 2 {
		t.Errorf("managers any-of = %v", managers.Values())
	}
}

func TestExpression_Invalid(t *testing.T) {
	f := Filters{AmountMin: num(9), AmountMax: num(1)}
	if _, err := f.Expression(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMatches(t *testing.T) {
	created := time.Date(2024, 1, 31, 18, 30, 0, 0, time.UTC)
	rec := record.Record{
		ID:                 "c-1",
		Kind:               record.KindContract,
		Department:         "IT",
		Status:             "active",
		Vendor:             "Acme Corp",
		Amount:             num(250),
		ContractExpiryDate: "2025-06-30",
		AssignedManagers:   []string{"alice"},
		Compliance:         []string{"SOC2", "GDPR"},
		CreatedAt:          created,
		UpdatedAt:          created,
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"no filters", Filters{}, true},
		{"department hit", Filters{Department: "IT"}, true},
		{"department is case sensitive", Filters{Department: "it"}, false},
		{"type excluded", Filters{Types: []record.Kind{record.KindFile}}, false},
		{"amount inclusive edges", Filters{AmountMin: num(250), AmountMax: num(250)}, true},
		{"amount below", Filters{AmountMin: num(251)}, false},
		{"end date covers whole day", Filters{EndDate: "2024-01-31"}, true},
		{"end date before", Filters{EndDate: "2024-01-30"}, false},
		{"start date after", Filters{StartDate: "2024-02-01"}, false},
		{"expiry window", Filters{ExpiryDateStart: "2025-06-01", ExpiryDateEnd: "2025-06-30"}, true},
		{"expiry outside", Filters{ExpiryDateEnd: "2025-05-31"}, false},
		{"manager any-of", Filters{AssignedManagers: []string{"bob", "alice"}}, true},
		{"manager miss", Filters{AssignedManagers: []string{"carol"}}, false},
		{"compliance any-of", Filters{Compliance: []string{"GDPR"}}, true},
		{"invalid filters", Filters{AmountMin: num(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(&rec); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_MissingOptionalFields(t *testing.T) {
	rec := record.Record{ID: "f-1", Kind: record.KindFile, Name: "scan.pdf"}
	if (&Filters{AmountMax: num(10)}).Matches(&rec) {
		t.Error("record without amount should not satisfy an amount filter")
	}
	if (&Filters{ExpiryDateStart: "2024-01-01"}).Matches(&rec) {
		t.Error("record without expiry should not satisfy an expiry filter")
	}
}
