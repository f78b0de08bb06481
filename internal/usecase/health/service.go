package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const databaseCheck = "database"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedChecker struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	extras []namedChecker
}

// New creates a Service.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// WithChecker registers an optional component. A failing optional component
// degrades the report but never makes it unhealthy.
func (s *Service) WithChecker(name string, c Checker) *Service {
	if c != nil && name != "" && name != databaseCheck {
		s.extras = append(s.extras, namedChecker{name: name, checker: c})
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.extras)+1)

	status := Healthy
	if err := s.db.Ping(ctx); err != nil {
		checks[databaseCheck] = CheckError
		status = Unhealthy
	} else {
		checks[databaseCheck] = CheckOK
	}

	for _, nc := range s.extras {
		if err := nc.checker.HealthCheck(ctx); err != nil {
			checks[nc.name] = CheckError
			if status == Healthy {
				status = Degraded
			}
			continue
		}
		checks[nc.name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}

// Names returns the registered component names in sorted order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.extras)+1)
	names = append(names, databaseCheck)
	for _, nc := range s.extras {
		names = append(names, nc.name)
	}
	sort.Strings(names)
	return names
}
