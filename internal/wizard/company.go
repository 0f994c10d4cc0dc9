// internal/wizard/company.go
package wizard

import (
	"context"
	"fmt"
	"sync"

	"mobility-service/internal/clients"
	xerrors "mobility-service/internal/pkg/errors"
)

// CompanyLookup guards the signup step's VAT check. At most one lookup runs
// at a time; a second request while one is in flight is refused instead of
// firing a duplicate, and the UI disables the lookup button via Busy.
type CompanyLookup struct {
	client *Client

	mu       sync.Mutex
	inFlight bool
	last     *clients.VATCheckResult
}

func NewCompanyLookup(client *Client) *CompanyLookup {
	return &CompanyLookup{client: client}
}

func (l *CompanyLookup) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Last returns the most recent successful lookup, if any.
func (l *CompanyLookup) Last() *clients.VATCheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

func (l *CompanyLookup) Lookup(ctx context.Context, countryCode, vatNumber string) (*clients.VATCheckResult, error) {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: a company lookup is already running", xerrors.ErrConflict)
	}
	l.inFlight = true
	l.mu.Unlock()

	result, err := l.client.CheckVat(ctx, countryCode, vatNumber)

	l.mu.Lock()
	l.inFlight = false
	if err == nil {
		l.last = result
	}
	l.mu.Unlock()

	return result, err
}
