// Package identity maps caller-supplied candidate ids onto one stable UUID.
package identity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/google/uuid"
)

const applicationTemplate = "application:%d"

// Resolver derives stable ids for sequential application ids under Namespace.
type Resolver struct {
	Namespace uuid.UUID
}

// NewResolver parses the configured namespace.
func NewResolver(namespace string) (*Resolver, error) {
	ns, err := parseCanonical(strings.TrimSpace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCandidateNamespace, namespace)
	}
	return &Resolver{Namespace: ns}, nil
}

// Resolve returns the canonical identity for raw.
func (r *Resolver) Resolve(raw string) (domain.CanonicalIdentity, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return domain.CanonicalIdentity{}, domain.ErrCandidateIDRequired
	}

	if id, err := parseCanonical(value); err == nil {
		return domain.CanonicalIdentity{StableID: id}, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= 0 {
		return domain.CanonicalIdentity{}, fmt.Errorf("%w: %q", domain.ErrInvalidCandidateID, value)
	}

	return domain.CanonicalIdentity{
		StableID:            r.StableIDFor(n),
		SourceApplicationID: &n,
	}, nil
}

// StableIDFor returns the UUIDv5 for a sequential application id.
func (r *Resolver) StableIDFor(applicationID int64) uuid.UUID {
	return uuid.NewSHA1(r.Namespace, []byte(fmt.Sprintf(applicationTemplate, applicationID)))
}

// parseCanonical accepts only the 36-character hyphenated form; uuid.Parse
// alone would also take urn:uuid:, braced and bare-hex variants.
func parseCanonical(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("invalid UUID length: %d", len(s))
	}
	return uuid.Parse(s)
}
