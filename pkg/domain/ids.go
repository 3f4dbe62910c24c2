// Package domain holds shared domain primitives: typed identifiers and the
// closed enumerations (role, plan status, export format) used across modules.
//
// IDs are distinct named types over uuid.UUID so the compiler rejects
// cross-type assignment (an IdentityID can never be passed where a PlanID is
// expected). Parse functions enforce validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "seaplan/pkg/domain-errors"
)

type (
	// IdentityID identifies a user account (requester, reviewer, or administrator).
	IdentityID uuid.UUID

	// PlanID identifies a navigation plan request.
	PlanID uuid.UUID

	// ZoneID identifies a restricted zone.
	ZoneID uuid.UUID
)

func parseID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id must not be the nil UUID")
	}
	return u, nil
}

// ParseIdentityID validates s and returns it as an IdentityID.
func ParseIdentityID(s string) (IdentityID, error) {
	u, err := parseID(s)
	if err != nil {
		return IdentityID{}, err
	}
	return IdentityID(u), nil
}

// ParsePlanID validates s and returns it as a PlanID.
func ParsePlanID(s string) (PlanID, error) {
	u, err := parseID(s)
	if err != nil {
		return PlanID{}, err
	}
	return PlanID(u), nil
}

// ParseZoneID validates s and returns it as a ZoneID.
func ParseZoneID(s string) (ZoneID, error) {
	u, err := parseID(s)
	if err != nil {
		return ZoneID{}, err
	}
	return ZoneID(u), nil
}

// NewIdentityID returns a fresh random IdentityID.
func NewIdentityID() IdentityID { return IdentityID(uuid.New()) }

// NewPlanID returns a fresh random PlanID.
func NewPlanID() PlanID { return PlanID(uuid.New()) }

// NewZoneID returns a fresh random ZoneID.
func NewZoneID() ZoneID { return ZoneID(uuid.New()) }

func (id IdentityID) String() string { return uuid.UUID(id).String() }
func (id IdentityID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id PlanID) String() string { return uuid.UUID(id).String() }
func (id PlanID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ZoneID) String() string { return uuid.UUID(id).String() }
func (id ZoneID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText implementations keep typed IDs JSON-friendly as plain UUID strings.

func (id IdentityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *IdentityID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = IdentityID(u)
	return nil
}

func (id PlanID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *PlanID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = PlanID(u)
	return nil
}

func (id ZoneID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id *ZoneID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ZoneID(u)
	return nil
}
