// Package access decides whether an identity may call an Api and resolves
// the effective quota from department grants.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/TharinduNimesh/apiforge/internal/auth"
	"github.com/TharinduNimesh/apiforge/internal/model"
	"github.com/TharinduNimesh/apiforge/internal/repository"
)

var (
	ErrApiInactive            = errors.New("api is currently inactive")
	ErrNoDepartmentMembership = errors.New("no department membership")
	ErrNoActiveDepartment     = errors.New("no active department membership")
	ErrAccessDenied           = errors.New("access denied to this api")
)

// Decision is the outcome of an authorization check. Unlimited is true for
// admins; otherwise RateLimit is the max rate_limit across the caller's
// active-department grants for the Api.
type Decision struct {
	Unlimited bool
	RateLimit int
}

type Controller struct {
	departments repository.DepartmentsRepository
	grants      repository.GrantsRepository
}

func NewController(departments repository.DepartmentsRepository, grants repository.GrantsRepository) *Controller {
	return &Controller{departments: departments, grants: grants}
}

// Authorize runs before any outbound work. Admins bypass the active-status
// check, department checks, and quota entirely.
func (c *Controller) Authorize(ctx context.Context, identity auth.Identity, api *model.Api) (Decision, error) {
	if identity.IsAdmin {
		return Decision{Unlimited: true}, nil
	}

	if !api.IsActive {
		return Decision{}, ErrApiInactive
	}

	memberIDs, err := c.departments.ListUserDepartmentIDs(ctx, identity.UserID)
	if err != nil {
		return Decision{}, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberIDs) == 0 {
		return Decision{}, ErrNoDepartmentMembership
	}

	active, err := c.departments.ListActive(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("list active departments: %w", err)
	}
	activeIDs := intersectActive(memberIDs, active)
	if len(activeIDs) == 0 {
		return Decision{}, ErrNoActiveDepartment
	}

	grants, err := c.grants.ListForApi(ctx, activeIDs, api.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("list grants: %w", err)
	}
	if len(grants) == 0 {
		return Decision{}, ErrAccessDenied
	}

	// effective quota is the max across grants, not the sum
	limit := grants[0].RateLimit
	for _, g := range grants[1:] {
		if g.RateLimit > limit {
			limit = g.RateLimit
		}
	}
	return Decision{RateLimit: limit}, nil
}

// AccessibleApiIDs returns nil for admins (everything), otherwise the Api ids
// granted to the caller's active departments. An empty result is not an
// error.
func (c *Controller) AccessibleApiIDs(ctx context.Context, identity auth.Identity) ([]string, bool, error) {
	if identity.IsAdmin {
		return nil, true, nil
	}

	memberIDs, err := c.departments.ListUserDepartmentIDs(ctx, identity.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberIDs) == 0 {
		return nil, false, nil
	}

	active, err := c.departments.ListActive(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("list active departments: %w", err)
	}
	activeIDs := intersectActive(memberIDs, active)
	if len(activeIDs) == 0 {
		return nil, false, nil
	}

	ids, err := c.grants.ListApiIDs(ctx, activeIDs)
	if err != nil {
		return nil, false, fmt.Errorf("list granted apis: %w", err)
	}
	return ids, false, nil
}

func intersectActive(memberIDs []string, active []model.Department) []string {
	activeSet := make(map[string]struct{}, len(active))
	for _, d := range active {
		activeSet[d.ID] = struct{}{}
	}

	out := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := activeSet[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
