// Package scheduler implements the assignment engine: a deterministic,
// tiered greedy pass that staffs the required roles of one service instance
// from a volunteer pool.  The algorithm trades global optimality for
// explainability: an administrator can always answer "why was X picked for
// role Y".
package scheduler

import (
    "context"
    "errors"
    "time"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

// ErrNoVolunteers is the exhaustion error: the effective pool is empty, so
// nothing at all can be staffed.  This is the only failure mode that aborts
// schedule creation entirely; partially unfilled role lists are a success
// the caller must surface via the unfilled slice.
var ErrNoVolunteers = errors.New("no volunteers available")

// Window is the service time window availability is checked against.
type Window struct {
    Start time.Time
    End   time.Time
}

// AvailabilityChecker answers whether a volunteer is free for a window.
// Implementations must degrade gracefully: when availability cannot be
// determined (no calendar connection, upstream failure) they return true so
// that calendar trouble never blocks scheduling.
type AvailabilityChecker interface {
    Available(ctx context.Context, v model.Volunteer, w Window) bool
}

// Assignment pairs a required role with the volunteer chosen for it.
type Assignment struct {
    Role          string
    VolunteerID   uint64
    VolunteerName string
}

// Options tunes a single engine invocation.
type Options struct {
    // RespectAvailability discards volunteers whose calendar reports a
    // conflicting busy slot before the greedy pass runs.  Requires Checker.
    RespectAvailability bool
    Checker             AvailabilityChecker
    Window              Window
}

// Assign performs one single-threaded greedy pass over roles, in the order
// given (duplicates allowed), against the volunteer pool, in the order
// given.  Each role is filled from the first matching tier:
//
//  1. the bucket of volunteers whose primary role matches (case-insensitive)
//  2. the "general" bucket
//  3. the full remaining pool, any role
//
// A volunteer assigned once in this pass is used up and cannot take a
// second role in the same invocation.  Roles with nobody left are skipped
// silently and reported in the second return value; callers must inspect
// counts to detect under-coverage.  The used-volunteer set is local to this
// call, so separate invocations (different service dates) may run
// concurrently, but a single invocation must not be parallelized across
// roles.
func Assign(ctx context.Context, roles []string, pool []model.Volunteer, opts Options) ([]Assignment, []string, error) {
    effective := pool
    if opts.RespectAvailability && opts.Checker != nil {
        effective = make([]model.Volunteer, 0, len(pool))
        for _, v := range pool {
            if opts.Checker.Available(ctx, v, opts.Window) {
                effective = append(effective, v)
            }
        }
    }
    if len(effective) == 0 {
        return nil, nil, ErrNoVolunteers
    }

    // Partition into role buckets keyed by normalized primary role.  The
    // general bucket collects every general-alias volunteer.  Bucket order
    // follows pool order, which keeps the whole pass deterministic.
    buckets := make(map[model.Role][]int)
    var general []int
    for i, v := range effective {
        role := model.NormalizeRole(v.PrimaryRole)
        if role.IsGeneral() {
            general = append(general, i)
            continue
        }
        buckets[role] = append(buckets[role], i)
    }

    used := make([]bool, len(effective))
    takeFirst := func(idxs []int) (int, bool) {
        for _, i := range idxs {
            if !used[i] {
                used[i] = true
                return i, true
            }
        }
        return 0, false
    }

    assignments := make([]Assignment, 0, len(roles))
    var unfilled []string
    for _, role := range roles {
        idx, ok := takeFirst(buckets[model.NormalizeRole(role)])
        if !ok {
            idx, ok = takeFirst(general)
        }
        if !ok {
            // Last tier: anyone still unused, in pool order.
            for i := range effective {
                if !used[i] {
                    idx, ok = i, true
                    used[i] = true
                    break
                }
            }
        }
        if !ok {
            unfilled = append(unfilled, role)
            continue
        }
        assignments = append(assignments, Assignment{
            Role:          role,
            VolunteerID:   effective[idx].ID,
            VolunteerName: effective[idx].Name,
        })
    }
    return assignments, unfilled, nil
}
