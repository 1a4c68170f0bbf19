package model

import "strings"

// Role names a volunteer specialty from the fixed role catalog.  Roles are
// stored as free-form strings in the database but matched case-insensitively,
// so the catalog below is advisory rather than enforced: an administrator can
// request any role name when generating a schedule and volunteers keep their
// historical role strings.  RoleGeneral is the fallback bucket used by the
// assignment engine when no specialist is available.
type Role string

const (
    RoleGeneral     Role = "general"
    RoleWorship     Role = "worship"
    RoleVocals      Role = "vocals"
    RoleSound       Role = "sound"
    RoleCamera      Role = "camera"
    RoleProjection  Role = "projection"
    RoleHospitality Role = "hospitality"
    RoleKids        Role = "kids"
    RolePrayer      Role = "prayer"
)

// generalAliases lists role spellings that all mean "no specialty".  The
// legacy data set uses the Portuguese "geral"; an empty role means the
// volunteer was created before the catalog existed.
var generalAliases = map[string]bool{
    "":        true,
    "general": true,
    "geral":   true,
}

// NormalizeRole lower-cases and trims a role string so that bucket lookups
// and role comparisons are case-insensitive.  An empty or general-alias role
// normalizes to RoleGeneral.
func NormalizeRole(raw string) Role {
    s := strings.ToLower(strings.TrimSpace(raw))
    if generalAliases[s] {
        return RoleGeneral
    }
    return Role(s)
}

// IsGeneral reports whether the role belongs to the general bucket.
func (r Role) IsGeneral() bool {
    return generalAliases[strings.ToLower(strings.TrimSpace(string(r)))]
}
