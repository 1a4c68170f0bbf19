package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestTokenStateDerivation(t *testing.T) {
    now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    used := now.Add(-time.Hour)

    fresh := &ConfirmationToken{ExpiresAt: now.Add(time.Hour)}
    assert.Equal(t, TokenPending, fresh.State(now))

    expired := &ConfirmationToken{ExpiresAt: now.Add(-time.Minute)}
    assert.Equal(t, TokenExpired, expired.State(now))

    // Consumption wins over expiry: a token used in time stays consumed
    // even when inspected after its expiry has passed.
    consumed := &ConfirmationToken{ExpiresAt: now.Add(-time.Minute), UsedAt: &used}
    assert.Equal(t, TokenConsumed, consumed.State(now))
}

func TestStatusForAction(t *testing.T) {
    cases := map[string]string{
        ActionConfirm:           StatusConfirmed,
        ActionDecline:           StatusAbsent,
        ActionRequestSubstitute: StatusSubstituted,
    }
    for action, want := range cases {
        got, ok := StatusForAction(action)
        assert.True(t, ok)
        assert.Equal(t, want, got)
    }
    _, ok := StatusForAction("snooze")
    assert.False(t, ok)
}

func TestValidAction(t *testing.T) {
    assert.True(t, ValidAction(ActionConfirm))
    assert.True(t, ValidAction(ActionDecline))
    assert.True(t, ValidAction(ActionRequestSubstitute))
    assert.False(t, ValidAction(""))
    assert.False(t, ValidAction("CONFIRM"))
}

func TestNormalizeRoleAliases(t *testing.T) {
    assert.Equal(t, RoleGeneral, NormalizeRole(""))
    assert.Equal(t, RoleGeneral, NormalizeRole("  General "))
    assert.Equal(t, RoleGeneral, NormalizeRole("geral"))
    assert.Equal(t, Role("camera"), NormalizeRole("Camera"))
    assert.True(t, NormalizeRole("GERAL").IsGeneral())
    assert.False(t, NormalizeRole("som").IsGeneral())
}
