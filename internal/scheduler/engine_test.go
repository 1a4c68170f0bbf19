package scheduler

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/serveteam/volunteer-scheduling/internal/model"
)

func vol(id uint64, name, role string) model.Volunteer {
    return model.Volunteer{ID: id, Name: name, PrimaryRole: role, IsActive: true}
}

func TestAssignFillsRolesFromMatchingBuckets(t *testing.T) {
    pool := []model.Volunteer{
        vol(1, "Ana", "camera"),
        vol(2, "Beto", "som"),
        vol(3, "Carla", "general"),
    }
    got, unfilled, err := Assign(context.Background(), []string{"som", "camera"}, pool, Options{})
    require.NoError(t, err)
    assert.Empty(t, unfilled)
    require.Len(t, got, 2)
    assert.Equal(t, uint64(2), got[0].VolunteerID) // som bucket
    assert.Equal(t, uint64(1), got[1].VolunteerID) // camera bucket
}

func TestAssignNoVolunteerTakesTwoRoles(t *testing.T) {
    pool := []model.Volunteer{
        vol(1, "Ana", "camera"),
        vol(2, "Beto", "geral"),
    }
    got, unfilled, err := Assign(context.Background(), []string{"camera", "camera", "camera"}, pool, Options{})
    require.NoError(t, err)
    require.Len(t, got, 2)
    assert.NotEqual(t, got[0].VolunteerID, got[1].VolunteerID)
    assert.Equal(t, []string{"camera"}, unfilled)
}

func TestAssignGeneralFallback(t *testing.T) {
    // Ana is the only camera operator; Beto's "geral" alias makes him the
    // general fallback for the sound role.
    pool := []model.Volunteer{
        vol(1, "Ana", "camera"),
        vol(2, "Beto", "geral"),
    }
    got, unfilled, err := Assign(context.Background(), []string{"camera", "som"}, pool, Options{})
    require.NoError(t, err)
    assert.Empty(t, unfilled)
    require.Len(t, got, 2)
    assert.Equal(t, "Ana", got[0].VolunteerName)
    assert.Equal(t, "Beto", got[1].VolunteerName)
}

func TestAssignLastTierTakesAnyRemaining(t *testing.T) {
    // No som specialist and no generals left: the specialist pool is raided.
    pool := []model.Volunteer{
        vol(1, "Ana", "camera"),
        vol(2, "Beto", "camera"),
    }
    got, unfilled, err := Assign(context.Background(), []string{"camera", "som"}, pool, Options{})
    require.NoError(t, err)
    assert.Empty(t, unfilled)
    require.Len(t, got, 2)
    assert.Equal(t, "som", got[1].Role)
    assert.Equal(t, uint64(2), got[1].VolunteerID)
}

func TestAssignEmptyPoolIsExhaustion(t *testing.T) {
    _, _, err := Assign(context.Background(), []string{"camera"}, nil, Options{})
    assert.ErrorIs(t, err, ErrNoVolunteers)
}

func TestAssignDeterministic(t *testing.T) {
    pool := []model.Volunteer{
        vol(1, "Ana", "camera"),
        vol(2, "Beto", "camera"),
        vol(3, "Carla", "som"),
        vol(4, "Davi", ""),
    }
    roles := []string{"camera", "som", "camera", "recepcao"}
    first, firstUnfilled, err := Assign(context.Background(), roles, pool, Options{})
    require.NoError(t, err)
    for i := 0; i < 10; i++ {
        again, againUnfilled, err := Assign(context.Background(), roles, pool, Options{})
        require.NoError(t, err)
        assert.Equal(t, first, again)
        assert.Equal(t, firstUnfilled, againUnfilled)
    }
}

type fixedChecker struct {
    busy map[uint64]bool
}

func (f fixedChecker) Available(_ context.Context, v model.Volunteer, _ Window) bool {
    return !f.busy[v.ID]
}

func TestAssignRespectsAvailability(t *testing.T) {
    pool := []model.Volunteer{
        vol(1, "Ana", "camera"),
        vol(2, "Beto", "camera"),
    }
    opts := Options{
        RespectAvailability: true,
        Checker:             fixedChecker{busy: map[uint64]bool{1: true}},
        Window:              Window{Start: time.Now(), End: time.Now().Add(2 * time.Hour)},
    }
    got, _, err := Assign(context.Background(), []string{"camera"}, pool, opts)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, uint64(2), got[0].VolunteerID)
}

func TestAssignAllBusyIsExhaustion(t *testing.T) {
    pool := []model.Volunteer{vol(1, "Ana", "camera")}
    opts := Options{
        RespectAvailability: true,
        Checker:             fixedChecker{busy: map[uint64]bool{1: true}},
    }
    _, _, err := Assign(context.Background(), []string{"camera"}, pool, opts)
    assert.ErrorIs(t, err, ErrNoVolunteers)
}

func TestAssignRoleMatchingIsCaseInsensitive(t *testing.T) {
    pool := []model.Volunteer{vol(1, "Ana", "Camera")}
    got, unfilled, err := Assign(context.Background(), []string{"CAMERA"}, pool, Options{})
    require.NoError(t, err)
    assert.Empty(t, unfilled)
    require.Len(t, got, 1)
    assert.Equal(t, uint64(1), got[0].VolunteerID)
}
