package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/serveteam/volunteer-scheduling/internal/model"
    "github.com/serveteam/volunteer-scheduling/internal/repository"
)

// VolunteerHandler exposes the volunteer directory CRUD.  All operations
// are tenant-scoped: a volunteer owned by another administrator behaves
// exactly like a missing row.
type VolunteerHandler struct {
    Volunteers *repository.VolunteerRepo
}

func NewVolunteerHandler(v *repository.VolunteerRepo) *VolunteerHandler {
    return &VolunteerHandler{Volunteers: v}
}

type volunteerReq struct {
    Name        string  `json:"name"`
    Email       *string `json:"email"`
    Phone       *string `json:"phone"`
    PrimaryRole string  `json:"primary_role"`
    IsActive    *bool   `json:"is_active"`
}

type volunteerResp struct {
    ID          uint64  `json:"id"`
    Name        string  `json:"name"`
    Email       *string `json:"email,omitempty"`
    Phone       *string `json:"phone,omitempty"`
    PrimaryRole string  `json:"primary_role"`
    IsActive    bool    `json:"is_active"`
}

func toVolunteerResp(v *model.Volunteer) volunteerResp {
    return volunteerResp{
        ID:          v.ID,
        Name:        v.Name,
        Email:       v.Email,
        Phone:       v.Phone,
        PrimaryRole: v.PrimaryRole,
        IsActive:    v.IsActive,
    }
}

// Create registers a volunteer in the directory.  The primary role is
// free-form; an empty value means the volunteer serves wherever needed.
func (h *VolunteerHandler) Create(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req volunteerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    v := &model.Volunteer{
        TenantID:    tenantID,
        Name:        req.Name,
        Email:       req.Email,
        Phone:       req.Phone,
        PrimaryRole: strings.ToLower(strings.TrimSpace(req.PrimaryRole)),
    }
    id, err := h.Volunteers.Create(ctx, v)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create volunteer failed"})
    }

    created, err := h.Volunteers.GetByID(ctx, tenantID, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }
    return c.JSON(http.StatusCreated, toVolunteerResp(created))
}

// List returns the tenant's volunteers.  ?active=true restricts the result
// to the pool the assignment engine draws from.
func (h *VolunteerHandler) List(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    activeOnly := c.QueryParam("active") == "true"

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    list, err := h.Volunteers.List(ctx, tenantID, activeOnly)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list volunteers failed"})
    }
    out := make([]volunteerResp, 0, len(list))
    for i := range list {
        out = append(out, toVolunteerResp(&list[i]))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns a single volunteer.
func (h *VolunteerHandler) Get(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := parseIDParam(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    v, err := h.Volunteers.GetByID(ctx, tenantID, id)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }
    return c.JSON(http.StatusOK, toVolunteerResp(v))
}

// Update rewrites the mutable fields of a volunteer.  Fields omitted from
// the body keep their stored values.
func (h *VolunteerHandler) Update(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := parseIDParam(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req volunteerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    v, err := h.Volunteers.GetByID(ctx, tenantID, id)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load volunteer failed"})
    }

    if name := strings.TrimSpace(req.Name); name != "" {
        v.Name = name
    }
    if req.Email != nil {
        v.Email = req.Email
    }
    if req.Phone != nil {
        v.Phone = req.Phone
    }
    if role := strings.ToLower(strings.TrimSpace(req.PrimaryRole)); role != "" {
        v.PrimaryRole = role
    }
    if req.IsActive != nil {
        v.IsActive = *req.IsActive
    }

    if err := h.Volunteers.Update(ctx, v); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update volunteer failed"})
    }
    return c.JSON(http.StatusOK, toVolunteerResp(v))
}

// Delete soft-deletes a volunteer.  History rows in schedule_entries keep
// pointing at the row, so DELETE maps to deactivation rather than removal.
func (h *VolunteerHandler) Delete(c echo.Context) error {
    tenantID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := parseIDParam(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Volunteers.Deactivate(ctx, tenantID, id); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "volunteer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate volunteer failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
