/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request bodies carry go-playground/validator struct tags and are checked
  in the handlers before any domain call.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/realcore/vacation-hub/vacation"
)

// =============================================================================
// PEOPLE
// =============================================================================

// PersonDTO represents a person in API responses. Remaining is derived by
// the ledger, never stored.
type PersonDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	Department    string  `json:"department"`
	ManagerID     string  `json:"manager_id,omitempty"`
	TotalDays     float64 `json:"total_vacation_days"`
	UsedDays      float64 `json:"used_vacation_days"`
	RemainingDays float64 `json:"remaining_vacation_days"`
}

func toPersonDTO(p *vacation.Person) PersonDTO {
	return PersonDTO{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Role:          string(p.Role),
		Department:    p.Department,
		ManagerID:     p.ManagerID,
		TotalDays:     p.TotalDays.InexactFloat64(),
		UsedDays:      p.UsedDays.InexactFloat64(),
		RemainingDays: p.Remaining().InexactFloat64(),
	}
}

// CreatePersonRequest is the body for POST /api/users.
type CreatePersonRequest struct {
	ActorID    string  `json:"actor_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Role       string  `json:"role" validate:"required,oneof=employee manager admin"`
	Department string  `json:"department" validate:"required"`
	ManagerID  string  `json:"manager_id"`
	TotalDays  float64 `json:"total_vacation_days" validate:"gte=0"`
}

// UpdatePersonRequest is the body for PUT /api/users/{id}.
type UpdatePersonRequest struct {
	ActorID    string  `json:"actor_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Role       string  `json:"role" validate:"required,oneof=employee manager admin"`
	Department string  `json:"department" validate:"required"`
	ManagerID  string  `json:"manager_id"`
	TotalDays  float64 `json:"total_vacation_days" validate:"gte=0"`
}

// =============================================================================
// BALANCE & LEDGER
// =============================================================================

type BalanceDTO struct {
	PersonID  string  `json:"person_id"`
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

func toBalanceDTO(b *vacation.BalanceView) BalanceDTO {
	return BalanceDTO{
		PersonID:  b.PersonID,
		Total:     b.Total.InexactFloat64(),
		Used:      b.Used.InexactFloat64(),
		Remaining: b.Remaining.InexactFloat64(),
	}
}

type LedgerEntryDTO struct {
	ID        string  `json:"id"`
	PersonID  string  `json:"person_id"`
	Delta     float64 `json:"delta"`
	RequestID string  `json:"request_id,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// SubmitRequestBody is the body for POST /api/users/{id}/requests.
// Dates are ISO-8601 calendar dates (YYYY-MM-DD).
type SubmitRequestBody struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

// ReviewRequestBody is the body for POST /api/requests/{id}/approve|reject.
type ReviewRequestBody struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
	Comment    string `json:"comment"`
}

type RequestDTO struct {
	ID               string  `json:"id"`
	PersonID         string  `json:"person_id"`
	PersonName       string  `json:"person_name"`
	PersonDepartment string  `json:"person_department"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Days             float64 `json:"days"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"created_at"`
	ReviewerID       string  `json:"reviewer_id,omitempty"`
	ReviewerName     string  `json:"reviewer_name,omitempty"`
	ReviewedAt       string  `json:"reviewed_at,omitempty"`
	ReviewComment    string  `json:"review_comment,omitempty"`
}

func toRequestDTO(r *vacation.LeaveRequest) RequestDTO {
	dto := RequestDTO{
		ID:               r.ID,
		PersonID:         r.PersonID,
		PersonName:       r.PersonName,
		PersonDepartment: r.PersonDepartment,
		StartDate:        r.StartDate.String(),
		EndDate:          r.EndDate.String(),
		Days:             r.Days.InexactFloat64(),
		Reason:           r.Reason,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt.String(),
		ReviewerID:       r.ReviewerID,
		ReviewerName:     r.ReviewerName,
		ReviewComment:    r.ReviewComment,
	}
	if r.ReviewedAt != nil {
		dto.ReviewedAt = r.ReviewedAt.String()
	}
	return dto
}

func toRequestDTOs(reqs []vacation.LeaveRequest) []RequestDTO {
	dtos := make([]RequestDTO, 0, len(reqs))
	for i := range reqs {
		dtos = append(dtos, toRequestDTO(&reqs[i]))
	}
	return dtos
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

type DepartmentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ManagerID string `json:"manager_id"`
}

type CreateDepartmentRequest struct {
	ActorID   string `json:"actor_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	ManagerID string `json:"manager_id"`
}

type UpdateDepartmentRequest struct {
	ActorID   string `json:"actor_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	ManagerID string `json:"manager_id"`
}

// =============================================================================
// SETTINGS, STATS, CALENDAR
// =============================================================================

type SettingsDTO struct {
	CompanyName         string  `json:"company_name"`
	ContactEmail        string  `json:"contact_email"`
	DefaultVacationDays float64 `json:"default_vacation_days"`
}

type UpdateSettingsRequest struct {
	ActorID             string  `json:"actor_id" validate:"required"`
	CompanyName         string  `json:"company_name" validate:"required"`
	ContactEmail        string  `json:"contact_email" validate:"required,email"`
	DefaultVacationDays float64 `json:"default_vacation_days" validate:"gt=0"`
}

// StatsDTO backs the dashboard: the caller's balance plus request counters
// in their view (own requests for employees, scoped requests for reviewers).
type StatsDTO struct {
	Balance  BalanceDTO `json:"balance"`
	Pending  int        `json:"pending"`
	Approved int        `json:"approved"`
	Rejected int        `json:"rejected"`
}

// CalendarDTO lists the approved vacation days of one person in one month.
type CalendarDTO struct {
	PersonID string   `json:"person_id"`
	Year     int      `json:"year"`
	Month    int      `json:"month"`
	Days     []string `json:"days"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
