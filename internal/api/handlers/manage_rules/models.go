package manage_rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/pkg/types"
)

// CreateRuleRequest HTTP request model создания правила
type CreateRuleRequest struct {
	ResourceID string `json:"resourceId"`
	Kind       string `json:"kind"`

	StartTime string `json:"startTime"` // "HH:MM"
	EndTime   string `json:"endTime"`   // "HH:MM"
	Timezone  string `json:"timezone"`

	DaysOfWeek []int  `json:"daysOfWeek,omitempty"` // 0=Sunday .. 6=Saturday
	DateFrom   string `json:"dateFrom,omitempty"`   // "2006-01-02"
	DateTo     string `json:"dateTo,omitempty"`

	ServiceAllowIDs []string `json:"serviceAllowIds,omitempty"`
	ServiceDenyIDs  []string `json:"serviceDenyIds,omitempty"`

	Priority int `json:"priority,omitempty"`
}

// CopyWeekRequest HTTP request model копирования недели
type CopyWeekRequest struct {
	SourceWeekStart string `json:"sourceWeekStart"` // "2006-01-02", понедельник
	TargetWeekStart string `json:"targetWeekStart"`
}

// RuleResponse представление правила для внешнего слоя
type RuleResponse struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Kind       string `json:"kind"`

	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`

	DaysOfWeek []int   `json:"days_of_week,omitempty"`
	DateFrom   *string `json:"date_from,omitempty"`
	DateTo     *string `json:"date_to,omitempty"`

	ServiceAllowIDs []string `json:"service_allow_ids,omitempty"`
	ServiceDenyIDs  []string `json:"service_deny_ids,omitempty"`

	Priority int  `json:"priority"`
	Active   bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RuleListResponse список правил ресурса
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
	Total int            `json:"total"`
}

// ToDomainRule конвертирует HTTP запрос в доменную модель
func (r *CreateRuleRequest) ToDomainRule(tenantID string) (*domain.AvailabilityRule, error) {
	resourceID, err := uuid.Parse(r.ResourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid resourceId: %w", err)
	}

	rule := &domain.AvailabilityRule{
		TenantID:   tenantID,
		ResourceID: resourceID,
		Kind:       domain.RuleKind(r.Kind),
		StartTime:  types.TimeString(r.StartTime),
		EndTime:    types.TimeString(r.EndTime),
		Timezone:   r.Timezone,
		Priority:   r.Priority,
	}

	for _, day := range r.DaysOfWeek {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("invalid day of week: %d", day)
		}
		rule.DaysOfWeek = append(rule.DaysOfWeek, time.Weekday(day))
	}

	if r.DateFrom != "" {
		from, err := time.Parse(domain.DateFormat, r.DateFrom)
		if err != nil {
			return nil, fmt.Errorf("invalid dateFrom: %w", err)
		}
		rule.DateFrom = &from
	}
	if r.DateTo != "" {
		to, err := time.Parse(domain.DateFormat, r.DateTo)
		if err != nil {
			return nil, fmt.Errorf("invalid dateTo: %w", err)
		}
		rule.DateTo = &to
	}

	rule.ServiceAllowIDs, err = parseUUIDs(r.ServiceAllowIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid serviceAllowIds: %w", err)
	}
	rule.ServiceDenyIDs, err = parseUUIDs(r.ServiceDenyIDs)
	if err != nil {
		return nil, fmt.Errorf("invalid serviceDenyIds: %w", err)
	}

	return rule, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	result := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, nil
}

// FromDomainRule конвертирует доменную модель в ответ
func FromDomainRule(rule *domain.AvailabilityRule) *RuleResponse {
	resp := &RuleResponse{
		ID:         rule.ID.String(),
		ResourceID: rule.ResourceID.String(),
		Kind:       string(rule.Kind),
		StartTime:  string(rule.StartTime),
		EndTime:    string(rule.EndTime),
		Timezone:   rule.Timezone,
		Priority:   rule.Priority,
		Active:     rule.Active,
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
	}

	for _, day := range rule.DaysOfWeek {
		resp.DaysOfWeek = append(resp.DaysOfWeek, int(day))
	}
	if rule.DateFrom != nil {
		from := rule.DateFrom.Format(domain.DateFormat)
		resp.DateFrom = &from
	}
	if rule.DateTo != nil {
		to := rule.DateTo.Format(domain.DateFormat)
		resp.DateTo = &to
	}
	for _, id := range rule.ServiceAllowIDs {
		resp.ServiceAllowIDs = append(resp.ServiceAllowIDs, id.String())
	}
	for _, id := range rule.ServiceDenyIDs {
		resp.ServiceDenyIDs = append(resp.ServiceDenyIDs, id.String())
	}

	return resp
}

// FromDomainRuleList конвертирует список доменных моделей в ответ
func FromDomainRuleList(rules []*domain.AvailabilityRule) *RuleListResponse {
	result := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		result = append(result, *FromDomainRule(rule))
	}
	return &RuleListResponse{Rules: result, Total: len(result)}
}
