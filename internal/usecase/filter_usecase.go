package usecase

import (
	"context"
	"strings"
	"time"

	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase/interfaces"
)

// FilterOptions AND-composes independent predicates. Zero-value fields are
// not applied; an empty result is valid output, never an error.
type FilterOptions struct {
	Statuses    []entities.AssignmentStatus
	Priorities  []entities.Priority
	Technicians []string
	Issuers     []string
	PoleIDs     []string

	AssignedAfter   *time.Time
	AssignedBefore  *time.Time
	ScheduledAfter  *time.Time
	ScheduledBefore *time.Time

	// Overdue keeps only assignments whose scheduled date has passed while
	// the work is still open (not completed/cancelled).
	Overdue bool

	// HasCustomerContact keeps only assignments carrying a contact string.
	HasCustomerContact bool
}

// SearchField selects which attributes a text search inspects.
type SearchField string

const (
	SearchFieldID              SearchField = "id"
	SearchFieldPoleID          SearchField = "pole_id"
	SearchFieldCustomerName    SearchField = "customer_name"
	SearchFieldCustomerAddress SearchField = "customer_address"
	SearchFieldCustomerContact SearchField = "customer_contact"
	SearchFieldNotes           SearchField = "notes"
)

// SearchCriteria matches a record if any selected field matches the term.
// Matching is case-insensitive substring unless Exact is set. An empty
// Fields list searches every field.
type SearchCriteria struct {
	Term   string
	Fields []SearchField
	Exact  bool
}

// IFilterUseCase is read-only querying over the store. No side effects.
type IFilterUseCase interface {
	Filter(ctx context.Context, opts FilterOptions) ([]entities.Assignment, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]entities.Assignment, error)
}

type FilterUseCase struct {
	repo interfaces.IAssignmentRepository
}

var _ IFilterUseCase = (*FilterUseCase)(nil)

func NewFilterUseCase(repo interfaces.IAssignmentRepository) *FilterUseCase {
	return &FilterUseCase{repo: repo}
}

// Filter returns assignments satisfying every set predicate, in the
// underlying scan's insertion order.
func (u *FilterUseCase) Filter(ctx context.Context, opts FilterOptions) ([]entities.Assignment, error) {
	all, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]entities.Assignment, 0, len(all))
	for _, a := range all {
		if !matchesFilter(a, opts, now) {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func matchesFilter(a entities.Assignment, opts FilterOptions, now time.Time) bool {
	if len(opts.Statuses) > 0 && !containsStatus(opts.Statuses, a.Status) {
		return false
	}
	if len(opts.Priorities) > 0 && !containsPriority(opts.Priorities, a.Priority) {
		return false
	}
	if len(opts.Technicians) > 0 && !containsString(opts.Technicians, a.AssignedTo) {
		return false
	}
	if len(opts.Issuers) > 0 && !containsString(opts.Issuers, a.AssignedBy) {
		return false
	}
	if len(opts.PoleIDs) > 0 && !containsString(opts.PoleIDs, a.PoleID) {
		return false
	}
	if opts.AssignedAfter != nil && a.AssignedAt.Before(*opts.AssignedAfter) {
		return false
	}
	if opts.AssignedBefore != nil && a.AssignedAt.After(*opts.AssignedBefore) {
		return false
	}
	if opts.ScheduledAfter != nil && (a.ScheduledDate == nil || a.ScheduledDate.Before(*opts.ScheduledAfter)) {
		return false
	}
	if opts.ScheduledBefore != nil && (a.ScheduledDate == nil || a.ScheduledDate.After(*opts.ScheduledBefore)) {
		return false
	}
	if opts.Overdue && !a.IsOverdue(now) {
		return false
	}
	if opts.HasCustomerContact && strings.TrimSpace(a.Customer.Contact) == "" {
		return false
	}
	return true
}

// Search scans the selected fields for the term. A record matches if any
// selected field matches.
func (u *FilterUseCase) Search(ctx context.Context, criteria SearchCriteria) ([]entities.Assignment, error) {
	term := strings.TrimSpace(criteria.Term)
	if term == "" {
		return []entities.Assignment{}, nil
	}

	fields := criteria.Fields
	if len(fields) == 0 {
		fields = []SearchField{
			SearchFieldID, SearchFieldPoleID,
			SearchFieldCustomerName, SearchFieldCustomerAddress, SearchFieldCustomerContact,
			SearchFieldNotes,
		}
	}

	all, err := u.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]entities.Assignment, 0, len(all))
	for _, a := range all {
		if matchesSearch(a, term, fields, criteria.Exact) {
			result = append(result, a)
		}
	}
	return result, nil
}

func matchesSearch(a entities.Assignment, term string, fields []SearchField, exact bool) bool {
	for _, f := range fields {
		var value string
		switch f {
		case SearchFieldID:
			value = a.ID
		case SearchFieldPoleID:
			value = a.PoleID
		case SearchFieldCustomerName:
			value = a.Customer.Name
		case SearchFieldCustomerAddress:
			value = a.Customer.Address
		case SearchFieldCustomerContact:
			value = a.Customer.Contact
		case SearchFieldNotes:
			value = a.Notes
		default:
			continue
		}
		if exact {
			if value == term {
				return true
			}
			continue
		}
		if strings.Contains(strings.ToLower(value), strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func containsStatus(set []entities.AssignmentStatus, s entities.AssignmentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []entities.Priority, p entities.Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
