package audit

import (
	"context"
	"fmt"
)

// Service coordinates audit review queries.
type Service struct {
	repo Repository
}

// NewService constructs an audit query service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Query fetches audit entries with paging. It requests one row more than
// the page size so HasNext is known without a count query.
func (s *Service) Query(ctx context.Context, f Filters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	entries, err := s.repo.Window(ctx, f, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(entries) > pageSize
	if hasNext {
		entries = entries[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Entries: entries, Paging: paging}, nil
}
