package query

// PageInfo is the paginatorInfo block of list responses.
type PageInfo struct {
	Count        int  `json:"count"`
	CurrentPage  int  `json:"currentPage"`
	HasMorePages bool `json:"hasMorePages"`
	LastPage     int  `json:"lastPage"`
	PerPage      int  `json:"perPage"`
	Total        int  `json:"total"`
	FirstItem    *int `json:"firstItem"`
	LastItem     *int `json:"lastItem"`
}

// NewPageInfo computes page metadata. count is the number of rows on the
// current page; FirstItem and LastItem stay nil when it is zero.
func NewPageInfo(total, page, perPage, count int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	info := PageInfo{
		Count:        count,
		CurrentPage:  page,
		HasMorePages: lastPage > page,
		LastPage:     lastPage,
		PerPage:      perPage,
		Total:        total,
	}

	if count > 0 && page <= lastPage {
		first := (page-1)*perPage + 1
		last := first + count - 1
		info.FirstItem = &first
		info.LastItem = &last
	}

	return info
}
