package service

// Pagination describes the position of one page inside a filtered result set.
// PreviousPage and NextPage are nil at the respective boundary and both nil
// when the requested page lies past the last one.
type Pagination struct {
	TotalPages    int  `json:"total_pages"`
	TotalElements int  `json:"total_elements"`
	PreviousPage  *int `json:"previous_page"`
	NextPage      *int `json:"next_page"`
}

// Paginate computes page metadata for a result set of totalElements rows
// split into pages of size elements. page is 1-based.
func Paginate(page, size, totalElements int) Pagination {
	if totalElements == 0 {
		return Pagination{}
	}
	if totalElements <= size {
		return Pagination{TotalPages: 1, TotalElements: totalElements}
	}

	totalPages := totalElements / size
	if totalElements%size != 0 {
		totalPages++
	}

	p := Pagination{TotalPages: totalPages, TotalElements: totalElements}
	if page > totalPages {
		return p
	}
	if page > 1 {
		prev := page - 1
		p.PreviousPage = &prev
	}
	if page < totalPages {
		next := page + 1
		p.NextPage = &next
	}
	return p
}
