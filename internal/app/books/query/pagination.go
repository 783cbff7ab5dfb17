package query

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Pagination - окно выборки, рассчитанное из параметров page и limit
// Нулевые и отрицательные значения заменяются значениями по умолчанию
type Pagination struct {
	Page  int
	Limit int
	Skip  int
}

// PageRef - ссылка на соседнюю страницу в ответе
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageInfo - дескрипторы соседних страниц относительно общего количества
// Сериализуется в пустой объект, когда соседних страниц нет
type PageInfo struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// NewPagination строит окно выборки из сырых значений параметров запроса
func NewPagination(pageParam, limitParam string) Pagination {
	page := parsePositive(pageParam, DefaultPage)
	limit := parsePositive(limitParam, DefaultLimit)

	return Pagination{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// PageInfo вычисляет дескрипторы next/prev для заданного общего количества
// next присутствует, только если за окном остались записи; prev - если окно
// начинается не с первой записи
func (p Pagination) PageInfo(total int64) PageInfo {
	var info PageInfo

	if int64(p.Skip+p.Limit) < total {
		info.Next = &PageRef{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.Skip > 0 {
		info.Prev = &PageRef{Page: p.Page - 1, Limit: p.Limit}
	}

	return info
}

func parsePositive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
