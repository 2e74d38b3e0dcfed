// Package pagination is the shared slicing utility behind every paged listing:
// search results, read/search history, followers, followings and messages all
// page with the same arithmetic and differ only in page size.
package pagination

// Paginate returns the zero-based page of items and the total page count,
// computed as ceil(len(items)/pageSize). A page past the end is not an error;
// it yields an empty slice with the same total count.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	if len(items) == 0 || pageSize <= 0 {
		return nil, 0
	}
	total := (len(items) + pageSize - 1) / pageSize

	begin := page * pageSize
	if page < 0 || begin >= len(items) {
		return nil, total
	}
	end := begin + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[begin:end], total
}
