package errors

import "strings"

// Sort modes accepted by ValidateSortMode.
var sortModes = []string{"default", "bek", "linear-bek"}

// ValidateRow checks that row addresses one of count rows.
// Rows are never clamped: an invalid row usually means the caller's view of
// the graph is out of date, and hiding that would mask the desync.
func ValidateRow(row, count int) error {
	if row < 0 || row >= count {
		return New(ErrCodeOutOfRange, "row %d out of range [0, %d)", row, count)
	}
	return nil
}

// ValidateRange checks that the half-open range [lo, hi) lies within [0, count).
// An empty range (lo == hi) is valid.
func ValidateRange(lo, hi, count int) error {
	if lo < 0 || hi > count || lo > hi {
		return New(ErrCodeOutOfRange, "range [%d, %d) out of range [0, %d)", lo, hi, count)
	}
	return nil
}

// ValidateSortMode checks that mode names a known sorter.
func ValidateSortMode(mode string) error {
	for _, m := range sortModes {
		if m == mode {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "unknown sort mode %q (want one of %s)", mode, strings.Join(sortModes, ", "))
}

// ValidatePage checks paging parameters for row windows.
// A limit of zero is allowed and means "use the default page size".
func ValidatePage(offset, limit, maxLimit int) error {
	if offset < 0 {
		return New(ErrCodeInvalidInput, "offset must not be negative")
	}
	if limit < 0 {
		return New(ErrCodeInvalidInput, "limit must not be negative")
	}
	if maxLimit > 0 && limit > maxLimit {
		return New(ErrCodeInvalidInput, "limit %d exceeds maximum page size %d", limit, maxLimit)
	}
	return nil
}
