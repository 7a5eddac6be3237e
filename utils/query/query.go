package query

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page holds the normalised pagination parameters of a request
type Page struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope applies OFFSET/LIMIT to a query
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// LockForUpdate adds SELECT ... FOR UPDATE on PostgreSQL. SQLite serialises
// writers on its own, so tx is returned unchanged there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Pagination reads ?page= and ?limit= with defaults and an upper bound
func Pagination(c *fiber.Ctx) Page {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// ParamID reads a positive integer route parameter
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// QueryID reads an optional positive integer query parameter, zero when absent
func QueryID(c *fiber.Ctx, name string) uint {
	id, err := strconv.Atoi(c.Query(name))
	if err != nil || id <= 0 {
		return 0
	}
	return uint(id)
}
