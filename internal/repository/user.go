// Package repository holds the concrete mappers of the application's
// entities, built on the generic mapper engine.
package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"datamapper/internal/db"
	"datamapper/internal/domain"
	"datamapper/internal/mapper"
	"datamapper/internal/metadata"
)

const (
	userTable   = "users"
	userColumns = "id, name, email, age, active, nickname, created_at"
)

// UserMapper finds users. One instance is one identity scope: build a new
// UserMapper per request.
type UserMapper struct {
	*mapper.Mapper[*domain.User]
}

// NewUserMapper creates a UserMapper with an empty identity map.
func NewUserMapper(conn db.Connection, logger *slog.Logger) *UserMapper {
	return &UserMapper{Mapper: mapper.New[*domain.User](conn, userLoader{}, logger)}
}

type userLoader struct{}

func (userLoader) FindStatement() string {
	return "SELECT " + userColumns + " FROM " + userTable + " WHERE id = ?"
}

func (userLoader) LoadDataMap() *metadata.DataMap[*domain.User] {
	return metadata.NewDataMap(userTable, func() *domain.User { return &domain.User{} },
		metadata.String("name", func(u *domain.User, v string) { u.Name = v }),
		metadata.String("email", func(u *domain.User, v string) { u.Email = v }),
		metadata.Int("age", func(u *domain.User, v int) { u.Age = v }),
		metadata.Bool("active", func(u *domain.User, v bool) { u.Active = v }),
		metadata.NullString("nickname", func(u *domain.User, v *string) { u.Nickname = v }),
		metadata.Time("created_at", func(u *domain.User, v time.Time) { u.CreatedAt = v }),
	)
}

// FindAll returns every user ordered by id.
func (m *UserMapper) FindAll(ctx context.Context) ([]*domain.User, error) {
	return m.FindObjectsWhere(ctx, "1 = 1 ORDER BY id")
}

// FindOlderThan returns users strictly older than age, ordered by id.
func (m *UserMapper) FindOlderThan(ctx context.Context, age int) ([]*domain.User, error) {
	return m.FindObjectsWhere(ctx, "age > ? ORDER BY id", age)
}

// FindByFilter returns the users matching every criterion of f, ordered by id.
func (m *UserMapper) FindByFilter(ctx context.Context, f domain.UserFilter) ([]*domain.User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	where, binds := filterClause(f)
	return m.FindObjectsWhere(ctx, where+" ORDER BY id", binds...)
}

// FindPage returns one page of the users matching f, ordered by id, and the
// token of the next page ("" on the last page).
func (m *UserMapper) FindPage(ctx context.Context, f domain.UserFilter, page domain.PageRequest) ([]*domain.User, string, error) {
	if err := f.Validate(); err != nil {
		return nil, "", err
	}
	offset, err := page.Offset()
	if err != nil {
		return nil, "", err
	}
	limit := page.Limit()

	// One extra row tells whether another page exists.
	where, binds := filterClause(f)
	binds = append(binds, limit+1, offset)
	users, err := m.FindObjectsWhere(ctx, where+" ORDER BY id LIMIT ? OFFSET ?", binds...)
	if err != nil {
		return nil, "", err
	}
	if len(users) <= limit {
		return users, "", nil
	}
	return users[:limit], domain.EncodePageToken(offset + limit), nil
}

func filterClause(f domain.UserFilter) (string, []any) {
	clauses := []string{"1 = 1"}
	var binds []any
	if f.MinAge > 0 {
		clauses = append(clauses, "age >= ?")
		binds = append(binds, f.MinAge)
	}
	if f.NamePrefix != "" {
		clauses = append(clauses, "name LIKE ?")
		binds = append(binds, f.NamePrefix+"%")
	}
	if f.ActiveOnly {
		clauses = append(clauses, "active = ?")
		binds = append(binds, true)
	}
	return strings.Join(clauses, " AND "), binds
}

// FindByEmail returns the users whose email matches exactly. Emails are
// unique, so the result has at most one element.
func (m *UserMapper) FindByEmail(ctx context.Context, email string) ([]*domain.User, error) {
	src := mapper.NewStatementSource(
		"SELECT "+userColumns+" FROM "+userTable+" WHERE email = ?",
		email,
	)
	return m.FindMany(ctx, src)
}

// FindYoungestFirst returns up to limit users ordered by age, then id.
func (m *UserMapper) FindYoungestFirst(ctx context.Context, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		return nil, domain.ErrValidation("limit must be positive")
	}
	src := mapper.NewStatementSource(
		"SELECT "+userColumns+" FROM "+userTable+" ORDER BY age, id LIMIT ?",
		limit,
	)
	return m.FindMany(ctx, src)
}
