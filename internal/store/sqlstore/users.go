package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yamdb/yamdb-server/internal/domain"
	"github.com/yamdb/yamdb-server/internal/store"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, username, email, first_name, last_name, bio, role,
	confirmation_code, is_staff, is_superuser, date_joined`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u          domain.User
		role       string
		code       sql.NullString
		dateJoined string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Bio,
		&role,
		&code,
		&u.IsStaff,
		&u.IsSuperuser,
		&dateJoined,
	)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	u.ConfirmationCodeHash = code.String
	if u.DateJoined, err = parseTime(dateJoined); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user and assigns its ID and DateJoined when unset.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = s.now()
	}

	cols := `username, email, first_name, last_name, bio, role, confirmation_code, is_staff, is_superuser, date_joined`
	args := []any{
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, string(u.Role),
		nullString(u.ConfirmationCodeHash), u.IsStaff, u.IsSuperuser, formatTime(u.DateJoined),
	}
	if u.ID != 0 {
		cols = "id, " + cols
		args = append([]any{u.ID}, args...)
	}

	id, err := s.insert(ctx, `INSERT INTO users (`+cols+`) VALUES (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	return u, notFound(err)
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	return u, notFound(err)
}

// UpdateUser rewrites the profile, role and flags. The confirmation code is
// managed separately.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.exec(ctx, `
		UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, bio = ?,
			role = ?, is_staff = ?, is_superuser = ?
		WHERE id = ?`,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio,
		string(u.Role), u.IsStaff, u.IsSuperuser,
		u.ID,
	)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteUser removes a user together with their reviews and comments.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ListUsers returns users ordered by id.
func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) (*store.PaginatedResult[domain.User], error) {
	f.Validate()

	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		conds = append(conds, s.dialect.ilike("username"))
		args = append(args, likePattern(f.Search))
	}
	where := whereClause(conds)

	total, err := s.count(ctx, `SELECT COUNT(*) FROM users`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.query(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY id LIMIT ? OFFSET ?`,
		append(args, f.PageSize, f.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPaginatedResult(users, total, f.PaginationParams), nil
}

// SetConfirmationCode stores the hash of a pending code, replacing any previous one.
func (s *Store) SetConfirmationCode(ctx context.Context, userID int64, hash string) error {
	res, err := s.exec(ctx, `UPDATE users SET confirmation_code = ? WHERE id = ?`, nullString(hash), userID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// ConsumeConfirmationCode clears the code if it is still hash.
// Two concurrent token requests with the same code cannot both succeed.
func (s *Store) ConsumeConfirmationCode(ctx context.Context, userID int64, hash string) (bool, error) {
	res, err := s.exec(ctx,
		`UPDATE users SET confirmation_code = NULL WHERE id = ? AND confirmation_code = ?`,
		userID, hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
