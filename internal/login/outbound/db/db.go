package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/goerror"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DB reads user accounts from the identity store. The login flow never writes
// to it; account management belongs to another service.
type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("login.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

const getUserByIdentifierQuery = `
SELECT id, username, email, phone, password, enabled
FROM users
WHERE username = $1 OR email = $1 OR phone = $1`

// GetUserByIdentifier resolves one account by username, email, or phone.
// More than one match means the identifier is ambiguous across accounts and
// surfaces as goerror.ErrConflict.
func (s *DB) GetUserByIdentifier(ctx context.Context, identifier string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByIdentifier")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, getUserByIdentifierQuery, identifier)
	if err != nil {
		return nil, s.mapError(err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByPos[entity.User])
	if err != nil {
		return nil, s.mapError(err)
	}

	switch len(users) {
	case 0:
		err = goerror.ErrNotFound
		return nil, err
	case 1:
		return &users[0], nil
	default:
		err = goerror.ErrConflict
		return nil, err
	}
}
