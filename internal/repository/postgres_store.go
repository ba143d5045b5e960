package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/persistence"
)

// PostgresStore persists the collections in Postgres tables.
type PostgresStore struct {
	db *persistence.Postgres
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *persistence.Postgres) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Tickets() TicketRepository {
	return &pgTicketRepository{pool: s.db.Pool}
}

func (s *PostgresStore) Stats() StatsRepository {
	return &pgStatsRepository{pool: s.db.Pool}
}

func (s *PostgresStore) Blacklist() BlacklistRepository {
	return &pgBlacklistRepository{pool: s.db.Pool}
}

func (s *PostgresStore) Reviews() ReviewRepository {
	return &pgReviewRepository{pool: s.db.Pool}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

type pgTicketRepository struct {
	pool *pgxpool.Pool
}

const ticketColumns = `channel_id, opener_id, category, created_at, updated_at, assigned_to, warned_inactive_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		channelID, openerID int64
		category            string
		assignedTo          *int64
		t                   domain.Ticket
	)
	if err := row.Scan(&channelID, &openerID, &category, &t.CreatedAt, &t.UpdatedAt, &assignedTo, &t.WarnedInactiveAt); err != nil {
		return nil, err
	}
	t.ChannelID = domain.Snowflake(channelID)
	t.OpenerID = domain.Snowflake(openerID)
	t.Category = domain.Category(category)
	if assignedTo != nil {
		id := domain.Snowflake(*assignedTo)
		t.AssignedTo = &id
	}
	return &t, nil
}

func nullableID(id *domain.Snowflake) *int64 {
	if id == nil {
		return nil
	}
	v := int64(*id)
	return &v
}

func (r *pgTicketRepository) Get(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE channel_id = $1`
	t, err := scanTicket(r.pool.QueryRow(ctx, query, int64(channelID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *pgTicketRepository) Put(ctx context.Context, t *domain.Ticket) error {
	if err := t.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (channel_id) DO UPDATE SET
			opener_id = EXCLUDED.opener_id,
			category = EXCLUDED.category,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			assigned_to = EXCLUDED.assigned_to,
			warned_inactive_at = EXCLUDED.warned_inactive_at`
	_, err := r.pool.Exec(ctx, query,
		int64(t.ChannelID),
		int64(t.OpenerID),
		string(t.Category),
		t.CreatedAt,
		t.UpdatedAt,
		nullableID(t.AssignedTo),
		t.WarnedInactiveAt,
	)
	return err
}

func (r *pgTicketRepository) Delete(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	const query = `DELETE FROM tickets WHERE channel_id = $1 RETURNING ` + ticketColumns
	t, err := scanTicket(r.pool.QueryRow(ctx, query, int64(channelID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *pgTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at, channel_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

type pgStatsRepository struct {
	pool *pgxpool.Pool
}

func (r *pgStatsRepository) Get(ctx context.Context, staffID domain.Snowflake) (*domain.StaffStat, error) {
	const query = `SELECT claims, closed FROM staff_stats WHERE staff_id = $1`
	stat := domain.NewStaffStat(staffID)
	err := r.pool.QueryRow(ctx, query, int64(staffID)).Scan(&stat.Claims, &stat.Closed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const msgQuery = `SELECT channel_id, count FROM staff_ticket_messages WHERE staff_id = $1`
	rows, err := r.pool.Query(ctx, msgQuery, int64(staffID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var channelID int64
		var count int
		if err := rows.Scan(&channelID, &count); err != nil {
			return nil, err
		}
		stat.MessagesByTicket[domain.Snowflake(channelID)] = count
	}
	return stat, rows.Err()
}

func (r *pgStatsRepository) Put(ctx context.Context, stat *domain.StaffStat) error {
	if err := stat.Validate(); err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const upsert = `
			INSERT INTO staff_stats (staff_id, claims, closed)
			VALUES ($1, $2, $3)
			ON CONFLICT (staff_id) DO UPDATE SET claims = EXCLUDED.claims, closed = EXCLUDED.closed`
		if _, err := tx.Exec(ctx, upsert, int64(stat.StaffID), stat.Claims, stat.Closed); err != nil {
			return err
		}

		const clear = `DELETE FROM staff_ticket_messages WHERE staff_id = $1`
		if _, err := tx.Exec(ctx, clear, int64(stat.StaffID)); err != nil {
			return err
		}

		if len(stat.MessagesByTicket) == 0 {
			return nil
		}
		const insert = `INSERT INTO staff_ticket_messages (staff_id, channel_id, count) VALUES ($1, $2, $3)`
		batch := &pgx.Batch{}
		for channelID, count := range stat.MessagesByTicket {
			batch.Queue(insert, int64(stat.StaffID), int64(channelID), count)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *pgStatsRepository) List(ctx context.Context) ([]domain.StaffStat, error) {
	const query = `
		SELECT s.staff_id, s.claims, s.closed, m.channel_id, m.count
		FROM staff_stats s
		LEFT JOIN staff_ticket_messages m ON m.staff_id = s.staff_id
		ORDER BY s.seq`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.StaffStat
	index := map[domain.Snowflake]int{}
	for rows.Next() {
		var (
			staffID, claims, closed int64
			channelID               *int64
			count                   *int64
		)
		if err := rows.Scan(&staffID, &claims, &closed, &channelID, &count); err != nil {
			return nil, err
		}
		id := domain.Snowflake(staffID)
		i, ok := index[id]
		if !ok {
			stat := domain.NewStaffStat(id)
			stat.Claims = int(claims)
			stat.Closed = int(closed)
			stats = append(stats, *stat)
			i = len(stats) - 1
			index[id] = i
		}
		if channelID != nil && count != nil {
			stats[i].MessagesByTicket[domain.Snowflake(*channelID)] = int(*count)
		}
	}
	return stats, rows.Err()
}

type pgBlacklistRepository struct {
	pool *pgxpool.Pool
}

func (r *pgBlacklistRepository) Contains(ctx context.Context, userID domain.Snowflake) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM blacklist WHERE user_id = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, int64(userID)).Scan(&exists)
	return exists, err
}

func (r *pgBlacklistRepository) Put(ctx context.Context, userID domain.Snowflake) (bool, error) {
	const query = `INSERT INTO blacklist (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, int64(userID))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *pgBlacklistRepository) Delete(ctx context.Context, userID domain.Snowflake) (bool, error) {
	const query = `DELETE FROM blacklist WHERE user_id = $1`
	cmd, err := r.pool.Exec(ctx, query, int64(userID))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *pgBlacklistRepository) List(ctx context.Context) ([]domain.Snowflake, error) {
	const query = `SELECT user_id FROM blacklist ORDER BY seq`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []domain.Snowflake{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.Snowflake(id))
	}
	return ids, rows.Err()
}

type pgReviewRepository struct {
	pool *pgxpool.Pool
}

func (r *pgReviewRepository) Append(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO reviews (id, user_id, channel_id, stars, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		review.ID,
		int64(review.UserID),
		int64(review.ChannelID),
		review.Stars,
		review.Comment,
		review.CreatedAt,
	)
	return err
}

func (r *pgReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	const query = `SELECT id, user_id, channel_id, stars, comment, created_at FROM reviews ORDER BY seq`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var (
			rv                domain.Review
			userID, channelID int64
			stars             int16
			createdAt         time.Time
		)
		if err := rows.Scan(&rv.ID, &userID, &channelID, &stars, &rv.Comment, &createdAt); err != nil {
			return nil, err
		}
		rv.UserID = domain.Snowflake(userID)
		rv.ChannelID = domain.Snowflake(channelID)
		rv.Stars = int(stars)
		rv.CreatedAt = createdAt
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
