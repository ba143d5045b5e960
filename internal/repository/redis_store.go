package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/persistence"
)

// RedisStore persists the collections under one key prefix:
//
//	<prefix>:tickets         hash channel id -> ticket JSON
//	<prefix>:stats           hash staff id -> stat JSON
//	<prefix>:stats:order     zset staff id scored by first insertion
//	<prefix>:blacklist       zset user id scored by insertion
//	<prefix>:reviews         list of review JSON
//	<prefix>:seq             insertion counter
type RedisStore struct {
	db     *persistence.Redis
	prefix string
}

// NewRedisStore wraps a connected client. prefix namespaces every key.
func NewRedisStore(db *persistence.Redis, prefix string) *RedisStore {
	return &RedisStore{db: db, prefix: prefix}
}

func (s *RedisStore) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *RedisStore) nextSeq(ctx context.Context) (float64, error) {
	n, err := s.db.Client.Incr(ctx, s.key("seq")).Result()
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

func (s *RedisStore) Tickets() TicketRepository      { return redisTickets{s} }
func (s *RedisStore) Stats() StatsRepository         { return redisStats{s} }
func (s *RedisStore) Blacklist() BlacklistRepository { return redisBlacklist{s} }
func (s *RedisStore) Reviews() ReviewRepository      { return redisReviews{s} }
func (s *RedisStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func (s *RedisStore) Close() error {
	s.db.Close()
	return nil
}

type redisTickets struct{ s *RedisStore }

func (r redisTickets) Get(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	raw, err := r.s.db.Client.HGet(ctx, r.s.key("tickets"), channelID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeTicket(raw)
}

func (r redisTickets) Put(ctx context.Context, t *domain.Ticket) error {
	if err := t.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.s.db.Client.HSet(ctx, r.s.key("tickets"), t.ChannelID.String(), raw).Err()
}

func (r redisTickets) Delete(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	t, err := r.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := r.s.db.Client.HDel(ctx, r.s.key("tickets"), channelID.String()).Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func (r redisTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	all, err := r.s.db.Client.HGetAll(ctx, r.s.key("tickets")).Result()
	if err != nil {
		return nil, err
	}
	tickets := make([]domain.Ticket, 0, len(all))
	for _, raw := range all {
		t, err := decodeTicket([]byte(raw))
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	sortTickets(tickets)
	return tickets, nil
}

func decodeTicket(raw []byte) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

type redisStats struct{ s *RedisStore }

func (r redisStats) Get(ctx context.Context, staffID domain.Snowflake) (*domain.StaffStat, error) {
	raw, err := r.s.db.Client.HGet(ctx, r.s.key("stats"), staffID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeStat(staffID, raw)
}

func (r redisStats) Put(ctx context.Context, stat *domain.StaffStat) error {
	if err := stat.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(stat)
	if err != nil {
		return err
	}
	client := r.s.db.Client
	member := stat.StaffID.String()
	if _, err := client.ZScore(ctx, r.s.key("stats", "order"), member).Result(); errors.Is(err, redis.Nil) {
		seq, err := r.s.nextSeq(ctx)
		if err != nil {
			return err
		}
		if err := client.ZAddNX(ctx, r.s.key("stats", "order"), redis.Z{Score: seq, Member: member}).Err(); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return client.HSet(ctx, r.s.key("stats"), member, raw).Err()
}

func (r redisStats) List(ctx context.Context) ([]domain.StaffStat, error) {
	client := r.s.db.Client
	order, err := client.ZRange(ctx, r.s.key("stats", "order"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	all, err := client.HGetAll(ctx, r.s.key("stats")).Result()
	if err != nil {
		return nil, err
	}
	stats := make([]domain.StaffStat, 0, len(order))
	for _, member := range order {
		raw, ok := all[member]
		if !ok {
			continue
		}
		id, err := domain.ParseSnowflake(member)
		if err != nil {
			return nil, err
		}
		stat, err := decodeStat(id, []byte(raw))
		if err != nil {
			return nil, err
		}
		stats = append(stats, *stat)
	}
	return stats, nil
}

func decodeStat(id domain.Snowflake, raw []byte) (*domain.StaffStat, error) {
	stat := domain.NewStaffStat(id)
	if err := json.Unmarshal(raw, stat); err != nil {
		return nil, fmt.Errorf("decode stat %s: %w", id, err)
	}
	stat.StaffID = id
	if stat.MessagesByTicket == nil {
		stat.MessagesByTicket = map[domain.Snowflake]int{}
	}
	return stat, stat.Validate()
}

type redisBlacklist struct{ s *RedisStore }

func (r redisBlacklist) Contains(ctx context.Context, userID domain.Snowflake) (bool, error) {
	_, err := r.s.db.Client.ZScore(ctx, r.s.key("blacklist"), userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return err == nil, err
}

func (r redisBlacklist) Put(ctx context.Context, userID domain.Snowflake) (bool, error) {
	seq, err := r.s.nextSeq(ctx)
	if err != nil {
		return false, err
	}
	n, err := r.s.db.Client.ZAddNX(ctx, r.s.key("blacklist"), redis.Z{Score: seq, Member: userID.String()}).Result()
	return n > 0, err
}

func (r redisBlacklist) Delete(ctx context.Context, userID domain.Snowflake) (bool, error) {
	n, err := r.s.db.Client.ZRem(ctx, r.s.key("blacklist"), userID.String()).Result()
	return n > 0, err
}

func (r redisBlacklist) List(ctx context.Context) ([]domain.Snowflake, error) {
	members, err := r.s.db.Client.ZRange(ctx, r.s.key("blacklist"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]domain.Snowflake, 0, len(members))
	for _, m := range members {
		id, err := domain.ParseSnowflake(m)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type redisReviews struct{ s *RedisStore }

func (r redisReviews) Append(ctx context.Context, review *domain.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(review)
	if err != nil {
		return err
	}
	return r.s.db.Client.RPush(ctx, r.s.key("reviews"), raw).Err()
}

func (r redisReviews) List(ctx context.Context) ([]domain.Review, error) {
	items, err := r.s.db.Client.LRange(ctx, r.s.key("reviews"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(items))
	for _, item := range items {
		var rv domain.Review
		if err := json.Unmarshal([]byte(item), &rv); err != nil {
			return nil, fmt.Errorf("decode review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}
