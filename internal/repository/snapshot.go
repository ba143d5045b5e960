package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

// File names of the four collections inside the data directory.
const (
	TicketsFile   = "tickets.json"
	StatsFile     = "stats.json"
	BlacklistFile = "blacklist.json"
	ReviewsFile   = "reviews.json"
)

// Snapshot is the complete durable state of one bot.
type Snapshot struct {
	Tickets   map[domain.Snowflake]*domain.Ticket
	Stats     []*domain.StaffStat
	Blacklist []domain.Snowflake
	Reviews   []domain.Review
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Tickets:   map[domain.Snowflake]*domain.Ticket{},
		Stats:     []*domain.StaffStat{},
		Blacklist: []domain.Snowflake{},
		Reviews:   []domain.Review{},
	}
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Tickets:   make(map[domain.Snowflake]*domain.Ticket, len(s.Tickets)),
		Stats:     make([]*domain.StaffStat, 0, len(s.Stats)),
		Blacklist: append([]domain.Snowflake{}, s.Blacklist...),
		Reviews:   append([]domain.Review{}, s.Reviews...),
	}
	for id, t := range s.Tickets {
		c.Tickets[id] = t.Clone()
	}
	for _, stat := range s.Stats {
		c.Stats = append(c.Stats, stat.Clone())
	}
	return c
}

// LoadSnapshot reads the four collections from dir. Missing files are empty
// collections; malformed files or records are errors.
func LoadSnapshot(dir string) (*Snapshot, error) {
	snap := NewSnapshot()

	tickets := map[string]*domain.Ticket{}
	if err := readJSON(filepath.Join(dir, TicketsFile), &tickets); err != nil {
		return nil, err
	}
	for key, t := range tickets {
		if t == nil {
			return nil, fmt.Errorf("%s: ticket %s is null", TicketsFile, key)
		}
		id, err := domain.ParseSnowflake(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TicketsFile, err)
		}
		if t.ChannelID != id {
			return nil, fmt.Errorf("%s: ticket %s carries channel_id %s", TicketsFile, key, t.ChannelID)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%s: ticket %s: %w", TicketsFile, key, err)
		}
		snap.Tickets[id] = t
	}

	var stats orderedStats
	if err := readJSON(filepath.Join(dir, StatsFile), &stats); err != nil {
		return nil, err
	}
	for _, stat := range stats {
		if err := stat.Validate(); err != nil {
			return nil, fmt.Errorf("%s: staff %s: %w", StatsFile, stat.StaffID, err)
		}
	}
	snap.Stats = append(snap.Stats, stats...)

	if err := readJSON(filepath.Join(dir, BlacklistFile), &snap.Blacklist); err != nil {
		return nil, err
	}
	if snap.Blacklist == nil {
		snap.Blacklist = []domain.Snowflake{}
	}

	if err := readJSON(filepath.Join(dir, ReviewsFile), &snap.Reviews); err != nil {
		return nil, err
	}
	if snap.Reviews == nil {
		snap.Reviews = []domain.Review{}
	}
	for i := range snap.Reviews {
		if err := snap.Reviews[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: review %d: %w", ReviewsFile, i, err)
		}
	}
	return snap, nil
}

// WriteSnapshot rewrites all four collections in dir, each file atomically.
func WriteSnapshot(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	files := []struct {
		name  string
		value any
	}{
		{TicketsFile, snap.Tickets},
		{StatsFile, orderedStats(snap.Stats)},
		{BlacklistFile, snap.Blacklist},
		{ReviewsFile, snap.Reviews},
	}
	for _, f := range files {
		raw, err := json.MarshalIndent(f.value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := atomic.WriteFile(filepath.Join(dir, f.name), bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

func readJSON(path string, dest any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// orderedStats encodes as a JSON object keyed by staff id while keeping the
// order in which staff members first appeared.
type orderedStats []*domain.StaffStat

func (o orderedStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, stat := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(stat.StaffID.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(stat)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *orderedStats) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("stats must be a JSON object")
	}
	seen := map[domain.Snowflake]bool{}
	out := orderedStats{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		id, err := domain.ParseSnowflake(key)
		if err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("duplicate staff id %s", key)
		}
		seen[id] = true
		stat := domain.NewStaffStat(id)
		if err := dec.Decode(stat); err != nil {
			return fmt.Errorf("staff %s: %w", key, err)
		}
		stat.StaffID = id
		if stat.MessagesByTicket == nil {
			stat.MessagesByTicket = map[domain.Snowflake]int{}
		}
		out = append(out, stat)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}
