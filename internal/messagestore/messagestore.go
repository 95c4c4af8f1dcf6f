// Package messagestore persists inbound messages in sqlite, keyed by
// message_id, and serves the filtered list and aggregate queries over them.
package messagestore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ai.lyftr.inbox/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/gommon/log"
	"github.com/mattn/go-sqlite3"
)

const topSendersLimit = 10

// Filters narrow a listing; zero values are inactive and active ones compose
// with AND. Since is an inclusive lexical lower bound on the message
// timestamp, Query a case-insensitive substring match on the text.
type Filters struct {
	From  string
	Since string
	Query string
}

type messagestore struct {
	db *sqlx.DB
}

func New(path string) (*messagestore, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &messagestore{db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return store, nil
}

func (s *messagestore) Close() error {
	return s.db.Close()
}

func (s *messagestore) createTables() error {
	_, err := s.db.Exec(`create table if not exists messages(
		message_id  text not null primary key,
		from_msisdn text not null,
		to_msisdn   text not null,
		ts          text not null,
		text        text null,
		created_at  text not null
	)`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}
	return nil
}

// Insert writes a new message row, assigning created_at at the moment of the
// attempt. The primary key constraint is the arbiter for duplicates: a
// constraint violation means a row with this message_id already exists, the
// original row stays untouched and duplicate is true. Any other failure is a
// storage error.
func (s *messagestore) Insert(payload *model.WebhookPayload) (bool, error) {
	message := &model.Message{
		MessageID: payload.MessageID,
		From:      payload.From,
		To:        payload.To,
		Timestamp: payload.Timestamp,
		Text:      payload.Text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	_, err := s.db.NamedExec(`insert into messages
		(message_id, from_msisdn, to_msisdn, ts, text, created_at)
		values(:message_id, :from_msisdn, :to_msisdn, :ts, :text, :created_at)`, message)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return true, nil
		}
		return false, fmt.Errorf("inserting message: %w", err)
	}

	return false, nil
}

// List returns one page of messages in (ts, message_id) order plus the total
// match count before pagination. The caller is responsible for keeping limit
// in [1,100] and offset non-negative. Read failures degrade to an empty
// result rather than propagating.
func (s *messagestore) List(limit int, offset int, filters Filters) ([]model.Message, int) {
	conditions := []string{}
	args := []interface{}{}

	if filters.From != "" {
		conditions = append(conditions, "from_msisdn = ?")
		args = append(args, filters.From)
	}
	if filters.Since != "" {
		conditions = append(conditions, "ts >= ?")
		args = append(args, filters.Since)
	}
	if filters.Query != "" {
		conditions = append(conditions, "lower(text) like ?")
		args = append(args, "%"+strings.ToLower(filters.Query)+"%")
	}

	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " and ")
	}

	var total int
	if err := s.db.Get(&total, "select count(*) from messages where "+where, args...); err != nil {
		log.Errorf("counting messages: %+v", err)
		return []model.Message{}, 0
	}

	items := []model.Message{}
	query := `select message_id, from_msisdn, to_msisdn, ts, text from messages
		where ` + where + `
		order by ts asc, message_id asc
		limit ? offset ?`
	if err := s.db.Select(&items, query, append(args, limit, offset)...); err != nil {
		log.Errorf("listing messages: %+v", err)
		return []model.Message{}, 0
	}

	return items, total
}

// Stats aggregates over every stored message. Failures degrade to zero
// values, same as the list path.
func (s *messagestore) Stats() *model.Stats {
	stats := &model.Stats{MessagesPerSender: []model.SenderCount{}}

	if err := s.db.Get(&stats.TotalMessages, "select count(*) from messages"); err != nil {
		log.Errorf("counting messages: %+v", err)
		return stats
	}

	if err := s.db.Get(&stats.SendersCount, "select count(distinct from_msisdn) from messages"); err != nil {
		log.Errorf("counting senders: %+v", err)
		return stats
	}

	if err := s.db.Select(&stats.MessagesPerSender, `select from_msisdn, count(*) as count
		from messages
		group by from_msisdn
		order by count desc, from_msisdn asc
		limit ?`, topSendersLimit); err != nil {
		log.Errorf("tallying senders: %+v", err)
		return stats
	}

	bounds := struct {
		First *string `db:"first"`
		Last  *string `db:"last"`
	}{}
	if err := s.db.Get(&bounds, "select min(ts) as first, max(ts) as last from messages"); err != nil {
		log.Errorf("finding timestamp bounds: %+v", err)
		return stats
	}
	stats.FirstMessageTimestamp = bounds.First
	stats.LastMessageTimestamp = bounds.Last

	return stats
}

// Ping reports whether the database currently answers a trivial round-trip.
func (s *messagestore) Ping() bool {
	var one int
	if err := s.db.Get(&one, "select 1"); err != nil {
		log.Errorf("pinging database: %+v", err)
		return false
	}
	return true
}
