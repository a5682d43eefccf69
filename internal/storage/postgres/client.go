// Package postgres реализует клиент хранилища поверх PostgreSQL. Коллекции —
// это таблицы с jsonb-документами, фильтры транслируются в выражения по
// полям документа, полный размер выборки считается отдельным COUNT(*).
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
)

// Известные коллекции: location транслируется в имя таблицы, всё остальное
// отклоняется до построения SQL.
var collections = map[string]bool{
	"products": true,
	"orders":   true,
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Client — storage.Client поверх PostgreSQL.
type Client struct {
	db *sql.DB
}

// NewClient создаёт клиент над открытым подключением.
func NewClient(store *Store) *Client {
	return &Client{db: store.DB()}
}

// Probe проверяет доступность базы, превращая ошибки соединения в false.
func (c *Client) Probe(ctx context.Context, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.PingContext(probeCtx) == nil
}

func (c *Client) Get(ctx context.Context, location string, query *storage.Query) ([]byte, error) {
	data, _, err := c.GetWithMeta(ctx, location, query)
	return data, err
}

func (c *Client) GetWithMeta(ctx context.Context, location string, query *storage.Query) ([]byte, storage.Meta, error) {
	table, id, err := resolveLocation(location)
	if err != nil {
		return nil, storage.Meta{}, err
	}

	if id != "" {
		var doc []byte
		err := c.db.QueryRowContext(ctx,
			`SELECT doc FROM `+table+` WHERE id = $1`, id,
		).Scan(&doc)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.Meta{}, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
		}
		if err != nil {
			return nil, storage.Meta{}, fmt.Errorf("%w: select %s: %v", domain.ErrUnavailable, location, err)
		}
		return doc, storage.Meta{}, nil
	}

	where, args, err := buildWhere(query)
	if err != nil {
		return nil, storage.Meta{}, err
	}

	stmt := `SELECT doc FROM ` + table + where
	if clause, err := orderClause(query); err != nil {
		return nil, storage.Meta{}, err
	} else if clause != "" {
		stmt += clause
	}
	if query.Paginated() {
		stmt += " LIMIT " + strconv.Itoa(query.Limit) + " OFFSET " + strconv.Itoa((query.Page-1)*query.Limit)
	}

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, storage.Meta{}, fmt.Errorf("%w: select %s: %v", domain.ErrUnavailable, location, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, storage.Meta{}, fmt.Errorf("%w: scan %s row: %v", domain.ErrUnavailable, location, err)
		}
		docs = append(docs, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Meta{}, fmt.Errorf("%w: iterate %s rows: %v", domain.ErrUnavailable, location, err)
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return nil, storage.Meta{}, fmt.Errorf("marshal collection: %w", err)
	}

	meta := storage.Meta{}
	if query.Paginated() {
		var total int
		if err := c.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+table+where, args...,
		).Scan(&total); err != nil {
			return nil, storage.Meta{}, fmt.Errorf("%w: count %s: %v", domain.ErrUnavailable, location, err)
		}
		meta = storage.Meta{Total: total, HasTotal: true}
	}

	return data, meta, nil
}

func (c *Client) Post(ctx context.Context, location string, payload any) ([]byte, error) {
	table, id, err := resolveLocation(location)
	if err != nil {
		return nil, err
	}
	if id != "" {
		return nil, fmt.Errorf("%w: post expects a collection, got %s", domain.ErrUnavailable, location)
	}

	doc, err := toDocument(payload)
	if err != nil {
		return nil, err
	}
	if docID(doc) == "" {
		doc["id"] = uuid.NewString()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES ($1, $2)`, docID(doc), data,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, location)
		}
		return nil, fmt.Errorf("%w: insert %s: %v", domain.ErrUnavailable, location, err)
	}

	return data, nil
}

func (c *Client) Patch(ctx context.Context, location string, payload any) ([]byte, error) {
	table, id, err := resolveLocation(location)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: patch expects a document, got %s", domain.ErrUnavailable, location)
	}

	patch, err := toDocument(payload)
	if err != nil {
		return nil, err
	}
	// Идентификатор документа неизменен.
	delete(patch, "id")
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}

	var doc []byte
	err = c.db.QueryRowContext(ctx,
		`UPDATE `+table+` SET doc = doc || $2::jsonb WHERE id = $1 RETURNING doc`, id, data,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, location)
		}
		return nil, fmt.Errorf("%w: update %s: %v", domain.ErrUnavailable, location, err)
	}

	return doc, nil
}

func (c *Client) Delete(ctx context.Context, location string) error {
	table, id, err := resolveLocation(location)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: delete expects a document, got %s", domain.ErrUnavailable, location)
	}

	res, err := c.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrUnavailable, location, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", domain.ErrUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	}
	return nil
}

func resolveLocation(location string) (table, id string, err error) {
	parts := strings.SplitN(strings.Trim(location, "/"), "/", 2)
	table = parts[0]
	if len(parts) == 2 {
		id = parts[1]
	}
	if !collections[table] {
		return "", "", fmt.Errorf("%w: unknown collection %q", domain.ErrUnavailable, table)
	}
	return table, id, nil
}

// buildWhere транслирует фильтры в условия по полям jsonb-документа:
// обычный ключ — равенство строкового значения, "_gte"/"_lte" — границы
// числового диапазона.
func buildWhere(query *storage.Query) (string, []any, error) {
	if query == nil || len(query.Filters) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(query.Filters))
	args := make([]any, 0, len(query.Filters))
	for key, value := range query.Filters {
		field, op := key, "="
		cast := false
		switch {
		case strings.HasSuffix(key, "_gte"):
			field, op, cast = strings.TrimSuffix(key, "_gte"), ">=", true
		case strings.HasSuffix(key, "_lte"):
			field, op, cast = strings.TrimSuffix(key, "_lte"), "<=", true
		}
		if !identifierRe.MatchString(field) {
			return "", nil, fmt.Errorf("%w: invalid filter field %q", domain.ErrUnavailable, field)
		}

		placeholder := "$" + strconv.Itoa(len(args)+1)
		if cast {
			bound, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return "", nil, fmt.Errorf("%w: filter %s expects a number, got %q", domain.ErrUnavailable, key, value)
			}
			conds = append(conds, fmt.Sprintf("(doc->>'%s')::numeric %s %s", field, op, placeholder))
			args = append(args, bound)
		} else {
			conds = append(conds, fmt.Sprintf("doc->>'%s' %s %s", field, op, placeholder))
			args = append(args, value)
		}
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func orderClause(query *storage.Query) (string, error) {
	if query == nil || query.Sort == nil {
		return "", nil
	}
	if !identifierRe.MatchString(query.Sort.Field) {
		return "", fmt.Errorf("%w: invalid sort field %q", domain.ErrUnavailable, query.Sort.Field)
	}
	direction := "ASC"
	if query.Sort.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY doc->>'%s' %s, id %s", query.Sort.Field, direction, direction), nil
}

func toDocument(payload any) (map[string]any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return doc, nil
}

func docID(doc map[string]any) string {
	id, _ := doc["id"].(string)
	return id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ storage.Client = (*Client)(nil)
