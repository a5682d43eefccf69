// Package memory реализует клиент хранилища поверх обычных map — для
// локальной разработки и тестов, без внешнего бэкенда.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
)

type document = map[string]any

// client хранит коллекции документов в памяти, сохраняя порядок вставки.
type client struct {
	mu          sync.RWMutex
	collections map[string][]document
}

// NewClient возвращает пустое in-memory хранилище.
func NewClient() storage.Client {
	return &client{collections: make(map[string][]document)}
}

// Probe для in-memory хранилища всегда успешен.
func (c *client) Probe(_ context.Context, _ time.Duration) bool {
	return true
}

func (c *client) Get(ctx context.Context, location string, query *storage.Query) ([]byte, error) {
	data, _, err := c.GetWithMeta(ctx, location, query)
	return data, err
}

func (c *client) GetWithMeta(ctx context.Context, location string, query *storage.Query) ([]byte, storage.Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, storage.Meta{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	collection, id := splitLocation(location)

	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := c.collections[collection]

	if id != "" {
		doc, _, ok := findByID(docs, id)
		if !ok {
			return nil, storage.Meta{}, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, storage.Meta{}, fmt.Errorf("marshal document: %w", err)
		}
		return data, storage.Meta{}, nil
	}

	matched := make([]document, 0, len(docs))
	for _, doc := range docs {
		ok, err := matchFilters(doc, query)
		if err != nil {
			return nil, storage.Meta{}, err
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	if query != nil && query.Sort != nil {
		sortDocs(matched, *query.Sort)
	}

	meta := storage.Meta{}
	if query.Paginated() {
		meta = storage.Meta{Total: len(matched), HasTotal: true}
		matched = paginate(matched, query.Page, query.Limit)
	}

	data, err := json.Marshal(matched)
	if err != nil {
		return nil, storage.Meta{}, fmt.Errorf("marshal collection: %w", err)
	}
	return data, meta, nil
}

func (c *client) Post(ctx context.Context, location string, payload any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	collection, id := splitLocation(location)
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

	c.mu.Lock()
	defer c.mu.Unlock()

	c.collections[collection] = append(c.collections[collection], doc)

	return json.Marshal(doc)
}

func (c *client) Patch(ctx context.Context, location string, payload any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	collection, id := splitLocation(location)
	if id == "" {
		return nil, fmt.Errorf("%w: patch expects a document, got %s", domain.ErrUnavailable, location)
	}

	patch, err := toDocument(payload)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	docs := c.collections[collection]
	doc, idx, ok := findByID(docs, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	}

	// Переданные поля перекрывают существующие, идентификатор неизменен.
	for key, value := range patch {
		if key == "id" {
			continue
		}
		doc[key] = value
	}
	docs[idx] = doc

	return json.Marshal(doc)
}

func (c *client) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	collection, id := splitLocation(location)
	if id == "" {
		return fmt.Errorf("%w: delete expects a document, got %s", domain.ErrUnavailable, location)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	docs := c.collections[collection]
	_, idx, ok := findByID(docs, id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	}

	c.collections[collection] = append(docs[:idx], docs[idx+1:]...)
	return nil
}

func splitLocation(location string) (collection, id string) {
	parts := strings.SplitN(strings.Trim(location, "/"), "/", 2)
	collection = parts[0]
	if len(parts) == 2 {
		id = parts[1]
	}
	return collection, id
}

// toDocument переводит произвольный payload в map через JSON, заодно получая
// глубокую копию, независимую от памяти вызывающего.
func toDocument(payload any) (document, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return doc, nil
}

func docID(doc document) string {
	id, _ := doc["id"].(string)
	return id
}

func findByID(docs []document, id string) (document, int, bool) {
	for i, doc := range docs {
		if docID(doc) == id {
			return doc, i, true
		}
	}
	return nil, 0, false
}

func matchFilters(doc document, query *storage.Query) (bool, error) {
	if query == nil {
		return true, nil
	}
	for key, want := range query.Filters {
		switch {
		case strings.HasSuffix(key, "_gte"):
			ok, err := compareNumeric(doc, strings.TrimSuffix(key, "_gte"), want, false)
			if err != nil || !ok {
				return false, err
			}
		case strings.HasSuffix(key, "_lte"):
			ok, err := compareNumeric(doc, strings.TrimSuffix(key, "_lte"), want, true)
			if err != nil || !ok {
				return false, err
			}
		default:
			if valueString(doc[key]) != want {
				return false, nil
			}
		}
	}
	return true, nil
}

func compareNumeric(doc document, field, want string, lte bool) (bool, error) {
	bound, err := strconv.ParseFloat(want, 64)
	if err != nil {
		return false, fmt.Errorf("%w: filter %s expects a number, got %q", domain.ErrUnavailable, field, want)
	}
	value, ok := numericValue(doc[field])
	if !ok {
		return false, nil
	}
	if lte {
		return value <= bound, nil
	}
	return value >= bound, nil
}

func numericValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func valueString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}

func sortDocs(docs []document, by storage.Sort) {
	sort.SliceStable(docs, func(i, j int) bool {
		less := lessValues(docs[i][by.Field], docs[j][by.Field])
		if by.Desc {
			return lessValues(docs[j][by.Field], docs[i][by.Field])
		}
		return less
	})
}

func lessValues(a, b any) bool {
	av, aok := numericValue(a)
	bv, bok := numericValue(b)
	if aok && bok {
		return av < bv
	}
	// Таймстемпы документов имеют фиксированную ширину дробной части и
	// корректно сравниваются лексикографически.
	return valueString(a) < valueString(b)
}

func paginate(docs []document, page, limit int) []document {
	if limit < 1 {
		return docs
	}
	start := (page - 1) * limit
	if start >= len(docs) {
		return []document{}
	}
	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

var _ storage.Client = (*client)(nil)
