package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"catalog-annotations/internal/domain"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// annotationConflictColumns backs the unique index every annotation table carries.
const annotationConflictColumns = "user_id,subject_name"

// SupabaseAnnotationRepository implements domain.AnnotationStore with one
// PostgREST table per annotation kind.
type SupabaseAnnotationRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
	tables         map[domain.AnnotationKind]string
}

func NewSupabaseAnnotationRepository(supabaseClient domain.SupabaseClient, favoritesTable, dislikesTable string, logger domain.Logger) *SupabaseAnnotationRepository {
	return &SupabaseAnnotationRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
		tables: map[domain.AnnotationKind]string{
			domain.AnnotationFavorite: favoritesTable,
			domain.AnnotationDislike:  dislikesTable,
		},
	}
}

// client returns a client scoped to the session token on ctx, if any.
func (r *SupabaseAnnotationRepository) client(ctx context.Context) (*supabase.Client, error) {
	token := ""
	if session, ok := domain.SessionFromContext(ctx); ok {
		token = session.Token
	}
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get client with token: %v", domain.ErrRemoteUnavailable, err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: supabase client not initialized", domain.ErrRemoteUnavailable)
	}
	return client, nil
}

func (r *SupabaseAnnotationRepository) table(kind domain.AnnotationKind) (string, error) {
	table, ok := r.tables[kind]
	if !ok || table == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidKind, kind)
	}
	return table, nil
}

func (r *SupabaseAnnotationRepository) Query(ctx context.Context, kind domain.AnnotationKind, filter domain.AnnotationFilter) ([]*domain.Annotation, error) {
	if filter.OwnerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	table, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	q := client.From(table).
		Select("*", "", false).
		Eq("user_id", filter.OwnerID)
	if filter.SubjectName != "" {
		q = q.Eq("subject_name", filter.SubjectName)
	}
	q = q.Order("created_at", &postgrest.OrderOpts{Ascending: true})
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit, "")
	}

	data, _, err := q.Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %v", domain.ErrRemoteUnavailable, table, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", domain.ErrRemoteUnavailable, err)
	}

	out := make([]*domain.Annotation, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapToAnnotation(kind, row))
	}
	return out, nil
}

func (r *SupabaseAnnotationRepository) Insert(ctx context.Context, annotation *domain.Annotation) (*domain.Annotation, error) {
	table, err := r.table(annotation.Kind)
	if err != nil {
		return nil, err
	}
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	// Each table carries a boolean column named after its kind.
	row := map[string]interface{}{
		"user_id":               annotation.OwnerID,
		"subject_name":          annotation.SubjectName,
		string(annotation.Kind): true,
	}

	// Each table has a unique index on (user_id, subject_name). Merging on it
	// makes a repeated insert return the existing row instead of a duplicate.
	data, _, err := client.From(table).
		Upsert(row, annotationConflictColumns, "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert into %s: %v", domain.ErrRemoteUnavailable, table, err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		// The row was written; the caller falls back to a lookup to learn the id.
		r.logger.Warn("Insert returned no representation", "table", table, "subject_name", annotation.SubjectName)
		stored := *annotation
		stored.ID = ""
		return &stored, nil
	}

	return mapToAnnotation(annotation.Kind, rows[0]), nil
}

func (r *SupabaseAnnotationRepository) DeleteByID(ctx context.Context, kind domain.AnnotationKind, ownerID, id string) error {
	if id == "" {
		return nil
	}
	table, err := r.table(kind)
	if err != nil {
		return err
	}
	client, err := r.client(ctx)
	if err != nil {
		return err
	}

	// PostgREST answers a delete matching nothing with success, which keeps delete idempotent.
	_, _, err = client.From(table).
		Delete("", "").
		Eq("id", id).
		Eq("user_id", ownerID).
		Execute()
	if err != nil {
		return fmt.Errorf("%w: failed to delete from %s: %v", domain.ErrRemoteUnavailable, table, err)
	}
	return nil
}

func mapToAnnotation(kind domain.AnnotationKind, data map[string]interface{}) *domain.Annotation {
	a := &domain.Annotation{
		ID:          getID(data, "id"),
		OwnerID:     getString(data, "user_id"),
		SubjectName: getString(data, "subject_name"),
		Kind:        kind,
	}

	if createdAt := getString(data, "created_at"); createdAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			a.CreatedAt = t
		}
	}
	return a
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// getID accepts both uuid and bigint primary keys.
func getID(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok && val != nil {
		switch v := val.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}
