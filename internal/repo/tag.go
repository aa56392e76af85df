package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// TagRepo defines the persistence operations for tag types and tags.
type TagRepo interface {
	// CreateType inserts a tag type. Returns domain.ErrConflict when the title
	// is already used within the tenant.
	CreateType(ctx context.Context, t domain.TagType) (domain.TagType, error)

	// UpdateType overwrites a tag type's title, default icon and ad override.
	UpdateType(ctx context.Context, t domain.TagType) (domain.TagType, error)

	// DeleteType removes a tag type and, by cascade, its tags.
	DeleteType(ctx context.Context, tenantID, id uuid.UUID) error

	// GetTypeByID retrieves a tag type, scoped to the tenant.
	GetTypeByID(ctx context.Context, tenantID, id uuid.UUID) (domain.TagType, error)

	// GetTypeByTitle retrieves a tag type by case-insensitive title,
	// preferring an exact-case match.
	GetTypeByTitle(ctx context.Context, tenantID uuid.UUID, title string) (domain.TagType, error)

	// Create inserts a tag. Returns domain.ErrConflict when the title is
	// already used within the type.
	Create(ctx context.Context, t domain.Tag) (domain.Tag, error)

	// Update overwrites a tag's mutable fields.
	Update(ctx context.Context, t domain.Tag) (domain.Tag, error)

	// Delete removes a tag. The tag must belong to a type of tenantID.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// GetByID retrieves a tag with its type, scoped to the tenant.
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.ResolvedTag, error)

	// GetByTitle retrieves a tag of a type by case-insensitive title,
	// preferring an exact-case match.
	GetByTitle(ctx context.Context, typeID uuid.UUID, title string) (domain.Tag, error)

	// LookupRefs resolves every (type, tag) pair in refs, compared
	// case-insensitively, in a single query. Pairs that match nothing are
	// simply absent from the result.
	LookupRefs(ctx context.Context, tenantID uuid.UUID, refs []domain.TagRef) ([]domain.ResolvedTag, error)

	// ListByTypeWithCounts returns the tags of a type with the number of live
	// pages carrying each, most used first.
	ListByTypeWithCounts(ctx context.Context, typeID uuid.UUID, asOf time.Time) ([]TagCount, error)
}

// TagCount pairs a tag with the number of live pages it is attached to.
type TagCount struct {
	Tag   domain.Tag
	Pages int
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

const (
	tagTypeColumns     = `id, tenant_id, title, default_icon, ad_override_id, created_at`
	tagColumns         = `id, type_id, title, icon, post, ad_override_id, created_at`
	resolvedTagColumns = `t.id, t.type_id, t.title, t.icon, t.post, t.ad_override_id, t.created_at,
		tt.id, tt.tenant_id, tt.title, tt.default_icon, tt.ad_override_id, tt.created_at`
)

func (r *pgTagRepo) CreateType(ctx context.Context, t domain.TagType) (domain.TagType, error) {
	const q = `
		INSERT INTO tag_types (tenant_id, title, default_icon, ad_override_id)
		VALUES (@tenant_id, @title, @default_icon, @ad_override_id)
		RETURNING ` + tagTypeColumns

	args := pgx.NamedArgs{
		"tenant_id":      t.TenantID,
		"title":          t.Title,
		"default_icon":   t.DefaultIcon,
		"ad_override_id": t.AdOverrideID, // nil becomes NULL
	}
	result, err := scanTagType(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TagType{}, fmt.Errorf("repo.TagRepo.CreateType: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) UpdateType(ctx context.Context, t domain.TagType) (domain.TagType, error) {
	const q = `
		UPDATE tag_types
		SET title          = @title,
		    default_icon   = @default_icon,
		    ad_override_id = @ad_override_id
		WHERE id = @id AND tenant_id = @tenant_id
		RETURNING ` + tagTypeColumns

	args := pgx.NamedArgs{
		"id":             t.ID,
		"tenant_id":      t.TenantID,
		"title":          t.Title,
		"default_icon":   t.DefaultIcon,
		"ad_override_id": t.AdOverrideID,
	}
	result, err := scanTagType(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TagType{}, fmt.Errorf("repo.TagRepo.UpdateType: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) DeleteType(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tag_types WHERE id = @id AND tenant_id = @tenant_id`,
		pgx.NamedArgs{"id": id, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.DeleteType: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.DeleteType: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTagRepo) GetTypeByID(ctx context.Context, tenantID, id uuid.UUID) (domain.TagType, error) {
	q := `SELECT ` + tagTypeColumns + ` FROM tag_types WHERE id = @id AND tenant_id = @tenant_id`

	result, err := scanTagType(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return domain.TagType{}, fmt.Errorf("repo.TagRepo.GetTypeByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) GetTypeByTitle(ctx context.Context, tenantID uuid.UUID, title string) (domain.TagType, error) {
	q := `
		SELECT ` + tagTypeColumns + `
		FROM tag_types
		WHERE tenant_id = @tenant_id AND lower(title) = lower(@title)
		ORDER BY title = @title DESC, title
		LIMIT 1`

	result, err := scanTagType(r.db.QueryRow(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "title": title}))
	if err != nil {
		return domain.TagType{}, fmt.Errorf("repo.TagRepo.GetTypeByTitle: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) Create(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (type_id, title, icon, post, ad_override_id)
		VALUES (@type_id, @title, @icon, @post, @ad_override_id)
		RETURNING ` + tagColumns

	result, err := scanTag(r.db.QueryRow(ctx, q, tagArgs(t)))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) Update(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	const q = `
		UPDATE tags
		SET type_id        = @type_id,
		    title          = @title,
		    icon           = @icon,
		    post           = @post,
		    ad_override_id = @ad_override_id
		WHERE id = @id
		RETURNING ` + tagColumns

	args := tagArgs(t)
	args["id"] = t.ID
	result, err := scanTag(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	const q = `
		DELETE FROM tags t
		USING tag_types tt
		WHERE t.id = @id AND tt.id = t.type_id AND tt.tenant_id = @tenant_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTagRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.ResolvedTag, error) {
	q := `
		SELECT ` + resolvedTagColumns + `
		FROM tags t
		JOIN tag_types tt ON tt.id = t.type_id
		WHERE t.id = @id AND tt.tenant_id = @tenant_id`

	result, err := scanResolvedTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return domain.ResolvedTag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTagRepo) GetByTitle(ctx context.Context, typeID uuid.UUID, title string) (domain.Tag, error) {
	q := `
		SELECT ` + tagColumns + `
		FROM tags
		WHERE type_id = @type_id AND lower(title) = lower(@title)
		ORDER BY title = @title DESC, title
		LIMIT 1`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"type_id": typeID, "title": title}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByTitle: %w", mapError(err))
	}
	return result, nil
}

// LookupRefs joins the requested pairs as two parallel arrays so the whole
// batch is one parameterized query no matter how many pairs are asked for.
func (r *pgTagRepo) LookupRefs(ctx context.Context, tenantID uuid.UUID, refs []domain.TagRef) ([]domain.ResolvedTag, error) {
	if len(refs) == 0 {
		return []domain.ResolvedTag{}, nil
	}
	q := `
		SELECT ` + resolvedTagColumns + `
		FROM tags t
		JOIN tag_types tt ON tt.id = t.type_id
		JOIN unnest(@types::text[], @tags::text[]) AS ref(type_title, tag_title)
		  ON lower(tt.title) = lower(ref.type_title) AND lower(t.title) = lower(ref.tag_title)
		WHERE tt.tenant_id = @tenant_id`

	types := make([]string, len(refs))
	tags := make([]string, len(refs))
	for i, ref := range refs {
		types[i], tags[i] = ref.Type, ref.Tag
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "types": types, "tags": tags})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.LookupRefs: %w", err)
	}
	result, err := collectResolvedTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.LookupRefs: %w", err)
	}
	return result, nil
}

func (r *pgTagRepo) ListByTypeWithCounts(ctx context.Context, typeID uuid.UUID, asOf time.Time) ([]TagCount, error) {
	const q = `
		SELECT t.id, t.type_id, t.title, t.icon, t.post, t.ad_override_id, t.created_at,
		       count(p.id) AS pages
		FROM tags t
		LEFT JOIN page_tags pt ON pt.tag_id = t.id
		LEFT JOIN pages p ON p.id = pt.page_id AND p.posted_at <= @as_of
		WHERE t.type_id = @type_id
		GROUP BY t.id
		ORDER BY pages DESC, t.title`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"type_id": typeID, "as_of": asOf})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByTypeWithCounts: %w", err)
	}
	defer rows.Close()

	counts := []TagCount{}
	for rows.Next() {
		var (
			c            TagCount
			id, ownerID  pgtype.UUID
			adOverrideID pgtype.UUID
		)
		err := rows.Scan(&id, &ownerID, &c.Tag.Title, &c.Tag.Icon, &c.Tag.Post, &adOverrideID, &c.Tag.CreatedAt, &c.Pages)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByTypeWithCounts: scan: %w", err)
		}
		c.Tag.ID = uuid.UUID(id.Bytes)
		c.Tag.TypeID = uuid.UUID(ownerID.Bytes)
		c.Tag.AdOverrideID = nullableUUID(adOverrideID)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByTypeWithCounts: rows: %w", err)
	}
	return counts, nil
}

func tagArgs(t domain.Tag) pgx.NamedArgs {
	return pgx.NamedArgs{
		"type_id":        t.TypeID,
		"title":          t.Title,
		"icon":           t.Icon,
		"post":           t.Post,
		"ad_override_id": t.AdOverrideID,
	}
}

func collectResolvedTags(rows pgx.Rows) ([]domain.ResolvedTag, error) {
	defer rows.Close()

	tags := []domain.ResolvedTag{}
	for rows.Next() {
		t, err := scanResolvedTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t                domain.Tag
		id, typeID, adID pgtype.UUID
	)
	err := s.Scan(&id, &typeID, &t.Title, &t.Icon, &t.Post, &adID, &t.CreatedAt)
	if err != nil {
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	t.TypeID = uuid.UUID(typeID.Bytes)
	t.AdOverrideID = nullableUUID(adID)
	return t, nil
}

// scanTagType maps a single database row into a domain.TagType.
func scanTagType(s scanner) (domain.TagType, error) {
	var (
		t                  domain.TagType
		id, tenantID, adID pgtype.UUID
	)
	err := s.Scan(&id, &tenantID, &t.Title, &t.DefaultIcon, &adID, &t.CreatedAt)
	if err != nil {
		return domain.TagType{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	t.TenantID = uuid.UUID(tenantID.Bytes)
	t.AdOverrideID = nullableUUID(adID)
	return t, nil
}

// scanResolvedTag maps a row of resolvedTagColumns into a domain.ResolvedTag.
func scanResolvedTag(s scanner) (domain.ResolvedTag, error) {
	var (
		r                                   domain.ResolvedTag
		tagID, typeID, tagAdID              pgtype.UUID
		typeRowID, tenantID, typeAdOverride pgtype.UUID
	)
	err := s.Scan(
		&tagID, &typeID, &r.Tag.Title, &r.Tag.Icon, &r.Tag.Post, &tagAdID, &r.Tag.CreatedAt,
		&typeRowID, &tenantID, &r.Type.Title, &r.Type.DefaultIcon, &typeAdOverride, &r.Type.CreatedAt,
	)
	if err != nil {
		return domain.ResolvedTag{}, err
	}
	r.Tag.ID = uuid.UUID(tagID.Bytes)
	r.Tag.TypeID = uuid.UUID(typeID.Bytes)
	r.Tag.AdOverrideID = nullableUUID(tagAdID)
	r.Type.ID = uuid.UUID(typeRowID.Bytes)
	r.Type.TenantID = uuid.UUID(tenantID.Bytes)
	r.Type.AdOverrideID = nullableUUID(typeAdOverride)
	return r, nil
}
